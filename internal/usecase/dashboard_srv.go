package usecase

import (
	"context"
	"fmt"
	"time"

	"library-booking/internal/data/repository"
	"library-booking/internal/dto/response"
	"library-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const revenueTrendDays = 30

type DashboardService interface {
	GetDashboard(ctx context.Context) (*response.DashboardResponse, error)
}

type dashboardService struct {
	repo repository.StatsRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewDashboardService(repo repository.StatsRepository, log *zap.Logger) DashboardService {
	return &dashboardService{
		repo: repo,
		log:  log.With(zap.String("service", "dashboard")),
		now:  utils.Now,
	}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*response.DashboardResponse, error) {
	today := utils.TruncateDate(s.now())
	from := today.AddDate(0, 0, -(revenueTrendDays - 1))

	var (
		stats   *repository.DashboardStats
		revenue []repository.DailyRevenue
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.repo.Dashboard(gctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = s.repo.RevenueSince(gctx, from)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to load dashboard", zap.Error(err))
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	return &response.DashboardResponse{
		TotalMembers:   stats.TotalMembers,
		TotalSeats:     stats.TotalSeats,
		OccupiedSeats:  stats.OccupiedSeats,
		ActiveBookings: stats.ActiveBookings,
		PendingRefunds: stats.PendingRefunds,
		OpenTickets:    stats.OpenTickets,
		TotalRevenue:   utils.RoundMoney(stats.TotalRevenue),
		RevenueToday:   utils.RoundMoney(stats.RevenueToday),
		Revenue:        revenueTrend(revenue, from, revenueTrendDays),
	}, nil
}

// revenueTrend fills days without payments with zero
func revenueTrend(rows []repository.DailyRevenue, from time.Time, days int) []response.DailyRevenueResponse {
	byDay := make(map[string]repository.DailyRevenue, len(rows))
	for _, row := range rows {
		byDay[row.Day.Format(utils.DateLayout)] = row
	}

	out := make([]response.DailyRevenueResponse, days)
	for i := range out {
		day := from.AddDate(0, 0, i).Format(utils.DateLayout)
		row := byDay[day]
		out[i] = response.DailyRevenueResponse{
			Date:     day,
			Amount:   utils.RoundMoney(row.Amount),
			Payments: row.Count,
		}
	}
	return out
}
