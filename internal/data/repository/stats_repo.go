package repository

import (
	"context"
	"fmt"
	"time"

	"library-booking/pkg/database"

	"go.uber.org/zap"
)

type DashboardStats struct {
	TotalMembers   int64
	TotalSeats     int64
	OccupiedSeats  int64
	ActiveBookings int64
	PendingRefunds int64
	OpenTickets    int64
	TotalRevenue   float64
	RevenueToday   float64
}

type DailyRevenue struct {
	Day    time.Time
	Amount float64
	Count  int64
}

type StatsRepository interface {
	Dashboard(ctx context.Context, today time.Time) (*DashboardStats, error)
	RevenueSince(ctx context.Context, from time.Time) ([]DailyRevenue, error)
}

type statsRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewStatsRepository(db database.PgxIface, log *zap.Logger) StatsRepository {
	return &statsRepository{
		db:  db,
		log: log.With(zap.String("repository", "stats")),
	}
}

// Dashboard aggregates the admin overview counters in a single round trip
func (r *statsRepository) Dashboard(ctx context.Context, today time.Time) (*DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'member' AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM seats WHERE is_active = TRUE AND deleted_at IS NULL),
			(SELECT COUNT(DISTINCT seat_id) FROM bookings
			  WHERE deleted_at IS NULL AND status = 'confirmed' AND start_date <= $1 AND end_date >= $1),
			(SELECT COUNT(*) FROM bookings
			  WHERE deleted_at IS NULL AND status = 'confirmed' AND end_date >= $1),
			(SELECT COUNT(*) FROM refund_requests WHERE status = 'pending' AND deleted_at IS NULL),
			(SELECT COUNT(*) FROM support_tickets WHERE status IN ('open', 'in_progress')),
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed' AND booking_id IS NOT NULL),
			(SELECT COALESCE(SUM(amount), 0) FROM payments
			  WHERE status = 'completed' AND booking_id IS NOT NULL AND created_at::date = $1)
	`

	var s DashboardStats
	err := r.db.QueryRow(ctx, query, today).Scan(
		&s.TotalMembers,
		&s.TotalSeats,
		&s.OccupiedSeats,
		&s.ActiveBookings,
		&s.PendingRefunds,
		&s.OpenTickets,
		&s.TotalRevenue,
		&s.RevenueToday,
	)
	if err != nil {
		r.log.Error("Failed to load dashboard stats", zap.Error(err))
		return nil, fmt.Errorf("load dashboard stats: %w", err)
	}

	return &s, nil
}

func (r *statsRepository) RevenueSince(ctx context.Context, from time.Time) ([]DailyRevenue, error) {
	query := `
		SELECT created_at::date AS day, COALESCE(SUM(amount), 0), COUNT(*)
		FROM payments
		WHERE status = 'completed' AND booking_id IS NOT NULL AND created_at >= $1
		GROUP BY day
		ORDER BY day
	`

	rows, err := r.db.Query(ctx, query, from)
	if err != nil {
		r.log.Error("Failed to load revenue", zap.Error(err))
		return nil, fmt.Errorf("load revenue since %s: %w", from.Format(time.DateOnly), err)
	}
	defer rows.Close()

	var out []DailyRevenue
	for rows.Next() {
		var d DailyRevenue
		if err := rows.Scan(&d.Day, &d.Amount, &d.Count); err != nil {
			return nil, fmt.Errorf("scan revenue row: %w", err)
		}
		out = append(out, d)
	}

	return out, rows.Err()
}
