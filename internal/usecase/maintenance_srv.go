package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/pkg/utils"

	"go.uber.org/zap"
)

// MaintenanceService holds the periodic housekeeping jobs run by the server
type MaintenanceService interface {
	ExpirePendingBookings(ctx context.Context) (int, error)
	CleanExpiredSessions(ctx context.Context) (int64, error)
	RunOnce(ctx context.Context)
}

type maintenanceService struct {
	repo         *repository.Repository
	notification NotificationService
	pendingTTL   time.Duration
	log          *zap.Logger
	now          func() time.Time
}

func NewMaintenanceService(repo *repository.Repository, notification NotificationService, config *utils.Config, log *zap.Logger) MaintenanceService {
	return &maintenanceService{
		repo:         repo,
		notification: notification,
		pendingTTL:   config.Maintenance.PendingBookingTTL,
		log:          log.With(zap.String("service", "maintenance")),
		now:          utils.Now,
	}
}

// ExpirePendingBookings releases seats held by unpaid bookings older than the TTL
func (s *maintenanceService) ExpirePendingBookings(ctx context.Context) (int, error) {
	stale, err := s.repo.Booking.FindStalePending(ctx, s.now().Add(-s.pendingTTL))
	if err != nil {
		s.log.Error("Failed to find stale bookings", zap.Error(err))
		return 0, fmt.Errorf("find stale bookings: %w", err)
	}

	expired := 0
	for _, booking := range stale {
		err := s.repo.Booking.UpdateStatus(ctx, booking.ID, entity.BookingStatusPending, entity.BookingStatusExpired)
		if errors.Is(err, repository.ErrStatusChanged) {
			// paid or cancelled since it was listed
			s.log.Info("Booking settled before expiry", zap.String("booking_id", booking.ID.String()))
			continue
		}
		if err != nil {
			s.log.Warn("Failed to expire booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
			continue
		}
		releasePending(ctx, s.repo, booking, s.log)
		s.notification.Notify(ctx, booking.UserID, entity.NotificationBooking, "Booking expired",
			fmt.Sprintf("Order %s expired because payment was not received.", booking.OrderID))
		expired++
	}

	if expired > 0 {
		s.log.Info("Expired pending bookings", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *maintenanceService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repo.Session.CleanExpiredSessions(ctx)
	if err != nil {
		s.log.Error("Failed to clean sessions", zap.Error(err))
		return 0, fmt.Errorf("clean sessions: %w", err)
	}
	if n > 0 {
		s.log.Info("Cleaned expired sessions", zap.Int64("count", n))
	}
	return n, nil
}

// RunOnce runs every job, logging failures instead of stopping
func (s *maintenanceService) RunOnce(ctx context.Context) {
	if _, err := s.ExpirePendingBookings(ctx); err != nil {
		s.log.Warn("Booking expiry run failed", zap.Error(err))
	}
	if _, err := s.CleanExpiredSessions(ctx); err != nil {
		s.log.Warn("Session cleanup run failed", zap.Error(err))
	}
}
