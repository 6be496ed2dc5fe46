package usecase

import (
	"context"
	"testing"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpirePendingBookings(t *testing.T) {
	f := newFixture()
	stale := f.addBooking(entity.BookingStatusPending, utils.Today().AddDate(0, 0, 3), 1180)
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	p := f.addPayment(stale, entity.PaymentMethodCash, entity.PaymentStatusPending)

	fresh := f.addBooking(entity.BookingStatusPending, utils.Today().AddDate(0, 0, 40), 1180)
	confirmed := f.addBooking(entity.BookingStatusConfirmed, utils.Today().AddDate(0, 0, 80), 1180)
	confirmed.CreatedAt = time.Now().Add(-48 * time.Hour)

	svc := NewMaintenanceService(f.repo, f.notificationService(), f.config, f.log)

	n, err := svc.ExpirePendingBookings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, entity.BookingStatusExpired, f.bookings.status(stale.ID))
	assert.Equal(t, entity.PaymentStatusFailed, f.payments.payments[p.ID].Status)
	assert.Equal(t, entity.BookingStatusPending, f.bookings.status(fresh.ID))
	assert.Equal(t, entity.BookingStatusConfirmed, f.bookings.status(confirmed.ID))
	assert.Contains(t, f.notifications.titlesFor(f.member.ID), "Booking expired")
}

// settledWhileListing pays every stale booking right after it is listed
type settledWhileListing struct {
	*fakeBookings
	payments *fakePayments
}

func (s *settledWhileListing) FindStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Booking, error) {
	stale, err := s.fakeBookings.FindStalePending(ctx, createdBefore)
	for _, b := range stale {
		_ = s.fakeBookings.UpdateStatus(ctx, b.ID, entity.BookingStatusPending, entity.BookingStatusConfirmed)
		if p := s.payments.byBooking(b.ID); p != nil {
			_ = s.payments.UpdateStatus(ctx, p.ID, entity.PaymentStatusPending, entity.PaymentStatusCompleted, nil)
		}
	}
	return stale, err
}

func TestExpirePendingBookings_SkipsBookingPaidMeanwhile(t *testing.T) {
	f := newFixture()
	b := f.addBooking(entity.BookingStatusPending, utils.Today().AddDate(0, 0, 3), 1180)
	b.CreatedAt = time.Now().Add(-2 * time.Hour)
	p := f.addPayment(b, entity.PaymentMethodOnline, entity.PaymentStatusPending)
	f.repo.Booking = &settledWhileListing{fakeBookings: f.bookings, payments: f.payments}

	svc := NewMaintenanceService(f.repo, f.notificationService(), f.config, f.log)

	n, err := svc.ExpirePendingBookings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, n)
	assert.Equal(t, entity.BookingStatusConfirmed, f.bookings.status(b.ID))
	assert.Equal(t, entity.PaymentStatusCompleted, f.payments.payments[p.ID].Status)
	assert.NotContains(t, f.notifications.titlesFor(f.member.ID), "Booking expired")
}

func TestCleanExpiredSessions(t *testing.T) {
	f := newFixture()
	f.sessions.cleaned = 3
	svc := NewMaintenanceService(f.repo, f.notificationService(), f.config, f.log)

	n, err := svc.CleanExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRevenueTrend_FillsGaps(t *testing.T) {
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := []repository.DailyRevenue{
		{Day: from, Amount: 1180, Count: 1},
		{Day: from.AddDate(0, 0, 2), Amount: 2123.456, Count: 2},
	}

	trend := revenueTrend(rows, from, 4)

	require.Len(t, trend, 4)
	assert.Equal(t, "2026-05-01", trend[0].Date)
	assert.Equal(t, 1180.0, trend[0].Amount)
	assert.Equal(t, 0.0, trend[1].Amount)
	assert.Equal(t, int64(0), trend[1].Payments)
	assert.Equal(t, 2123.46, trend[2].Amount)
	assert.Equal(t, "2026-05-04", trend[3].Date)
}
