package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// execDB answers Exec with a fixed tag or error
type execDB struct {
	database.PgxIface
	tag  pgconn.CommandTag
	err  error
	args []any
}

func (db *execDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	db.args = args
	return db.tag, db.err
}

func newTestBooking() *entity.Booking {
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	return &entity.Booking{
		Base:        entity.Base{ID: uuid.New()},
		OrderID:     "LIB-TEST-1",
		UserID:      uuid.New(),
		PlanID:      uuid.New(),
		SeatID:      uuid.New(),
		StartDate:   start,
		EndDate:     start.AddDate(0, 0, 29),
		TotalAmount: 1180,
		Status:      entity.BookingStatusPending,
	}
}

func TestBookingCreate_OverlapConstraint(t *testing.T) {
	db := &execDB{err: &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_seat_no_overlap"}}
	repo := NewBookingRepository(db, zap.NewNop())

	err := repo.Create(context.Background(), newTestBooking())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeatTaken)
	assert.Contains(t, err.Error(), "already booked")
}

func TestBookingCreate_OtherErrorsPassThrough(t *testing.T) {
	db := &execDB{err: &pgconn.PgError{Code: "23503", ConstraintName: "bookings_plan_id_fkey"}}
	repo := NewBookingRepository(db, zap.NewNop())

	err := repo.Create(context.Background(), newTestBooking())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSeatTaken))

	db.err = nil
	db.tag = pgconn.NewCommandTag("INSERT 0 1")
	require.NoError(t, repo.Create(context.Background(), newTestBooking()))
}

func TestBookingUpdateStatus_Guarded(t *testing.T) {
	db := &execDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewBookingRepository(db, zap.NewNop())
	id := uuid.New()

	err := repo.UpdateStatus(context.Background(), id, entity.BookingStatusPending, entity.BookingStatusExpired)
	assert.ErrorIs(t, err, ErrStatusChanged)
	assert.Equal(t, []any{id, entity.BookingStatusPending, entity.BookingStatusExpired}, db.args)

	db.tag = pgconn.NewCommandTag("UPDATE 1")
	require.NoError(t, repo.UpdateStatus(context.Background(), id, entity.BookingStatusPending, entity.BookingStatusExpired))
}

func TestPaymentUpdateStatus_Guarded(t *testing.T) {
	db := &execDB{tag: pgconn.NewCommandTag("UPDATE 0")}
	repo := NewPaymentRepository(db, zap.NewNop())

	err := repo.UpdateStatus(context.Background(), uuid.New(), entity.PaymentStatusCompleted, entity.PaymentStatusRefunded, nil)
	assert.ErrorIs(t, err, ErrStatusChanged)

	db.tag = pgconn.NewCommandTag("UPDATE 1")
	require.NoError(t, repo.UpdateStatus(context.Background(), uuid.New(), entity.PaymentStatusCompleted, entity.PaymentStatusRefunded, nil))
}
