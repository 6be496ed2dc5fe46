package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// BookingFilter narrows admin booking lists; nil fields are ignored
type BookingFilter struct {
	Status     *entity.BookingStatus
	StartAfter *time.Time
}

func (f BookingFilter) args() (*string, *time.Time) {
	var status *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	return status, f.StartAfter
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context, filter BookingFilter) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Seat occupancy: pending and confirmed bookings hold their seat
	HasOverlap(ctx context.Context, seatID uuid.UUID, start, end time.Time) (bool, error)
	FindBookedSeatIDs(ctx context.Context, start, end time.Time) ([]uuid.UUID, error)
	CountActiveForSeat(ctx context.Context, seatID uuid.UUID, from time.Time) (int64, error)

	FindStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_id, user_id, plan_id, seat_id, start_date, end_date, coupon_id,
	subtotal, discount, gst, total_amount, status, created_at, updated_at, deleted_at`

func scanBooking(row scanner) (*entity.Booking, error) {
	var b entity.Booking
	if err := row.Scan(
		&b.ID,
		&b.OrderID,
		&b.UserID,
		&b.PlanID,
		&b.SeatID,
		&b.StartDate,
		&b.EndDate,
		&b.CouponID,
		&b.Subtotal,
		&b.Discount,
		&b.GST,
		&b.TotalAmount,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, order_id, user_id, plan_id, seat_id, start_date, end_date, coupon_id,
		                      subtotal, discount, gst, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.OrderID,
		booking.UserID,
		booking.PlanID,
		booking.SeatID,
		booking.StartDate,
		booking.EndDate,
		booking.CouponID,
		booking.Subtotal,
		booking.Discount,
		booking.GST,
		booking.TotalAmount,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == exclusionViolation {
		r.log.Warn("Booking rejected by seat overlap constraint",
			zap.String("order_id", booking.OrderID),
			zap.String("seat_id", booking.SeatID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.OrderID, ErrSeatTaken)
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.OrderID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND deleted_at IS NULL`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find bookings of user %s: %w", userID.String(), err)
	}

	return collectBookings(rows)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1 AND deleted_at IS NULL`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count bookings of user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE deleted_at IS NULL
		  AND ($1::text IS NULL OR status = $1)
		  AND ($2::date IS NULL OR start_date > $2)
		ORDER BY start_date, created_at DESC
		LIMIT $3 OFFSET $4
	`

	status, startAfter := filter.args()
	rows, err := r.db.Query(ctx, query, status, startAfter, limit, offset)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("find all bookings: %w", err)
	}

	return collectBookings(rows)
}

func (r *bookingRepository) CountAll(ctx context.Context, filter BookingFilter) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM bookings
		WHERE deleted_at IS NULL
		  AND ($1::text IS NULL OR status = $1)
		  AND ($2::date IS NULL OR start_date > $2)
	`

	status, startAfter := filter.args()
	var count int64
	if err := r.db.QueryRow(ctx, query, status, startAfter).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a booking from one status to another. ErrStatusChanged
// is returned when the booking is no longer in the from status.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) error {
	query := `
		UPDATE bookings SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", id.String(), to, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s is no longer %s: %w", id.String(), from, ErrStatusChanged)
	}

	return nil
}

// Delete removes a booking row; only used to undo a checkout that failed half way
func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id); err != nil {
		r.log.Error("Failed to delete booking", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("delete booking %s: %w", id.String(), err)
	}
	return nil
}

func (r *bookingRepository) HasOverlap(ctx context.Context, seatID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE seat_id = $1
			  AND deleted_at IS NULL
			  AND status IN ('pending', 'confirmed')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, seatID, start, end).Scan(&exists); err != nil {
		r.log.Error("Failed to check seat overlap", zap.Error(err), zap.String("seat_id", seatID.String()))
		return false, fmt.Errorf("check overlap for seat %s: %w", seatID.String(), err)
	}
	return exists, nil
}

func (r *bookingRepository) FindBookedSeatIDs(ctx context.Context, start, end time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT seat_id FROM bookings
		WHERE deleted_at IS NULL
		  AND status IN ('pending', 'confirmed')
		  AND start_date <= $2
		  AND end_date >= $1
	`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		r.log.Error("Failed to find booked seats", zap.Error(err))
		return nil, fmt.Errorf("find booked seats: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan seat id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *bookingRepository) CountActiveForSeat(ctx context.Context, seatID uuid.UUID, from time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE seat_id = $1
		  AND deleted_at IS NULL
		  AND status IN ('pending', 'confirmed')
		  AND end_date >= $2
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, seatID, from).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active bookings for seat %s: %w", seatID.String(), err)
	}
	return count, nil
}

func (r *bookingRepository) FindStalePending(ctx context.Context, createdBefore time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE deleted_at IS NULL AND status = 'pending' AND created_at < $1
		ORDER BY created_at
		LIMIT 500
	`

	rows, err := r.db.Query(ctx, query, createdBefore)
	if err != nil {
		r.log.Error("Failed to find stale pending bookings", zap.Error(err))
		return nil, fmt.Errorf("find stale pending bookings: %w", err)
	}

	return collectBookings(rows)
}
