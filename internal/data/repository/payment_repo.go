package repository

import (
	"context"
	"errors"
	"fmt"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentFilter struct {
	Status *entity.PaymentStatus
	Method *entity.PaymentMethod
}

func (f PaymentFilter) args() (*string, *string) {
	var status, method *string
	if f.Status != nil {
		s := string(*f.Status)
		status = &s
	}
	if f.Method != nil {
		m := string(*f.Method)
		method = &m
	}
	return status, method
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, filter PaymentFilter, limit, offset int) ([]*entity.Payment, error)
	CountAll(ctx context.Context, filter PaymentFilter) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.PaymentStatus, transactionID *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, booking_id, user_id, method, amount, status, transaction_id, created_at, updated_at, deleted_at`

func scanPayment(row scanner) (*entity.Payment, error) {
	var p entity.Payment
	if err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.UserID,
		&p.Method,
		&p.Amount,
		&p.Status,
		&p.TransactionID,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPayments(rows pgx.Rows) ([]*entity.Payment, error) {
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, user_id, method, amount, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.BookingID,
		payment.UserID,
		payment.Method,
		payment.Amount,
		payment.Status,
		payment.TransactionID,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("user_id", payment.UserID.String()),
			zap.String("method", string(payment.Method)),
		)
		return fmt.Errorf("create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 AND deleted_at IS NULL`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID", zap.Error(err), zap.String("payment_id", id.String()))
		return nil, fmt.Errorf("find payment by ID %s: %w", id.String(), err)
	}

	return payment, nil
}

// FindByBookingID returns the latest payment recorded for a booking
func (r *paymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE booking_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by booking", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("find payment of booking %s: %w", bookingID.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find payments by user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find payments of user %s: %w", userID.String(), err)
	}

	return collectPayments(rows)
}

func (r *paymentRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE user_id = $1 AND deleted_at IS NULL`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count payments of user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *paymentRepository) FindAll(ctx context.Context, filter PaymentFilter, limit, offset int) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE deleted_at IS NULL
		  AND ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR method = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	status, method := filter.args()
	rows, err := r.db.Query(ctx, query, status, method, limit, offset)
	if err != nil {
		r.log.Error("Failed to list payments", zap.Error(err))
		return nil, fmt.Errorf("find all payments: %w", err)
	}

	return collectPayments(rows)
}

func (r *paymentRepository) CountAll(ctx context.Context, filter PaymentFilter) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM payments
		WHERE deleted_at IS NULL
		  AND ($1::text IS NULL OR status = $1)
		  AND ($2::text IS NULL OR method = $2)
	`

	status, method := filter.args()
	var count int64
	if err := r.db.QueryRow(ctx, query, status, method).Scan(&count); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a payment from one status to another, returning
// ErrStatusChanged when it is no longer in the from status
func (r *paymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.PaymentStatus, transactionID *string) error {
	query := `
		UPDATE payments
		SET status = $3, transaction_id = COALESCE($4, transaction_id), updated_at = NOW()
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, from, to, transactionID)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("payment_id", id.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return fmt.Errorf("update payment %s status: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment %s is no longer %s: %w", id.String(), from, ErrStatusChanged)
	}

	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		r.log.Error("Failed to delete payment", zap.Error(err), zap.String("payment_id", id.String()))
		return fmt.Errorf("delete payment %s: %w", id.String(), err)
	}
	return nil
}
