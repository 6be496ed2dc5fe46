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

// RefundResolution is the admin decision applied to a pending request
type RefundResolution struct {
	Status         entity.RefundStatus
	RefundedAmount *float64
	RefundTo       *entity.RefundDestination
	AdminNote      *string
	ProcessedBy    uuid.UUID
}

type RefundRepository interface {
	Create(ctx context.Context, refund *entity.RefundRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error)
	FindOpenByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RefundRequest, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.RefundRequest, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, status *entity.RefundStatus, limit, offset int) ([]*entity.RefundRequest, error)
	CountAll(ctx context.Context, status *entity.RefundStatus) (int64, error)

	// Resolve moves a pending request to its final state. A request that is
	// no longer pending yields ErrAlreadyProcessed.
	Resolve(ctx context.Context, id uuid.UUID, resolution RefundResolution) (*entity.RefundRequest, error)
	Reopen(ctx context.Context, id uuid.UUID) error
}

type refundRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRefundRepository(db database.PgxIface, log *zap.Logger) RefundRepository {
	return &refundRepository{
		db:  db,
		log: log.With(zap.String("repository", "refund")),
	}
}

const refundColumns = `id, booking_id, user_id, reason, refund_percent, expected_amount, refunded_amount, refund_to,
	status, admin_note, processed_by, processed_at, created_at, updated_at, deleted_at`

func scanRefund(row scanner) (*entity.RefundRequest, error) {
	var r entity.RefundRequest
	if err := row.Scan(
		&r.ID,
		&r.BookingID,
		&r.UserID,
		&r.Reason,
		&r.RefundPercent,
		&r.ExpectedAmount,
		&r.RefundedAmount,
		&r.RefundTo,
		&r.Status,
		&r.AdminNote,
		&r.ProcessedBy,
		&r.ProcessedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func collectRefunds(rows pgx.Rows) ([]*entity.RefundRequest, error) {
	defer rows.Close()

	var refunds []*entity.RefundRequest
	for rows.Next() {
		refund, err := scanRefund(rows)
		if err != nil {
			return nil, fmt.Errorf("scan refund row: %w", err)
		}
		refunds = append(refunds, refund)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refund rows: %w", err)
	}
	return refunds, nil
}

func statusArg[T ~string](status *T) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func (r *refundRepository) Create(ctx context.Context, refund *entity.RefundRequest) error {
	query := `
		INSERT INTO refund_requests (id, booking_id, user_id, reason, refund_percent, expected_amount,
		                             status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		refund.ID,
		refund.BookingID,
		refund.UserID,
		refund.Reason,
		refund.RefundPercent,
		refund.ExpectedAmount,
		refund.Status,
		refund.CreatedAt,
		refund.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create refund request",
			zap.Error(err),
			zap.String("booking_id", refund.BookingID.String()),
		)
		return fmt.Errorf("create refund request for booking %s: %w", refund.BookingID.String(), err)
	}

	return nil
}

func (r *refundRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.RefundRequest, error) {
	query := `SELECT ` + refundColumns + ` FROM refund_requests WHERE id = $1 AND deleted_at IS NULL`

	refund, err := scanRefund(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find refund by ID", zap.Error(err), zap.String("refund_id", id.String()))
		return nil, fmt.Errorf("find refund by ID %s: %w", id.String(), err)
	}

	return refund, nil
}

// FindOpenByBookingID returns a pending or approved request for the booking
func (r *refundRepository) FindOpenByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.RefundRequest, error) {
	query := `
		SELECT ` + refundColumns + `
		FROM refund_requests
		WHERE booking_id = $1 AND status IN ('pending', 'approved') AND deleted_at IS NULL
		LIMIT 1
	`

	refund, err := scanRefund(r.db.QueryRow(ctx, query, bookingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find open refund of booking %s: %w", bookingID.String(), err)
	}

	return refund, nil
}

func (r *refundRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.RefundRequest, error) {
	query := `
		SELECT ` + refundColumns + `
		FROM refund_requests
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find refunds by user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find refunds of user %s: %w", userID.String(), err)
	}

	return collectRefunds(rows)
}

func (r *refundRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM refund_requests WHERE user_id = $1 AND deleted_at IS NULL`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count refunds of user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *refundRepository) FindAll(ctx context.Context, status *entity.RefundStatus, limit, offset int) ([]*entity.RefundRequest, error) {
	query := `
		SELECT ` + refundColumns + `
		FROM refund_requests
		WHERE deleted_at IS NULL AND ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, statusArg(status), limit, offset)
	if err != nil {
		r.log.Error("Failed to list refunds", zap.Error(err))
		return nil, fmt.Errorf("find all refunds: %w", err)
	}

	return collectRefunds(rows)
}

func (r *refundRepository) CountAll(ctx context.Context, status *entity.RefundStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM refund_requests WHERE deleted_at IS NULL AND ($1::text IS NULL OR status = $1)`

	var count int64
	if err := r.db.QueryRow(ctx, query, statusArg(status)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count refunds: %w", err)
	}
	return count, nil
}

func (r *refundRepository) Resolve(ctx context.Context, id uuid.UUID, resolution RefundResolution) (*entity.RefundRequest, error) {
	query := `
		UPDATE refund_requests
		SET status = $2,
		    refunded_amount = $3,
		    refund_to = $4,
		    admin_note = $5,
		    processed_by = $6,
		    processed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'pending' AND deleted_at IS NULL
		RETURNING ` + refundColumns

	var refundTo *string
	if resolution.RefundTo != nil {
		dest := string(*resolution.RefundTo)
		refundTo = &dest
	}

	refund, err := scanRefund(r.db.QueryRow(ctx, query,
		id,
		resolution.Status,
		resolution.RefundedAmount,
		refundTo,
		resolution.AdminNote,
		resolution.ProcessedBy,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyProcessed
	}
	if err != nil {
		r.log.Error("Failed to resolve refund",
			zap.Error(err),
			zap.String("refund_id", id.String()),
			zap.String("status", string(resolution.Status)),
		)
		return nil, fmt.Errorf("resolve refund %s: %w", id.String(), err)
	}

	return refund, nil
}

// Reopen puts an approved request back to pending after a failed payout
func (r *refundRepository) Reopen(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE refund_requests
		SET status = 'pending', refunded_amount = NULL, refund_to = NULL,
		    processed_by = NULL, processed_at = NULL, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to reopen refund", zap.Error(err), zap.String("refund_id", id.String()))
		return fmt.Errorf("reopen refund %s: %w", id.String(), err)
	}
	return nil
}
