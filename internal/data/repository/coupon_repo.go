package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Coupon, error)
	FindByCode(ctx context.Context, code string) (*entity.Coupon, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Coupon, error)
	CountAll(ctx context.Context) (int64, error)
	Update(ctx context.Context, coupon *entity.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementUsage bumps used_count unless the usage limit is reached
	IncrementUsage(ctx context.Context, id uuid.UUID) error
	DecrementUsage(ctx context.Context, id uuid.UUID) error
}

type couponRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCouponRepository(db database.PgxIface, log *zap.Logger) CouponRepository {
	return &couponRepository{
		db:  db,
		log: log.With(zap.String("repository", "coupon")),
	}
}

const couponColumns = `id, code, description, discount_type, discount_value, min_amount, max_discount,
	usage_limit, used_count, valid_from, valid_until, is_active, created_at, updated_at, deleted_at`

func scanCoupon(row scanner) (*entity.Coupon, error) {
	var c entity.Coupon
	if err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinAmount,
		&c.MaxDiscount,
		&c.UsageLimit,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) Create(ctx context.Context, coupon *entity.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, description, discount_type, discount_value, min_amount, max_discount,
		                     usage_limit, used_count, valid_from, valid_until, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MinAmount,
		coupon.MaxDiscount,
		coupon.UsageLimit,
		coupon.UsedCount,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.IsActive,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create coupon", zap.Error(err), zap.String("code", coupon.Code))
		return fmt.Errorf("create coupon %s: %w", coupon.Code, err)
	}

	return nil
}

func (r *couponRepository) findOne(ctx context.Context, where string, arg any) (*entity.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE ` + where + ` AND deleted_at IS NULL`

	coupon, err := scanCoupon(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return coupon, err
}

func (r *couponRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Coupon, error) {
	coupon, err := r.findOne(ctx, "id = $1", id)
	if err != nil {
		r.log.Error("Failed to find coupon by ID", zap.Error(err), zap.String("coupon_id", id.String()))
		return nil, fmt.Errorf("find coupon by ID %s: %w", id.String(), err)
	}
	return coupon, nil
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*entity.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	coupon, err := r.findOne(ctx, "code = $1", code)
	if err != nil {
		r.log.Error("Failed to find coupon by code", zap.Error(err), zap.String("code", code))
		return nil, fmt.Errorf("find coupon %s: %w", code, err)
	}
	return coupon, nil
}

func (r *couponRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to list coupons", zap.Error(err))
		return nil, fmt.Errorf("find all coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*entity.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon row: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	return coupons, rows.Err()
}

func (r *couponRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM coupons WHERE deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count coupons: %w", err)
	}
	return count, nil
}

func (r *couponRepository) Update(ctx context.Context, coupon *entity.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $2, description = $3, discount_type = $4, discount_value = $5, min_amount = $6,
		    max_discount = $7, usage_limit = $8, valid_from = $9, valid_until = $10, is_active = $11,
		    updated_at = $12
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MinAmount,
		coupon.MaxDiscount,
		coupon.UsageLimit,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.IsActive,
		coupon.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update coupon", zap.Error(err), zap.String("coupon_id", coupon.ID.String()))
		return fmt.Errorf("update coupon %s: %w", coupon.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("coupon %s not found", coupon.ID.String())
	}

	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE coupons SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.log.Error("Failed to delete coupon", zap.Error(err), zap.String("coupon_id", id.String()))
		return fmt.Errorf("delete coupon %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("coupon %s not found", id.String())
	}

	return nil
}

func (r *couponRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to increment coupon usage", zap.Error(err), zap.String("coupon_id", id.String()))
		return fmt.Errorf("increment coupon usage %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("coupon usage limit reached")
	}

	return nil
}

func (r *couponRepository) DecrementUsage(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE coupons SET used_count = GREATEST(used_count - 1, 0), updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		r.log.Error("Failed to decrement coupon usage", zap.Error(err), zap.String("coupon_id", id.String()))
		return fmt.Errorf("decrement coupon usage %s: %w", id.String(), err)
	}
	return nil
}
