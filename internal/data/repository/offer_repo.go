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
	"go.uber.org/zap"
)

type OfferRepository interface {
	Create(ctx context.Context, offer *entity.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Offer, error)
	FindAll(ctx context.Context) ([]*entity.Offer, error)
	FindCurrent(ctx context.Context, on time.Time) ([]*entity.Offer, error)
	Update(ctx context.Context, offer *entity.Offer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type offerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOfferRepository(db database.PgxIface, log *zap.Logger) OfferRepository {
	return &offerRepository{
		db:  db,
		log: log.With(zap.String("repository", "offer")),
	}
}

const offerColumns = `id, title, description, discount_percent, valid_from, valid_until, is_active, created_at, updated_at, deleted_at`

func scanOffer(row scanner) (*entity.Offer, error) {
	var o entity.Offer
	if err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Description,
		&o.DiscountPercent,
		&o.ValidFrom,
		&o.ValidUntil,
		&o.IsActive,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *offerRepository) Create(ctx context.Context, offer *entity.Offer) error {
	query := `
		INSERT INTO offers (id, title, description, discount_percent, valid_from, valid_until, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		offer.ID,
		offer.Title,
		offer.Description,
		offer.DiscountPercent,
		offer.ValidFrom,
		offer.ValidUntil,
		offer.IsActive,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create offer", zap.Error(err), zap.String("title", offer.Title))
		return fmt.Errorf("create offer %s: %w", offer.Title, err)
	}

	return nil
}

func (r *offerRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1 AND deleted_at IS NULL`

	offer, err := scanOffer(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find offer by ID", zap.Error(err), zap.String("offer_id", id.String()))
		return nil, fmt.Errorf("find offer by ID %s: %w", id.String(), err)
	}

	return offer, nil
}

func (r *offerRepository) FindAll(ctx context.Context) ([]*entity.Offer, error) {
	return r.list(ctx, `SELECT `+offerColumns+` FROM offers WHERE deleted_at IS NULL ORDER BY valid_from DESC`)
}

// FindCurrent returns active offers whose validity window contains the given day
func (r *offerRepository) FindCurrent(ctx context.Context, on time.Time) ([]*entity.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE deleted_at IS NULL AND is_active = TRUE AND valid_from <= $1 AND valid_until >= $1
		ORDER BY discount_percent DESC
	`
	return r.list(ctx, query, on)
}

func (r *offerRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Offer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list offers", zap.Error(err))
		return nil, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	var offers []*entity.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan offer row: %w", err)
		}
		offers = append(offers, offer)
	}

	return offers, rows.Err()
}

func (r *offerRepository) Update(ctx context.Context, offer *entity.Offer) error {
	query := `
		UPDATE offers
		SET title = $2, description = $3, discount_percent = $4, valid_from = $5, valid_until = $6,
		    is_active = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		offer.ID,
		offer.Title,
		offer.Description,
		offer.DiscountPercent,
		offer.ValidFrom,
		offer.ValidUntil,
		offer.IsActive,
		offer.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update offer", zap.Error(err), zap.String("offer_id", offer.ID.String()))
		return fmt.Errorf("update offer %s: %w", offer.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("offer %s not found", offer.ID.String())
	}

	return nil
}

func (r *offerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE offers SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.log.Error("Failed to delete offer", zap.Error(err), zap.String("offer_id", id.String()))
		return fmt.Errorf("delete offer %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("offer %s not found", id.String())
	}

	return nil
}
