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

type GalleryRepository interface {
	Create(ctx context.Context, image *entity.GalleryImage) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.GalleryImage, error)
	FindAll(ctx context.Context, category string, activeOnly bool) ([]*entity.GalleryImage, error)
	Update(ctx context.Context, image *entity.GalleryImage) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type galleryRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewGalleryRepository(db database.PgxIface, log *zap.Logger) GalleryRepository {
	return &galleryRepository{
		db:  db,
		log: log.With(zap.String("repository", "gallery")),
	}
}

const galleryColumns = `id, title, image_url, category, sort_order, is_active, created_at, updated_at, deleted_at`

func scanGalleryImage(row scanner) (*entity.GalleryImage, error) {
	var g entity.GalleryImage
	if err := row.Scan(
		&g.ID,
		&g.Title,
		&g.ImageURL,
		&g.Category,
		&g.SortOrder,
		&g.IsActive,
		&g.CreatedAt,
		&g.UpdatedAt,
		&g.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *galleryRepository) Create(ctx context.Context, image *entity.GalleryImage) error {
	query := `
		INSERT INTO gallery_images (id, title, image_url, category, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		image.ID,
		image.Title,
		image.ImageURL,
		image.Category,
		image.SortOrder,
		image.IsActive,
		image.CreatedAt,
		image.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create gallery image", zap.Error(err), zap.String("title", image.Title))
		return fmt.Errorf("create gallery image: %w", err)
	}

	return nil
}

func (r *galleryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.GalleryImage, error) {
	query := `SELECT ` + galleryColumns + ` FROM gallery_images WHERE id = $1 AND deleted_at IS NULL`

	image, err := scanGalleryImage(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find gallery image", zap.Error(err), zap.String("image_id", id.String()))
		return nil, fmt.Errorf("find gallery image %s: %w", id.String(), err)
	}

	return image, nil
}

// FindAll lists images, optionally restricted to one category
func (r *galleryRepository) FindAll(ctx context.Context, category string, activeOnly bool) ([]*entity.GalleryImage, error) {
	query := `
		SELECT ` + galleryColumns + `
		FROM gallery_images
		WHERE deleted_at IS NULL
		  AND ($1::text = '' OR category = $1)
		  AND (NOT $2 OR is_active = TRUE)
		ORDER BY sort_order, created_at DESC
	`

	rows, err := r.db.Query(ctx, query, category, activeOnly)
	if err != nil {
		r.log.Error("Failed to list gallery images", zap.Error(err))
		return nil, fmt.Errorf("find gallery images: %w", err)
	}
	defer rows.Close()

	var images []*entity.GalleryImage
	for rows.Next() {
		image, err := scanGalleryImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gallery row: %w", err)
		}
		images = append(images, image)
	}

	return images, rows.Err()
}

func (r *galleryRepository) Update(ctx context.Context, image *entity.GalleryImage) error {
	query := `
		UPDATE gallery_images
		SET title = $2, image_url = $3, category = $4, sort_order = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		image.ID,
		image.Title,
		image.ImageURL,
		image.Category,
		image.SortOrder,
		image.IsActive,
		image.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update gallery image", zap.Error(err), zap.String("image_id", image.ID.String()))
		return fmt.Errorf("update gallery image %s: %w", image.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("gallery image %s not found", image.ID.String())
	}

	return nil
}

func (r *galleryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE gallery_images SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.log.Error("Failed to delete gallery image", zap.Error(err), zap.String("image_id", id.String()))
		return fmt.Errorf("delete gallery image %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("gallery image %s not found", id.String())
	}

	return nil
}
