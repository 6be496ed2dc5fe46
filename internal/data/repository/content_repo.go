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

type ContentRepository interface {
	Create(ctx context.Context, content *entity.SiteContent) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.SiteContent, error)
	FindByKind(ctx context.Context, kind entity.ContentKind, activeOnly bool) ([]*entity.SiteContent, error)
	Update(ctx context.Context, content *entity.SiteContent) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type contentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewContentRepository(db database.PgxIface, log *zap.Logger) ContentRepository {
	return &contentRepository{
		db:  db,
		log: log.With(zap.String("repository", "content")),
	}
}

const contentColumns = `id, kind, title, body, image_url, sort_order, is_active, created_at, updated_at, deleted_at`

func scanContent(row scanner) (*entity.SiteContent, error) {
	var c entity.SiteContent
	if err := row.Scan(
		&c.ID,
		&c.Kind,
		&c.Title,
		&c.Body,
		&c.ImageURL,
		&c.SortOrder,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contentRepository) Create(ctx context.Context, content *entity.SiteContent) error {
	query := `
		INSERT INTO site_contents (id, kind, title, body, image_url, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		content.ID,
		content.Kind,
		content.Title,
		content.Body,
		content.ImageURL,
		content.SortOrder,
		content.IsActive,
		content.CreatedAt,
		content.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create content",
			zap.Error(err),
			zap.String("kind", string(content.Kind)),
			zap.String("title", content.Title),
		)
		return fmt.Errorf("create %s content: %w", content.Kind, err)
	}

	return nil
}

func (r *contentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.SiteContent, error) {
	query := `SELECT ` + contentColumns + ` FROM site_contents WHERE id = $1 AND deleted_at IS NULL`

	content, err := scanContent(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find content by ID", zap.Error(err), zap.String("content_id", id.String()))
		return nil, fmt.Errorf("find content by ID %s: %w", id.String(), err)
	}

	return content, nil
}

func (r *contentRepository) FindByKind(ctx context.Context, kind entity.ContentKind, activeOnly bool) ([]*entity.SiteContent, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM site_contents
		WHERE kind = $1 AND deleted_at IS NULL AND (NOT $2 OR is_active = TRUE)
		ORDER BY sort_order, created_at
	`

	rows, err := r.db.Query(ctx, query, string(kind), activeOnly)
	if err != nil {
		r.log.Error("Failed to list content", zap.Error(err), zap.String("kind", string(kind)))
		return nil, fmt.Errorf("find %s content: %w", kind, err)
	}
	defer rows.Close()

	var contents []*entity.SiteContent
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content row: %w", err)
		}
		contents = append(contents, content)
	}

	return contents, rows.Err()
}

func (r *contentRepository) Update(ctx context.Context, content *entity.SiteContent) error {
	query := `
		UPDATE site_contents
		SET title = $2, body = $3, image_url = $4, sort_order = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		content.ID,
		content.Title,
		content.Body,
		content.ImageURL,
		content.SortOrder,
		content.IsActive,
		content.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update content", zap.Error(err), zap.String("content_id", content.ID.String()))
		return fmt.Errorf("update content %s: %w", content.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("content %s not found", content.ID.String())
	}

	return nil
}

func (r *contentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE site_contents SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.log.Error("Failed to delete content", zap.Error(err), zap.String("content_id", id.String()))
		return fmt.Errorf("delete content %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("content %s not found", id.String())
	}

	return nil
}
