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

type PlanRepository interface {
	Create(ctx context.Context, plan *entity.Plan) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*entity.Plan, error)
	Update(ctx context.Context, plan *entity.Plan) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type planRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPlanRepository(db database.PgxIface, log *zap.Logger) PlanRepository {
	return &planRepository{
		db:  db,
		log: log.With(zap.String("repository", "plan")),
	}
}

const planColumns = `id, name, description, duration_days, price, is_active, created_at, updated_at, deleted_at`

func scanPlan(row scanner) (*entity.Plan, error) {
	var p entity.Plan
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.DurationDays,
		&p.Price,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepository) Create(ctx context.Context, plan *entity.Plan) error {
	query := `
		INSERT INTO plans (id, name, description, duration_days, price, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.DurationDays,
		plan.Price,
		plan.IsActive,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create plan", zap.Error(err), zap.String("name", plan.Name))
		return fmt.Errorf("create plan %s: %w", plan.Name, err)
	}

	return nil
}

func (r *planRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1 AND deleted_at IS NULL`

	plan, err := scanPlan(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find plan by ID", zap.Error(err), zap.String("plan_id", id.String()))
		return nil, fmt.Errorf("find plan by ID %s: %w", id.String(), err)
	}

	return plan, nil
}

func (r *planRepository) FindAll(ctx context.Context, activeOnly bool) ([]*entity.Plan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM plans
		WHERE deleted_at IS NULL AND ($1 = FALSE OR is_active = TRUE)
		ORDER BY duration_days, price
	`

	rows, err := r.db.Query(ctx, query, activeOnly)
	if err != nil {
		r.log.Error("Failed to list plans", zap.Error(err))
		return nil, fmt.Errorf("find all plans: %w", err)
	}
	defer rows.Close()

	var plans []*entity.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

func (r *planRepository) Update(ctx context.Context, plan *entity.Plan) error {
	query := `
		UPDATE plans
		SET name = $2, description = $3, duration_days = $4, price = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query,
		plan.ID,
		plan.Name,
		plan.Description,
		plan.DurationDays,
		plan.Price,
		plan.IsActive,
		plan.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to update plan", zap.Error(err), zap.String("plan_id", plan.ID.String()))
		return fmt.Errorf("update plan %s: %w", plan.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("plan %s not found", plan.ID.String())
	}

	return nil
}

func (r *planRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE plans SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		r.log.Error("Failed to delete plan", zap.Error(err), zap.String("plan_id", id.String()))
		return fmt.Errorf("delete plan %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("plan %s not found", id.String())
	}

	return nil
}
