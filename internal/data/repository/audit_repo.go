package repository

import (
	"context"
	"fmt"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditFilter struct {
	ActorID    *uuid.UUID
	EntityType string
	Action     string
	From       *time.Time
	To         *time.Time
}

type AuditRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindAll(ctx context.Context, filter AuditFilter, limit, offset int) ([]*entity.AuditLog, error)
	CountAll(ctx context.Context, filter AuditFilter) (int64, error)
}

type auditRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewAuditRepository(db database.PgxIface, log *zap.Logger) AuditRepository {
	return &auditRepository{
		db:  db,
		log: log.With(zap.String("repository", "audit")),
	}
}

const auditWhere = `
	WHERE ($1::uuid IS NULL OR actor_id = $1)
	  AND ($2::text = '' OR entity_type = $2)
	  AND ($3::text = '' OR action = $3)
	  AND ($4::timestamptz IS NULL OR created_at >= $4)
	  AND ($5::timestamptz IS NULL OR created_at < $5)
`

func (f AuditFilter) args() []any {
	return []any{f.ActorID, f.EntityType, f.Action, f.From, f.To}
}

func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, details, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var details any
	if len(entry.Details) > 0 {
		details = string(entry.Details)
	}

	_, err := r.db.Exec(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		details,
		entry.IPAddress,
		entry.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to write audit log",
			zap.Error(err),
			zap.String("action", entry.Action),
			zap.String("entity_type", entry.EntityType),
		)
		return fmt.Errorf("create audit log: %w", err)
	}

	return nil
}

func (r *auditRepository) FindAll(ctx context.Context, filter AuditFilter, limit, offset int) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, actor_id, action, entity_type, entity_id, details, ip_address, created_at
		FROM audit_logs
	` + auditWhere + `
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7
	`

	args := append(filter.args(), limit, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list audit logs", zap.Error(err))
		return nil, fmt.Errorf("find audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*entity.AuditLog
	for rows.Next() {
		var (
			a       entity.AuditLog
			details []byte
		)
		if err := rows.Scan(
			&a.ID,
			&a.ActorID,
			&a.Action,
			&a.EntityType,
			&a.EntityID,
			&details,
			&a.IPAddress,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		a.Details = details
		logs = append(logs, &a)
	}

	return logs, rows.Err()
}

func (r *auditRepository) CountAll(ctx context.Context, filter AuditFilter) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs `+auditWhere, filter.args()...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count audit logs: %w", err)
	}
	return count, nil
}
