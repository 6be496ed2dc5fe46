package repository

import (
	"context"
	"fmt"

	"library-booking/internal/data/entity"
	"library-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error
	FindByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	CountByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewNotificationRepository(db database.PgxIface, log *zap.Logger) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: log.With(zap.String("repository", "notification")),
	}
}

const insertNotification = `
	INSERT INTO notifications (id, user_id, title, message, type, is_read, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

func notificationArgs(n *entity.Notification) []any {
	return []any{n.ID, n.UserID, n.Title, n.Message, n.Type, n.IsRead, n.CreatedAt}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if _, err := r.db.Exec(ctx, insertNotification, notificationArgs(notification)...); err != nil {
		r.log.Error("Failed to create notification",
			zap.Error(err),
			zap.String("user_id", notification.UserID.String()),
		)
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// CreateBatch inserts all notifications in one transaction
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*entity.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, n := range notifications {
			if _, err := tx.Exec(ctx, insertNotification, notificationArgs(n)...); err != nil {
				r.log.Error("Failed to create notification in batch",
					zap.Error(err),
					zap.String("user_id", n.UserID.String()),
				)
				return fmt.Errorf("create notification for %s: %w", n.UserID.String(), err)
			}
		}
		return nil
	})
}

func (r *notificationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, userID, unreadOnly, limit, offset)
	if err != nil {
		r.log.Error("Failed to find notifications", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("find notifications of user %s: %w", userID.String(), err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

func (r *notificationRepository) CountByUserID(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND (NOT $2 OR is_read = FALSE)`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID, unreadOnly).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notifications of user %s: %w", userID.String(), err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.log.Error("Failed to mark notification read", zap.Error(err), zap.String("notification_id", id.String()))
		return fmt.Errorf("mark notification %s read: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification %s not found", id.String())
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		r.log.Error("Failed to mark notifications read", zap.Error(err), zap.String("user_id", userID.String()))
		return 0, fmt.Errorf("mark notifications of user %s read: %w", userID.String(), err)
	}
	return result.RowsAffected(), nil
}
