package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/cache"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService interface {
	// Notify and NotifyAdmins are fire-and-forget helpers for other services
	Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationType, title, message string)
	NotifyAdmins(ctx context.Context, kind entity.NotificationType, title, message string)

	Send(ctx context.Context, req *request.SendNotificationRequest) (*response.BroadcastResponse, error)
	GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, req request.PaginatedRequest) (*response.PaginatedResponse[response.NotificationResponse], error)
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (*response.UnreadCountResponse, error)
	MarkRead(ctx context.Context, userID uuid.UUID, notificationID string) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	repo  *repository.Repository
	cache *cache.Cache
	audit AuditService
	log   *zap.Logger
}

func NewNotificationService(repo *repository.Repository, cache *cache.Cache, audit AuditService, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:  repo,
		cache: cache,
		audit: audit,
		log:   log.With(zap.String("service", "notification")),
	}
}

func newNotification(userID uuid.UUID, kind entity.NotificationType, title, message string) *entity.Notification {
	return &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, kind entity.NotificationType, title, message string) {
	ctx = context.WithoutCancel(ctx)

	if err := s.repo.Notification.Create(ctx, newNotification(userID, kind, title, message)); err != nil {
		s.log.Error("Failed to notify user", zap.Error(err), zap.String("user_id", userID.String()))
		return
	}
	s.invalidate(ctx, userID)
}

func (s *notificationService) NotifyAdmins(ctx context.Context, kind entity.NotificationType, title, message string) {
	ctx = context.WithoutCancel(ctx)

	adminIDs, err := s.repo.User.FindActiveIDs(ctx, entity.RoleAdmin)
	if err != nil {
		s.log.Error("Failed to load admins for notification", zap.Error(err))
		return
	}

	if _, err := s.deliver(ctx, adminIDs, kind, title, message); err != nil {
		s.log.Error("Failed to notify admins", zap.Error(err))
	}
}

func (s *notificationService) deliver(ctx context.Context, userIDs []uuid.UUID, kind entity.NotificationType, title, message string) (int, error) {
	notifications := make([]*entity.Notification, len(userIDs))
	for i, id := range userIDs {
		notifications[i] = newNotification(id, kind, title, message)
	}

	if err := s.repo.Notification.CreateBatch(ctx, notifications); err != nil {
		return 0, err
	}

	for _, id := range userIDs {
		s.invalidate(ctx, id)
	}
	return len(userIDs), nil
}

func (s *notificationService) Send(ctx context.Context, req *request.SendNotificationRequest) (*response.BroadcastResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	kind := entity.NotificationGeneral
	if req.Type != "" {
		kind = entity.NotificationType(req.Type)
	}

	var recipients []uuid.UUID
	entityID := "all-members"
	if req.UserID != nil {
		userID, err := uuid.Parse(*req.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID format %s", *req.UserID)
		}

		user, err := s.repo.User.FindByID(ctx, userID)
		if err != nil {
			s.log.Error("Failed to find notification recipient", zap.Error(err), zap.String("user_id", userID.String()))
			return nil, fmt.Errorf("find recipient: %w", err)
		}
		if user == nil {
			return nil, fmt.Errorf("user %s not found", userID.String())
		}
		recipients = []uuid.UUID{userID}
		entityID = userID.String()
	} else {
		ids, err := s.repo.User.FindActiveIDs(ctx, entity.RoleMember)
		if err != nil {
			s.log.Error("Failed to load members for broadcast", zap.Error(err))
			return nil, fmt.Errorf("load members: %w", err)
		}
		recipients = ids
	}

	sent, err := s.deliver(ctx, recipients, kind, req.Title, req.Message)
	if err != nil {
		s.log.Error("Failed to send notification", zap.Error(err), zap.Int("recipients", len(recipients)))
		return nil, fmt.Errorf("send notification: %w", err)
	}

	s.audit.Record(ctx, "notification.send", "notification", entityID, map[string]any{
		"title":      req.Title,
		"type":       kind,
		"recipients": sent,
	})

	s.log.Info("Notification sent",
		zap.Int("recipients", sent),
		zap.String("type", string(kind)),
	)

	return &response.BroadcastResponse{Recipients: sent}, nil
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, req request.PaginatedRequest) (*response.PaginatedResponse[response.NotificationResponse], error) {
	notifications, err := s.repo.Notification.FindByUserID(ctx, userID, unreadOnly, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get notifications", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("get notifications: %w", err)
	}

	total, err := s.repo.Notification.CountByUserID(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(notifications, response.NotificationToResponse),
		req.Page, req.Limit(), total,
	), nil
}

// GetUnreadCount is polled by clients, so it is served from cache when possible
func (s *notificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (*response.UnreadCountResponse, error) {
	key := cache.UnreadCountKey(userID.String())

	count, err := s.cache.GetInt64(ctx, key)
	if err == nil {
		return &response.UnreadCountResponse{Count: count}, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("Unread count cache read failed", zap.Error(err))
	}

	count, err = s.repo.Notification.CountByUserID(ctx, userID, true)
	if err != nil {
		s.log.Error("Failed to count unread notifications", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	if err := s.cache.SetInt64(ctx, key, count); err != nil {
		s.log.Warn("Unread count cache write failed", zap.Error(err))
	}

	return &response.UnreadCountResponse{Count: count}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID uuid.UUID, notificationID string) error {
	id, err := uuid.Parse(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification ID format %s", notificationID)
	}

	if err := s.repo.Notification.MarkRead(ctx, id, userID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	updated, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	s.invalidate(ctx, userID)
	s.log.Info("Notifications marked read", zap.String("user_id", userID.String()), zap.Int64("count", updated))
	return nil
}

func (s *notificationService) invalidate(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Delete(ctx, cache.UnreadCountKey(userID.String())); err != nil {
		s.log.Warn("Failed to invalidate unread count", zap.Error(err), zap.String("user_id", userID.String()))
	}
}
