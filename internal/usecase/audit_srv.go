package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuditService interface {
	// Record writes an audit entry for the acting user in ctx. Failures are
	// logged and never surface to the caller.
	Record(ctx context.Context, action, entityType, entityID string, details any)
	GetLogs(ctx context.Context, req *request.AuditFilterRequest) (*response.PaginatedResponse[response.AuditLogResponse], error)
}

type auditService struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

func NewAuditService(repo repository.AuditRepository, log *zap.Logger) AuditService {
	return &auditService{
		repo: repo,
		log:  log.With(zap.String("service", "audit")),
	}
}

func (s *auditService) Record(ctx context.Context, action, entityType, entityID string, details any) {
	entry := &entity.AuditLog{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Action:     action,
		EntityType: entityType,
		EntityID:   utils.StringPtr(entityID),
	}

	if actorID, ok := utils.GetUserIDFromContext(ctx); ok {
		entry.ActorID = &actorID
	}
	if ip, ok := utils.GetClientIPFromContext(ctx); ok {
		entry.IPAddress = &ip
	}

	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			s.log.Warn("Failed to encode audit details", zap.Error(err), zap.String("action", action))
		} else {
			entry.Details = raw
		}
	}

	// audit writes must outlive a cancelled request
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.repo.Create(writeCtx, entry); err != nil {
		s.log.Error("Failed to record audit log",
			zap.Error(err),
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
		)
	}
}

func (s *auditService) GetLogs(ctx context.Context, req *request.AuditFilterRequest) (*response.PaginatedResponse[response.AuditLogResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	filter := repository.AuditFilter{
		EntityType: req.EntityType,
		Action:     req.Action,
	}

	if req.ActorID != "" {
		actorID, err := uuid.Parse(req.ActorID)
		if err != nil {
			return nil, fmt.Errorf("invalid actor ID format %s", req.ActorID)
		}
		filter.ActorID = &actorID
	}
	if req.From != "" {
		from, err := utils.ParseDate(req.From)
		if err != nil {
			return nil, fmt.Errorf("invalid from date %s", req.From)
		}
		filter.From = &from
	}
	if req.To != "" {
		to, err := utils.ParseDate(req.To)
		if err != nil {
			return nil, fmt.Errorf("invalid to date %s", req.To)
		}
		// inclusive of the whole "to" day
		to = to.AddDate(0, 0, 1)
		filter.To = &to
	}

	logs, err := s.repo.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get audit logs", zap.Error(err))
		return nil, fmt.Errorf("get audit logs: %w", err)
	}

	total, err := s.repo.CountAll(ctx, filter)
	if err != nil {
		s.log.Error("Failed to count audit logs", zap.Error(err))
		return nil, fmt.Errorf("count audit logs: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(logs, response.AuditLogToResponse),
		req.Page, req.Limit(), total,
	), nil
}
