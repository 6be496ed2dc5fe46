package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContentService manages banners, facilities and notices. The kind comes
// from the route, so one set of handlers serves all three.
type ContentService interface {
	GetContent(ctx context.Context, kind string, activeOnly bool) ([]response.ContentResponse, error)
	CreateContent(ctx context.Context, kind string, req *request.ContentRequest) (*response.ContentResponse, error)
	UpdateContent(ctx context.Context, kind, contentID string, req *request.ContentRequest) (*response.ContentResponse, error)
	DeleteContent(ctx context.Context, kind, contentID string) error
}

type contentService struct {
	repo  repository.ContentRepository
	audit AuditService
	log   *zap.Logger
}

func NewContentService(repo repository.ContentRepository, audit AuditService, log *zap.Logger) ContentService {
	return &contentService{
		repo:  repo,
		audit: audit,
		log:   log.With(zap.String("service", "content")),
	}
}

func (s *contentService) GetContent(ctx context.Context, kind string, activeOnly bool) ([]response.ContentResponse, error) {
	k, err := parseContentKind(kind)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindByKind(ctx, k, activeOnly)
	if err != nil {
		s.log.Error("Failed to get content", zap.Error(err), zap.String("kind", kind))
		return nil, fmt.Errorf("get %s content: %w", kind, err)
	}
	return response.MapSlice(items, response.ContentToResponse), nil
}

func (s *contentService) CreateContent(ctx context.Context, kind string, req *request.ContentRequest) (*response.ContentResponse, error) {
	k, err := parseContentKind(kind)
	if err != nil {
		return nil, err
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	item := &entity.SiteContent{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Kind:     k,
		IsActive: true,
	}
	applyContentRequest(item, req)

	if err := s.repo.Create(ctx, item); err != nil {
		s.log.Error("Failed to create content", zap.Error(err), zap.String("kind", kind))
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}

	s.audit.Record(ctx, kind+".create", kind, item.ID.String(), req)

	resp := response.ContentToResponse(item)
	return &resp, nil
}

func (s *contentService) UpdateContent(ctx context.Context, kind, contentID string, req *request.ContentRequest) (*response.ContentResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	item, err := s.find(ctx, kind, contentID)
	if err != nil {
		return nil, err
	}

	applyContentRequest(item, req)
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, item); err != nil {
		s.log.Error("Failed to update content", zap.Error(err), zap.String("content_id", contentID))
		return nil, fmt.Errorf("update %s: %w", kind, err)
	}

	s.audit.Record(ctx, kind+".update", kind, contentID, req)

	resp := response.ContentToResponse(item)
	return &resp, nil
}

func (s *contentService) DeleteContent(ctx context.Context, kind, contentID string) error {
	item, err := s.find(ctx, kind, contentID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		s.log.Error("Failed to delete content", zap.Error(err), zap.String("content_id", contentID))
		return fmt.Errorf("delete %s: %w", kind, err)
	}

	s.audit.Record(ctx, kind+".delete", kind, contentID, map[string]any{"title": item.Title})
	return nil
}

// find also checks the item belongs to the kind in the route
func (s *contentService) find(ctx context.Context, kind, contentID string) (*entity.SiteContent, error) {
	k, err := parseContentKind(kind)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(contentID)
	if err != nil {
		return nil, fmt.Errorf("invalid %s ID format %s", kind, contentID)
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find content", zap.Error(err), zap.String("content_id", contentID))
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	if item == nil || item.Kind != k {
		return nil, fmt.Errorf("%s %s not found", kind, contentID)
	}
	return item, nil
}

func parseContentKind(kind string) (entity.ContentKind, error) {
	k := entity.ContentKind(kind)
	if !k.Valid() {
		return "", fmt.Errorf("invalid content kind %s", kind)
	}
	return k, nil
}

func applyContentRequest(item *entity.SiteContent, req *request.ContentRequest) {
	item.Title = strings.TrimSpace(req.Title)
	item.Body = req.Body
	item.ImageURL = req.ImageURL
	item.SortOrder = req.SortOrder
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}
