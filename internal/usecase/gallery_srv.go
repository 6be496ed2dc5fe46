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

type GalleryService interface {
	GetImages(ctx context.Context, category string, activeOnly bool) ([]response.GalleryImageResponse, error)
	CreateImage(ctx context.Context, req *request.GalleryRequest) (*response.GalleryImageResponse, error)
	UpdateImage(ctx context.Context, imageID string, req *request.GalleryRequest) (*response.GalleryImageResponse, error)
	DeleteImage(ctx context.Context, imageID string) error
}

type galleryService struct {
	repo  repository.GalleryRepository
	audit AuditService
	log   *zap.Logger
}

func NewGalleryService(repo repository.GalleryRepository, audit AuditService, log *zap.Logger) GalleryService {
	return &galleryService{
		repo:  repo,
		audit: audit,
		log:   log.With(zap.String("service", "gallery")),
	}
}

func (s *galleryService) GetImages(ctx context.Context, category string, activeOnly bool) ([]response.GalleryImageResponse, error) {
	images, err := s.repo.FindAll(ctx, strings.TrimSpace(category), activeOnly)
	if err != nil {
		s.log.Error("Failed to get gallery", zap.Error(err), zap.String("category", category))
		return nil, fmt.Errorf("get gallery: %w", err)
	}
	return response.MapSlice(images, response.GalleryImageToResponse), nil
}

func (s *galleryService) CreateImage(ctx context.Context, req *request.GalleryRequest) (*response.GalleryImageResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	image := &entity.GalleryImage{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		IsActive: true,
	}
	applyGalleryRequest(image, req)

	if err := s.repo.Create(ctx, image); err != nil {
		s.log.Error("Failed to create gallery image", zap.Error(err))
		return nil, fmt.Errorf("create gallery image: %w", err)
	}

	s.audit.Record(ctx, "gallery.create", "gallery", image.ID.String(), req)

	resp := response.GalleryImageToResponse(image)
	return &resp, nil
}

func (s *galleryService) UpdateImage(ctx context.Context, imageID string, req *request.GalleryRequest) (*response.GalleryImageResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	image, err := s.find(ctx, imageID)
	if err != nil {
		return nil, err
	}

	applyGalleryRequest(image, req)
	image.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, image); err != nil {
		s.log.Error("Failed to update gallery image", zap.Error(err), zap.String("image_id", imageID))
		return nil, fmt.Errorf("update gallery image: %w", err)
	}

	s.audit.Record(ctx, "gallery.update", "gallery", imageID, req)

	resp := response.GalleryImageToResponse(image)
	return &resp, nil
}

func (s *galleryService) DeleteImage(ctx context.Context, imageID string) error {
	image, err := s.find(ctx, imageID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, image.ID); err != nil {
		s.log.Error("Failed to delete gallery image", zap.Error(err), zap.String("image_id", imageID))
		return fmt.Errorf("delete gallery image: %w", err)
	}

	s.audit.Record(ctx, "gallery.delete", "gallery", imageID, map[string]any{"title": image.Title})
	return nil
}

func (s *galleryService) find(ctx context.Context, imageID string) (*entity.GalleryImage, error) {
	id, err := uuid.Parse(imageID)
	if err != nil {
		return nil, fmt.Errorf("invalid image ID format %s", imageID)
	}

	image, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find gallery image", zap.Error(err), zap.String("image_id", imageID))
		return nil, fmt.Errorf("find gallery image: %w", err)
	}
	if image == nil {
		return nil, fmt.Errorf("gallery image %s not found", imageID)
	}
	return image, nil
}

func applyGalleryRequest(image *entity.GalleryImage, req *request.GalleryRequest) {
	image.Title = strings.TrimSpace(req.Title)
	image.ImageURL = req.ImageURL
	image.Category = strings.ToLower(strings.TrimSpace(req.Category))
	image.SortOrder = req.SortOrder
	if req.IsActive != nil {
		image.IsActive = *req.IsActive
	}
}
