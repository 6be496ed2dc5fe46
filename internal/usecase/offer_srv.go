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

type OfferService interface {
	GetOffers(ctx context.Context, currentOnly bool) ([]response.OfferResponse, error)
	CreateOffer(ctx context.Context, req *request.OfferRequest) (*response.OfferResponse, error)
	UpdateOffer(ctx context.Context, offerID string, req *request.OfferRequest) (*response.OfferResponse, error)
	DeleteOffer(ctx context.Context, offerID string) error
}

type offerService struct {
	repo  repository.OfferRepository
	audit AuditService
	log   *zap.Logger
}

func NewOfferService(repo repository.OfferRepository, audit AuditService, log *zap.Logger) OfferService {
	return &offerService{
		repo:  repo,
		audit: audit,
		log:   log.With(zap.String("service", "offer")),
	}
}

// GetOffers lists every offer, or only those active and running today
func (s *offerService) GetOffers(ctx context.Context, currentOnly bool) ([]response.OfferResponse, error) {
	var (
		offers []*entity.Offer
		err    error
	)
	if currentOnly {
		offers, err = s.repo.FindCurrent(ctx, utils.Today())
	} else {
		offers, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		s.log.Error("Failed to get offers", zap.Error(err), zap.Bool("current_only", currentOnly))
		return nil, fmt.Errorf("get offers: %w", err)
	}
	return response.MapSlice(offers, response.OfferToResponse), nil
}

func (s *offerService) CreateOffer(ctx context.Context, req *request.OfferRequest) (*response.OfferResponse, error) {
	now := time.Now()
	offer := &entity.Offer{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		IsActive: true,
	}
	if err := applyOfferRequest(offer, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		s.log.Error("Failed to create offer", zap.Error(err), zap.String("title", offer.Title))
		return nil, fmt.Errorf("create offer: %w", err)
	}

	s.audit.Record(ctx, "offer.create", "offer", offer.ID.String(), req)

	resp := response.OfferToResponse(offer)
	return &resp, nil
}

func (s *offerService) UpdateOffer(ctx context.Context, offerID string, req *request.OfferRequest) (*response.OfferResponse, error) {
	offer, err := s.find(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if err := applyOfferRequest(offer, req); err != nil {
		return nil, err
	}
	offer.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, offer); err != nil {
		s.log.Error("Failed to update offer", zap.Error(err), zap.String("offer_id", offerID))
		return nil, fmt.Errorf("update offer: %w", err)
	}

	s.audit.Record(ctx, "offer.update", "offer", offerID, req)

	resp := response.OfferToResponse(offer)
	return &resp, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, offerID string) error {
	offer, err := s.find(ctx, offerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, offer.ID); err != nil {
		s.log.Error("Failed to delete offer", zap.Error(err), zap.String("offer_id", offerID))
		return fmt.Errorf("delete offer: %w", err)
	}

	s.audit.Record(ctx, "offer.delete", "offer", offerID, map[string]any{"title": offer.Title})
	return nil
}

func (s *offerService) find(ctx context.Context, offerID string) (*entity.Offer, error) {
	id, err := uuid.Parse(offerID)
	if err != nil {
		return nil, fmt.Errorf("invalid offer ID format %s", offerID)
	}

	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find offer", zap.Error(err), zap.String("offer_id", offerID))
		return nil, fmt.Errorf("find offer: %w", err)
	}
	if offer == nil {
		return nil, fmt.Errorf("offer %s not found", offerID)
	}
	return offer, nil
}

func applyOfferRequest(offer *entity.Offer, req *request.OfferRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	from, err := utils.ParseDate(req.ValidFrom)
	if err != nil {
		return fmt.Errorf("invalid valid_from date %s", req.ValidFrom)
	}
	until, err := utils.ParseDate(req.ValidUntil)
	if err != nil {
		return fmt.Errorf("invalid valid_until date %s", req.ValidUntil)
	}
	if until.Before(from) {
		return fmt.Errorf("invalid offer window: valid_until is before valid_from")
	}

	offer.Title = strings.TrimSpace(req.Title)
	offer.Description = req.Description
	offer.DiscountPercent = req.DiscountPercent
	offer.ValidFrom = from
	offer.ValidUntil = until
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}
	return nil
}
