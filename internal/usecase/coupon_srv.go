package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/data/repository"
	"library-booking/internal/dto/request"
	"library-booking/internal/dto/response"
	"library-booking/pkg/pricing"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CouponService interface {
	Validate(ctx context.Context, req *request.ValidateCouponRequest) (*response.CouponValidationResponse, error)

	// Resolve looks a code up and returns the coupon with the discount it
	// grants on amount today
	Resolve(ctx context.Context, code string, amount float64) (*entity.Coupon, float64, error)

	GetCoupons(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.CouponResponse], error)
	CreateCoupon(ctx context.Context, req *request.CouponRequest) (*response.CouponResponse, error)
	UpdateCoupon(ctx context.Context, couponID string, req *request.CouponRequest) (*response.CouponResponse, error)
	DeleteCoupon(ctx context.Context, couponID string) error
}

type couponService struct {
	repo  repository.CouponRepository
	audit AuditService
	log   *zap.Logger
}

func NewCouponService(repo repository.CouponRepository, audit AuditService, log *zap.Logger) CouponService {
	return &couponService{
		repo:  repo,
		audit: audit,
		log:   log.With(zap.String("service", "coupon")),
	}
}

// couponDiscount applies the eligibility rules of a coupon on the given day
func couponDiscount(c *entity.Coupon, amount float64, today time.Time) (float64, error) {
	today = utils.TruncateDate(today)

	switch {
	case !c.IsActive:
		return 0, fmt.Errorf("invalid coupon: %s is inactive", c.Code)
	case today.Before(utils.TruncateDate(c.ValidFrom)):
		return 0, fmt.Errorf("invalid coupon: %s is not valid until %s", c.Code, c.ValidFrom.Format(utils.DateLayout))
	case today.After(utils.TruncateDate(c.ValidUntil)):
		return 0, fmt.Errorf("invalid coupon: %s expired on %s", c.Code, c.ValidUntil.Format(utils.DateLayout))
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		return 0, fmt.Errorf("invalid coupon: %s usage limit reached", c.Code)
	}

	discount, err := pricing.Discount(pricing.CouponTerms{
		Type:        pricing.DiscountType(c.DiscountType),
		Value:       c.DiscountValue,
		MinAmount:   c.MinAmount,
		MaxDiscount: c.MaxDiscount,
	}, amount)
	if errors.Is(err, pricing.ErrBelowMinimum) {
		return 0, fmt.Errorf("invalid coupon: order amount below minimum %.2f", c.MinAmount)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid coupon: %w", err)
	}
	return discount, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *couponService) Resolve(ctx context.Context, code string, amount float64) (*entity.Coupon, float64, error) {
	code = normalizeCode(code)

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.log.Error("Failed to find coupon", zap.Error(err), zap.String("code", code))
		return nil, 0, fmt.Errorf("find coupon: %w", err)
	}
	if coupon == nil {
		return nil, 0, fmt.Errorf("coupon %s not found", code)
	}

	discount, err := couponDiscount(coupon, amount, utils.Now())
	if err != nil {
		return nil, 0, err
	}
	return coupon, discount, nil
}

func (s *couponService) Validate(ctx context.Context, req *request.ValidateCouponRequest) (*response.CouponValidationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	coupon, discount, err := s.Resolve(ctx, req.Code, req.Amount)
	if err != nil {
		return nil, err
	}

	return &response.CouponValidationResponse{
		Code:        coupon.Code,
		Amount:      req.Amount,
		Discount:    discount,
		FinalAmount: utils.RoundMoney(req.Amount - discount),
	}, nil
}

func (s *couponService) GetCoupons(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.CouponResponse], error) {
	coupons, err := s.repo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get coupons", zap.Error(err))
		return nil, fmt.Errorf("get coupons: %w", err)
	}

	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count coupons: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(coupons, response.CouponToResponse),
		req.Page, req.Limit(), total,
	), nil
}

func (s *couponService) CreateCoupon(ctx context.Context, req *request.CouponRequest) (*response.CouponResponse, error) {
	coupon := &entity.Coupon{IsActive: true}
	if err := applyCouponRequest(coupon, req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByCode(ctx, coupon.Code)
	if err != nil {
		s.log.Error("Failed to check coupon code", zap.Error(err), zap.String("code", coupon.Code))
		return nil, fmt.Errorf("check coupon code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("coupon code %s already exists", coupon.Code)
	}

	now := time.Now()
	coupon.ID = uuid.New()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	if err := s.repo.Create(ctx, coupon); err != nil {
		s.log.Error("Failed to create coupon", zap.Error(err), zap.String("code", coupon.Code))
		return nil, fmt.Errorf("create coupon: %w", err)
	}

	s.audit.Record(ctx, "coupon.create", "coupon", coupon.ID.String(), req)

	resp := response.CouponToResponse(coupon)
	return &resp, nil
}

func (s *couponService) UpdateCoupon(ctx context.Context, couponID string, req *request.CouponRequest) (*response.CouponResponse, error) {
	coupon, err := s.find(ctx, couponID)
	if err != nil {
		return nil, err
	}

	if err := applyCouponRequest(coupon, req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByCode(ctx, coupon.Code)
	if err != nil {
		return nil, fmt.Errorf("check coupon code: %w", err)
	}
	if existing != nil && existing.ID != coupon.ID {
		return nil, fmt.Errorf("coupon code %s already exists", coupon.Code)
	}

	coupon.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, coupon); err != nil {
		s.log.Error("Failed to update coupon", zap.Error(err), zap.String("coupon_id", couponID))
		return nil, fmt.Errorf("update coupon: %w", err)
	}

	s.audit.Record(ctx, "coupon.update", "coupon", couponID, req)

	resp := response.CouponToResponse(coupon)
	return &resp, nil
}

func (s *couponService) DeleteCoupon(ctx context.Context, couponID string) error {
	coupon, err := s.find(ctx, couponID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, coupon.ID); err != nil {
		s.log.Error("Failed to delete coupon", zap.Error(err), zap.String("coupon_id", couponID))
		return fmt.Errorf("delete coupon: %w", err)
	}

	s.audit.Record(ctx, "coupon.delete", "coupon", couponID, map[string]any{"code": coupon.Code})
	return nil
}

func (s *couponService) find(ctx context.Context, couponID string) (*entity.Coupon, error) {
	id, err := uuid.Parse(couponID)
	if err != nil {
		return nil, fmt.Errorf("invalid coupon ID format %s", couponID)
	}

	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find coupon", zap.Error(err), zap.String("coupon_id", couponID))
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	if coupon == nil {
		return nil, fmt.Errorf("coupon %s not found", couponID)
	}
	return coupon, nil
}

func applyCouponRequest(coupon *entity.Coupon, req *request.CouponRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	validFrom, err := utils.ParseDate(req.ValidFrom)
	if err != nil {
		return fmt.Errorf("invalid valid_from date %s", req.ValidFrom)
	}
	validUntil, err := utils.ParseDate(req.ValidUntil)
	if err != nil {
		return fmt.Errorf("invalid valid_until date %s", req.ValidUntil)
	}
	if validUntil.Before(validFrom) {
		return fmt.Errorf("invalid validity window: valid_until is before valid_from")
	}
	if req.DiscountType == string(entity.DiscountPercentage) && req.DiscountValue > 100 {
		return fmt.Errorf("invalid discount: percentage cannot exceed 100")
	}

	coupon.Code = normalizeCode(req.Code)
	coupon.Description = req.Description
	coupon.DiscountType = entity.DiscountType(req.DiscountType)
	coupon.DiscountValue = req.DiscountValue
	coupon.MinAmount = req.MinAmount
	coupon.MaxDiscount = req.MaxDiscount
	coupon.UsageLimit = req.UsageLimit
	coupon.ValidFrom = validFrom
	coupon.ValidUntil = validUntil
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	return nil
}
