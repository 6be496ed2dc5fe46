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

type PlanService interface {
	GetPlans(ctx context.Context, activeOnly bool) ([]response.PlanResponse, error)
	GetPlanByID(ctx context.Context, planID string) (*response.PlanResponse, error)
	CreatePlan(ctx context.Context, req *request.PlanRequest) (*response.PlanResponse, error)
	UpdatePlan(ctx context.Context, planID string, req *request.PlanRequest) (*response.PlanResponse, error)
	DeletePlan(ctx context.Context, planID string) error
}

type planService struct {
	repo  repository.PlanRepository
	audit AuditService
	log   *zap.Logger
}

func NewPlanService(repo repository.PlanRepository, audit AuditService, log *zap.Logger) PlanService {
	return &planService{
		repo:  repo,
		audit: audit,
		log:   log.With(zap.String("service", "plan")),
	}
}

func (s *planService) GetPlans(ctx context.Context, activeOnly bool) ([]response.PlanResponse, error) {
	plans, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		s.log.Error("Failed to get plans", zap.Error(err))
		return nil, fmt.Errorf("get plans: %w", err)
	}
	return response.MapSlice(plans, response.PlanToResponse), nil
}

func (s *planService) GetPlanByID(ctx context.Context, planID string) (*response.PlanResponse, error) {
	plan, err := s.find(ctx, planID)
	if err != nil {
		return nil, err
	}
	resp := response.PlanToResponse(plan)
	return &resp, nil
}

func (s *planService) CreatePlan(ctx context.Context, req *request.PlanRequest) (*response.PlanResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	plan := &entity.Plan{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		IsActive: true,
	}
	applyPlanRequest(plan, req)

	if err := s.repo.Create(ctx, plan); err != nil {
		s.log.Error("Failed to create plan", zap.Error(err), zap.String("name", plan.Name))
		return nil, fmt.Errorf("create plan: %w", err)
	}

	s.audit.Record(ctx, "plan.create", "plan", plan.ID.String(), req)
	s.log.Info("Plan created", zap.String("plan_id", plan.ID.String()), zap.String("name", plan.Name))

	resp := response.PlanToResponse(plan)
	return &resp, nil
}

func (s *planService) UpdatePlan(ctx context.Context, planID string, req *request.PlanRequest) (*response.PlanResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	plan, err := s.find(ctx, planID)
	if err != nil {
		return nil, err
	}

	applyPlanRequest(plan, req)
	plan.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, plan); err != nil {
		s.log.Error("Failed to update plan", zap.Error(err), zap.String("plan_id", planID))
		return nil, fmt.Errorf("update plan: %w", err)
	}

	s.audit.Record(ctx, "plan.update", "plan", planID, req)

	resp := response.PlanToResponse(plan)
	return &resp, nil
}

func (s *planService) DeletePlan(ctx context.Context, planID string) error {
	plan, err := s.find(ctx, planID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, plan.ID); err != nil {
		s.log.Error("Failed to delete plan", zap.Error(err), zap.String("plan_id", planID))
		return fmt.Errorf("delete plan: %w", err)
	}

	s.audit.Record(ctx, "plan.delete", "plan", planID, map[string]any{"name": plan.Name})
	return nil
}

func (s *planService) find(ctx context.Context, planID string) (*entity.Plan, error) {
	id, err := uuid.Parse(planID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan ID format %s", planID)
	}

	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find plan", zap.Error(err), zap.String("plan_id", planID))
		return nil, fmt.Errorf("find plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("plan %s not found", planID)
	}
	return plan, nil
}

func applyPlanRequest(plan *entity.Plan, req *request.PlanRequest) {
	plan.Name = strings.TrimSpace(req.Name)
	plan.Description = req.Description
	plan.DurationDays = req.DurationDays
	plan.Price = utils.RoundMoney(req.Price)
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
}
