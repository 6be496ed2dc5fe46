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

type MemberService interface {
	// Self service
	GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error)

	// Admin
	GetMembers(ctx context.Context, search string, req request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error)
	GetMember(ctx context.Context, memberID string) (*response.MemberDetailResponse, error)
	UpdateMember(ctx context.Context, memberID string, req *request.UpdateMemberRequest) (*response.UserResponse, error)
	DeleteMember(ctx context.Context, memberID string) error
}

type memberService struct {
	repo  *repository.Repository
	audit AuditService
	log   *zap.Logger
}

func NewMemberService(repo *repository.Repository, audit AuditService, log *zap.Logger) MemberService {
	return &memberService{
		repo:  repo,
		audit: audit,
		log:   log.With(zap.String("service", "member")),
	}
}

func (s *memberService) GetProfile(ctx context.Context, userID uuid.UUID) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to get profile")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *memberService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to update profile")
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	if err := s.ensureMobileFree(ctx, req.Mobile, user.ID); err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Mobile = req.Mobile
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update profile", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("failed to update profile")
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *memberService) GetMembers(ctx context.Context, search string, req request.PaginatedRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	search = strings.TrimSpace(search)

	users, err := s.repo.User.FindAll(ctx, search, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get members", zap.Error(err), zap.Int("page", req.Page))
		return nil, fmt.Errorf("get members: %w", err)
	}

	total, err := s.repo.User.CountAll(ctx, search)
	if err != nil {
		s.log.Error("Failed to count members", zap.Error(err))
		return nil, fmt.Errorf("count members: %w", err)
	}

	return response.NewPaginatedResponse(
		response.MapSlice(users, response.UserToResponse),
		req.Page, req.Limit(), total,
	), nil
}

func (s *memberService) GetMember(ctx context.Context, memberID string) (*response.MemberDetailResponse, error) {
	user, err := s.findMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	detail := &response.MemberDetailResponse{UserResponse: response.UserToResponse(user)}

	wallet, err := s.repo.Wallet.FindByUserID(ctx, user.ID)
	if err != nil {
		s.log.Warn("Failed to load member wallet", zap.Error(err), zap.String("user_id", memberID))
	} else if wallet != nil {
		detail.WalletBalance = wallet.Balance
	}

	count, err := s.repo.Booking.CountByUserID(ctx, user.ID)
	if err != nil {
		s.log.Warn("Failed to count member bookings", zap.Error(err), zap.String("user_id", memberID))
	}
	detail.BookingCount = count

	return detail, nil
}

func (s *memberService) UpdateMember(ctx context.Context, memberID string, req *request.UpdateMemberRequest) (*response.UserResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.findMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureMobileFree(ctx, req.Mobile, user.ID); err != nil {
		return nil, err
	}

	actorID, _ := utils.GetUserIDFromContext(ctx)
	if actorID == user.ID && ((req.IsActive != nil && !*req.IsActive) || (req.Role != nil && *req.Role != string(entity.RoleAdmin))) {
		return nil, fmt.Errorf("cannot deactivate or demote your own account")
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Mobile = req.Mobile
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Role != nil {
		user.Role = entity.UserRole(*req.Role)
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update member", zap.Error(err), zap.String("user_id", memberID))
		return nil, fmt.Errorf("update member: %w", err)
	}

	if !user.IsActive {
		if err := s.repo.Session.RevokeAllUserSessions(ctx, user.ID, ""); err != nil {
			s.log.Warn("Failed to revoke sessions of deactivated member", zap.Error(err), zap.String("user_id", memberID))
		}
	}

	s.audit.Record(ctx, "member.update", "user", user.ID.String(), map[string]any{
		"name":      user.Name,
		"mobile":    user.Mobile,
		"role":      user.Role,
		"is_active": user.IsActive,
	})

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *memberService) DeleteMember(ctx context.Context, memberID string) error {
	user, err := s.findMember(ctx, memberID)
	if err != nil {
		return err
	}

	if actorID, ok := utils.GetUserIDFromContext(ctx); ok && actorID == user.ID {
		return fmt.Errorf("cannot delete your own account")
	}

	if err := s.repo.User.Delete(ctx, user.ID); err != nil {
		s.log.Error("Failed to delete member", zap.Error(err), zap.String("user_id", memberID))
		return fmt.Errorf("delete member: %w", err)
	}

	if err := s.repo.Session.RevokeAllUserSessions(ctx, user.ID, ""); err != nil {
		s.log.Warn("Failed to revoke sessions of deleted member", zap.Error(err), zap.String("user_id", memberID))
	}

	s.audit.Record(ctx, "member.delete", "user", user.ID.String(), map[string]any{"email": user.Email})
	s.log.Info("Member deleted", zap.String("user_id", memberID))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *memberService) findMember(ctx context.Context, memberID string) (*entity.User, error) {
	id, err := uuid.Parse(memberID)
	if err != nil {
		return nil, fmt.Errorf("invalid member ID format %s", memberID)
	}

	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find member", zap.Error(err), zap.String("user_id", memberID))
		return nil, fmt.Errorf("find member: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("member %s not found", memberID)
	}

	return user, nil
}

func (s *memberService) ensureMobileFree(ctx context.Context, mobile string, owner uuid.UUID) error {
	other, err := s.repo.User.FindByMobile(ctx, mobile)
	if err != nil {
		s.log.Error("Failed to check mobile", zap.Error(err))
		return fmt.Errorf("failed to check mobile")
	}
	if other != nil && other.ID != owner {
		return fmt.Errorf("mobile number already registered")
	}
	return nil
}
