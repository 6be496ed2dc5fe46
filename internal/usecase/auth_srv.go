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

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, token string, req *request.ChangePasswordRequest) error
}

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to check email")
	}
	if existing != nil {
		return nil, fmt.Errorf("email already registered")
	}

	existing, err = s.repo.User.FindByMobile(ctx, req.Mobile)
	if err != nil {
		s.log.Error("Failed to check mobile", zap.Error(err), zap.String("mobile", req.Mobile))
		return nil, fmt.Errorf("failed to check mobile")
	}
	if existing != nil {
		return nil, fmt.Errorf("mobile number already registered")
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password")
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Mobile:       req.Mobile,
		PasswordHash: hashedPassword,
		Role:         entity.RoleMember,
		IsActive:     true,
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to create account")
	}

	if err := s.repo.Wallet.Create(ctx, user.ID); err != nil {
		// the wallet row is also upserted on first credit
		s.log.Warn("Failed to open wallet", zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	session, err := s.createSession(ctx, user.ID, "", "")
	if err != nil {
		s.log.Warn("Failed to create session after register",
			zap.Error(err), zap.String("user_id", user.ID.String()))
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Login validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	identifier := strings.TrimSpace(req.Identifier)

	var (
		user *entity.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repo.User.FindByEmail(ctx, identifier)
	} else {
		user, err = s.repo.User.FindByMobile(ctx, identifier)
	}
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("identifier", identifier))
		return nil, fmt.Errorf("failed to find user")
	}

	if user == nil {
		s.log.Warn("User not found for login", zap.String("identifier", identifier))
		return nil, fmt.Errorf("invalid credentials")
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid password", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("invalid credentials")
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to login", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("account is deactivated")
	}

	session, err := s.createSession(ctx, user.ID, req.UserAgent, req.IPAddress)
	if err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("failed to create session")
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	resp := response.AuthToResponse(user, session)
	return &resp, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	tokenUUID, err := uuid.Parse(token)
	if err != nil {
		s.log.Warn("Invalid token format", zap.Error(err))
		return fmt.Errorf("invalid token format")
	}

	if err := s.repo.Session.Revoke(ctx, tokenUUID.String()); err != nil {
		s.log.Error("Failed to revoke session", zap.Error(err))
		return fmt.Errorf("failed to logout")
	}

	s.log.Info("User logged out")
	return nil
}

// ChangePassword keeps the calling session alive and revokes every other one
func (s *authService) ChangePassword(ctx context.Context, userID uuid.UUID, token string, req *request.ChangePasswordRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to find user", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to change password")
	}
	if user == nil {
		return fmt.Errorf("user not found")
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return fmt.Errorf("invalid current password")
	}
	if req.CurrentPassword == req.NewPassword {
		return fmt.Errorf("new password cannot match the current password")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return fmt.Errorf("failed to process password")
	}

	user.PasswordHash = hashed
	user.UpdatedAt = time.Now()
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update password", zap.Error(err), zap.String("user_id", userID.String()))
		return fmt.Errorf("failed to change password")
	}

	if err := s.repo.Session.RevokeAllUserSessions(ctx, userID, token); err != nil {
		s.log.Warn("Failed to revoke other sessions", zap.Error(err), zap.String("user_id", userID.String()))
	}

	s.log.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) createSession(ctx context.Context, userID uuid.UUID, userAgent, ip string) (*entity.Session, error) {
	expiry := time.Duration(s.config.Session.ExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}

	now := time.Now()
	session := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     utils.GenerateSessionToken(),
		UserAgent: utils.StringPtr(userAgent),
		IPAddress: utils.StringPtr(ip),
		ExpiresAt: now.Add(expiry),
	}

	if err := s.repo.Session.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}
