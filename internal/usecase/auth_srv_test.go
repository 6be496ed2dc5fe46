package usecase

import (
	"context"
	"testing"
	"time"

	"library-booking/internal/data/entity"
	"library-booking/internal/dto/request"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authUsers struct {
	*fakeUsers
}

func (f authUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f authUsers) FindByMobile(_ context.Context, mobile string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Mobile == mobile {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f authUsers) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

type authSessions struct {
	*fakeSessions
	created []*entity.Session
	revoked []string
	kept    string
}

func (f *authSessions) Create(_ context.Context, s *entity.Session) error {
	f.created = append(f.created, s)
	return nil
}

func (f *authSessions) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *authSessions) RevokeAllUserSessions(_ context.Context, _ uuid.UUID, except string) error {
	f.kept = except
	return nil
}

func setupAuth(t *testing.T) (*fixture, *authSessions, AuthService) {
	t.Helper()
	f := newFixture()

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	f.member.PasswordHash = hash
	f.member.Mobile = "9876543210"

	sessions := &authSessions{fakeSessions: f.sessions}
	f.repo.User = authUsers{f.users}
	f.repo.Session = sessions
	f.config.Session.ExpiryHours = 12

	return f, sessions, NewAuthService(f.repo, f.config, f.log)
}

func TestLogin_ByEmailOrMobile(t *testing.T) {
	f, sessions, svc := setupAuth(t)

	for _, identifier := range []string{"asha@example.com", "9876543210"} {
		resp, err := svc.Login(context.Background(), &request.LoginRequest{
			Identifier: identifier,
			Password:   "secret123",
			UserAgent:  "test",
			IPAddress:  "10.0.0.1",
		})
		require.NoError(t, err, identifier)
		assert.Equal(t, f.member.ID.String(), resp.UserID)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, entity.RoleMember, resp.Role)
	}

	require.Len(t, sessions.created, 2)
	s := sessions.created[0]
	require.NotNil(t, s.IPAddress)
	assert.Equal(t, "10.0.0.1", *s.IPAddress)
	assert.WithinDuration(t, s.CreatedAt.Add(12*time.Hour), s.ExpiresAt, 0)
}

func TestLogin_Rejections(t *testing.T) {
	f, sessions, svc := setupAuth(t)

	_, err := svc.Login(context.Background(), &request.LoginRequest{Identifier: "asha@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	_, err = svc.Login(context.Background(), &request.LoginRequest{Identifier: "nobody@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, "invalid credentials", err.Error())

	_, err = svc.Login(context.Background(), &request.LoginRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	f.users.users[f.member.ID].IsActive = false
	_, err = svc.Login(context.Background(), &request.LoginRequest{Identifier: "asha@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deactivated")

	assert.Empty(t, sessions.created)
}

func TestLogout(t *testing.T) {
	_, sessions, svc := setupAuth(t)

	require.Error(t, svc.Logout(context.Background(), "not-a-token"))

	token := uuid.NewString()
	require.NoError(t, svc.Logout(context.Background(), token))
	assert.Equal(t, []string{token}, sessions.revoked)
}

func TestChangePassword(t *testing.T) {
	f, sessions, svc := setupAuth(t)
	current := uuid.NewString()

	err := svc.ChangePassword(context.Background(), f.member.ID, current, &request.ChangePasswordRequest{
		CurrentPassword: "nope", NewPassword: "another1",
	})
	require.Error(t, err)
	assert.Equal(t, "invalid current password", err.Error())

	err = svc.ChangePassword(context.Background(), f.member.ID, current, &request.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "secret123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot")

	err = svc.ChangePassword(context.Background(), f.member.ID, current, &request.ChangePasswordRequest{
		CurrentPassword: "secret123", NewPassword: "another1",
	})
	require.NoError(t, err)

	assert.Equal(t, current, sessions.kept)
	assert.True(t, utils.CheckPasswordHash("another1", f.users.users[f.member.ID].PasswordHash))
}
