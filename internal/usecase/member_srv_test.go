package usecase

import (
	"context"
	"testing"

	"library-booking/internal/data/entity"
	"library-booking/internal/dto/request"
	"library-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memberUsers struct {
	authUsers
}

func (f memberUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

func setupMembers(t *testing.T) (*fixture, *authSessions, MemberService, context.Context) {
	t.Helper()
	f := newFixture()
	f.member.Mobile = "9876543210"
	f.admin.Mobile = "9123456780"

	sessions := &authSessions{fakeSessions: f.sessions}
	f.repo.User = memberUsers{authUsers{f.users}}
	f.repo.Session = sessions

	ctx := utils.SetUserContext(context.Background(), f.admin.ID, string(entity.RoleAdmin))
	return f, sessions, NewMemberService(f.repo, f.auditService(), f.log), ctx
}

func TestUpdateMember(t *testing.T) {
	f, _, svc, ctx := setupMembers(t)

	inactive := false
	resp, err := svc.UpdateMember(ctx, f.member.ID.String(), &request.UpdateMemberRequest{
		Name:     " Asha R ",
		Mobile:   "9876543211",
		IsActive: &inactive,
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha R", resp.Name)
	assert.False(t, f.users.users[f.member.ID].IsActive)
	assert.Equal(t, "9876543211", f.users.users[f.member.ID].Mobile)
	assert.Equal(t, []string{"member.update"}, f.audit.actions())
	require.NotNil(t, f.audit.logs[0].ActorID)
	assert.Equal(t, f.admin.ID, *f.audit.logs[0].ActorID)
}

func TestUpdateMember_Rejections(t *testing.T) {
	f, _, svc, ctx := setupMembers(t)

	_, err := svc.UpdateMember(ctx, f.member.ID.String(), &request.UpdateMemberRequest{Name: "Asha", Mobile: f.admin.Mobile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	_, err = svc.UpdateMember(ctx, uuid.NewString(), &request.UpdateMemberRequest{Name: "Ghost", Mobile: "9000000000"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	inactive := false
	_, err = svc.UpdateMember(ctx, f.admin.ID.String(), &request.UpdateMemberRequest{Name: "Desk Admin", Mobile: f.admin.Mobile, IsActive: &inactive})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot deactivate or demote your own account")

	member := string(entity.RoleMember)
	_, err = svc.UpdateMember(ctx, f.admin.ID.String(), &request.UpdateMemberRequest{Name: "Desk Admin", Mobile: f.admin.Mobile, Role: &member})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot deactivate or demote your own account")

	assert.Equal(t, entity.RoleAdmin, f.users.users[f.admin.ID].Role)
	assert.True(t, f.users.users[f.admin.ID].IsActive)
	assert.Empty(t, f.audit.actions())
}

func TestDeleteMember(t *testing.T) {
	f, _, svc, ctx := setupMembers(t)

	err := svc.DeleteMember(ctx, f.admin.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot delete your own account")
	assert.Contains(t, f.users.users, f.admin.ID)

	require.NoError(t, svc.DeleteMember(ctx, f.member.ID.String()))
	assert.NotContains(t, f.users.users, f.member.ID)
	assert.Equal(t, []string{"member.delete"}, f.audit.actions())

	err = svc.DeleteMember(ctx, f.member.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
