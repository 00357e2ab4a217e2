package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edupress/edupress/internal/domain"
)

func newTestUsers(t *testing.T) (*UserUsecase, *AuthUsecase, *mockSessionRepo, *domain.User) {
	t.Helper()
	users := newMockUserRepo()
	sessions := newMockSessionRepo()
	mailer := &mockMailer{}
	auth := NewAuthUsecase(users, sessions, mailer, &mockAuditLog{}, testAuthConfig(), zap.NewNop())
	uc := NewUserUsecase(users, sessions, testAuthConfig(), zap.NewNop())

	registerAndActivate(t, auth, mailer, "A", "a@x.com", "secret1")
	res, err := auth.Login(context.Background(), "a@x.com", "secret1")
	require.NoError(t, err)

	return uc, auth, sessions, res.User
}

func TestUpdateInfoRefreshesSnapshot(t *testing.T) {
	uc, _, sessions, user := newTestUsers(t)
	ctx := context.Background()

	updated, err := uc.UpdateInfo(ctx, user.ID, "B", "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)

	snapshot, err := sessions.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "b@x.com", snapshot.Email)
}

func TestUpdateInfoRejectsBadEmail(t *testing.T) {
	uc, _, _, user := newTestUsers(t)

	_, err := uc.UpdateInfo(context.Background(), user.ID, "", "not-an-email")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdatePassword(t *testing.T) {
	uc, auth, _, user := newTestUsers(t)
	ctx := context.Background()

	err := uc.UpdatePassword(ctx, user.ID, "wrong-old", "newsecret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, uc.UpdatePassword(ctx, user.ID, "secret1", "newsecret"))

	_, err = auth.Login(ctx, "a@x.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Login(ctx, "a@x.com", "newsecret")
	assert.NoError(t, err)
}

func TestUpdateAvatarRefreshesSnapshot(t *testing.T) {
	uc, _, sessions, user := newTestUsers(t)
	ctx := context.Background()

	_, err := uc.UpdateAvatar(ctx, user.ID, domain.Avatar{PublicID: "p1", URL: "http://img/1"})
	require.NoError(t, err)

	snapshot, err := sessions.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "p1", snapshot.Avatar.PublicID)
}
