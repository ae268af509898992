package service

import (
	"testing"
	"time"

	"go-carpet-shop/internal/apperror"
	"go-carpet-shop/internal/repository"
	"go-carpet-shop/internal/testutil"
	"go-carpet-shop/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRotatesSession(t *testing.T) {
	db := testutil.NewDB(t)
	group := testutil.Group(t, db, "Clerks", "view_sale", "add_sale")
	user := testutil.User(t, db, "ana@example.com", "Secret1!", group)
	auth := NewAuthService(repository.NewUserRepo(db), jwt.NewManager("secret", "test", time.Minute, time.Hour))

	first, err := auth.Login(&LoginRequest{Email: "ANA@example.com", Password: "Secret1!"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, first.User.ID)
	assert.ElementsMatch(t, []string{"view_sale", "add_sale"}, first.Permissions)

	got, err := auth.Verify(first.Token.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	second, err := auth.Login(&LoginRequest{Email: "ana@example.com", Password: "Secret1!"})
	require.NoError(t, err)

	_, err = auth.Verify(first.Token.Access)
	assert.ErrorIs(t, err, ErrSessionReplaced)

	refreshed, err := auth.Refresh(second.Token.Refresh)
	require.NoError(t, err)
	_, err = auth.Verify(refreshed.Token.Access)
	assert.NoError(t, err)

	_, err = auth.Refresh(second.Token.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginFailures(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.User(t, db, "ana@example.com", "Secret1!")
	auth := NewAuthService(repository.NewUserRepo(db), jwt.NewManager("secret", "test", time.Minute, time.Hour))

	_, err := auth.Login(&LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(&LoginRequest{Email: "nobody@example.com", Password: "Secret1!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(&LoginRequest{Email: "not-an-email"})
	requireCode(t, err, apperror.CodeValidation, "email")

	require.NoError(t, repository.NewUserRepo(db).Deactivate(user.ID, "test"))
	_, err = auth.Login(&LoginRequest{Email: "ana@example.com", Password: "Secret1!"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.User(t, db, "ana@example.com", "Secret1!")
	auth := NewAuthService(repository.NewUserRepo(db), jwt.NewManager("secret", "test", time.Minute, time.Hour))

	session, err := auth.Login(&LoginRequest{Email: "ana@example.com", Password: "Secret1!"})
	require.NoError(t, err)
	user, err := auth.Verify(session.Token.Access)
	require.NoError(t, err)

	_, err = auth.ChangePassword(user, &ChangePasswordRequest{OldPassword: "nope", NewPassword: "Better2@"})
	requireCode(t, err, apperror.CodeValidation, "old_password")

	fresh, err := auth.ChangePassword(user, &ChangePasswordRequest{OldPassword: "Secret1!", NewPassword: "Better2@"})
	require.NoError(t, err)

	_, err = auth.Verify(session.Token.Access)
	assert.ErrorIs(t, err, ErrSessionReplaced)
	_, err = auth.Verify(fresh.Token.Access)
	assert.NoError(t, err)

	_, err = auth.Login(&LoginRequest{Email: "ana@example.com", Password: "Better2@"})
	assert.NoError(t, err)
}
