package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

func newAuth(f *fixture, unique bool) *AuthService {
	cascade := []Clearable{f.repo.Tasks, f.repo.Exams, f.repo.Settings}
	return NewAuthService(f.repo.Users, f.repo.CurrentUser, cascade, nil, f.clock, AuthConfig{UniqueEmail: unique}, nil)
}

func signup(t *testing.T, svc *AuthService, email string) *models.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), SignupRequest{Name: "Ada Lovelace", Email: email, Password: "secret", Class: "10B"})
	require.NoError(t, err)
	return user
}

func TestAuthSignupStartsSession(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f, true)
	ctx := context.Background()

	user := signup(t, svc, "  Ada@Example.COM ")
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "1710498600000", user.ID)
	assert.True(t, user.Joined.Equal(fixedNow))

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)
	assert.Len(t, f.repo.Users.Read(ctx), 1)
}

func TestAuthSignupDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f, true)
	signup(t, svc, "ada@example.com")

	_, err := svc.Signup(context.Background(), SignupRequest{Name: "Other", Email: "ADA@example.com", Password: "x"})
	assert.Equal(t, appErrors.ErrEmailTaken.Code, appErrors.FromError(err).Code)

	lenient := newAuth(f, false)
	_, err = lenient.Signup(context.Background(), SignupRequest{Name: "Other", Email: "ADA@example.com", Password: "x"})
	require.NoError(t, err)
	assert.Len(t, f.repo.Users.Read(context.Background()), 2)
}

func TestAuthSignupValidation(t *testing.T) {
	svc := newAuth(newFixture(t), true)
	_, err := svc.Signup(context.Background(), SignupRequest{Name: "", Email: "not-an-email", Password: ""})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginLogout(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f, true)
	ctx := context.Background()
	signup(t, svc, "ada@example.com")
	require.NoError(t, svc.Logout(ctx))

	_, err := svc.Current(ctx)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)

	user, err := svc.Login(ctx, LoginRequest{Email: "ADA@EXAMPLE.COM", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", user.Name)

	_, err = svc.Current(ctx)
	require.NoError(t, err)
}

func TestAuthChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f, true)
	ctx := context.Background()
	signup(t, svc, "ada@example.com")

	err := svc.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "secret", NewPassword: "a", ConfirmPassword: "b"})
	assert.Equal(t, appErrors.ErrPasswordMismatch.Code, appErrors.FromError(err).Code)

	err = svc.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "n3w", ConfirmPassword: "n3w"})
	assert.Equal(t, appErrors.ErrWrongPassword.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.ChangePassword(ctx, ChangePasswordRequest{CurrentPassword: "secret", NewPassword: "n3w", ConfirmPassword: "n3w"}))
	assert.Equal(t, "n3w", f.repo.Users.Read(ctx)[0].Password)
	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "n3w", current.Password)

	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "n3w"})
	require.NoError(t, err)
}

func TestAuthDeleteAccountCascades(t *testing.T) {
	f := newFixture(t)
	svc := newAuth(f, false)
	ctx := context.Background()
	signup(t, svc, "bob@example.com")
	signup(t, svc, "ada@example.com")
	signup(t, svc, "ada@example.com")
	f.seedTasks(t, models.Task{ID: 1})
	f.seedExams(t, models.Exam{ID: 2})
	require.NoError(t, f.repo.Settings.Write(ctx, models.Settings{Notifications: false}))

	require.NoError(t, svc.DeleteAccount(ctx))

	users := f.repo.Users.Read(ctx)
	require.Len(t, users, 1)
	assert.Equal(t, "bob@example.com", users[0].Email)
	_, err := svc.Current(ctx)
	assert.Error(t, err)
	assert.Empty(t, f.repo.Tasks.Read(ctx))
	assert.Empty(t, f.repo.Exams.Read(ctx))
	_, ok := f.repo.Settings.Read(ctx)
	assert.False(t, ok)
}

func TestAuthDeleteAccountRequiresSession(t *testing.T) {
	svc := newAuth(newFixture(t), true)
	err := svc.DeleteAccount(context.Background())
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
