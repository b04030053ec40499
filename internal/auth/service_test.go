package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/folio/internal/auth"
	"github.com/gosuda/folio/internal/domain"
)

// mockUserRepo is a configurable domain.UserRepository for service tests.
type mockUserRepo struct {
	getByEmailUser *domain.User
	getByEmailErr  error

	getByIDUser *domain.User
	getByIDErr  error

	createErr   error
	createdUser *domain.User // captures the user passed to Create.
}

func (m *mockUserRepo) Create(_ context.Context, u *domain.User) error {
	m.createdUser = u
	return m.createErr
}

func (m *mockUserRepo) GetByID(context.Context, uuid.UUID) (*domain.User, error) {
	return m.getByIDUser, m.getByIDErr
}

func (m *mockUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return m.getByEmailUser, m.getByEmailErr
}

func (m *mockUserRepo) Update(context.Context, *domain.User) error { return nil }

func (m *mockUserRepo) List(context.Context) ([]*domain.User, error) { return nil, nil }

const (
	testJWTSecret = "test-secret-key-for-unit-tests-000000"
	testEmail     = "alice@example.com"
	testPassword  = "correct-horse-battery-staple"
)

func newTestService(repo *mockUserRepo) *auth.Service {
	return auth.NewService(repo, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
}

func storedAdmin(t *testing.T) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	return &domain.User{ID: uuid.New(), Email: testEmail, PasswordHash: hash, Role: auth.RoleAdmin}
}

func TestEnsureAdmin(t *testing.T) {
	t.Parallel()

	t.Run("creates missing admin", func(t *testing.T) {
		t.Parallel()
		repo := &mockUserRepo{getByEmailErr: domain.ErrNotFound}

		created, err := newTestService(repo).EnsureAdmin(t.Context(), " Alice@Example.com ", testPassword, "Alice")
		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, repo.createdUser)
		assert.Equal(t, testEmail, repo.createdUser.Email)
		assert.Equal(t, auth.RoleAdmin, repo.createdUser.Role)
		assert.True(t, auth.VerifyPassword(testPassword, repo.createdUser.PasswordHash))
	})

	t.Run("existing admin untouched", func(t *testing.T) {
		t.Parallel()
		repo := &mockUserRepo{getByEmailUser: storedAdmin(t)}

		created, err := newTestService(repo).EnsureAdmin(t.Context(), testEmail, "another-password", "Alice")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Nil(t, repo.createdUser)
	})

	t.Run("empty config is a no-op", func(t *testing.T) {
		t.Parallel()
		repo := &mockUserRepo{getByEmailErr: domain.ErrNotFound}

		created, err := newTestService(repo).EnsureAdmin(t.Context(), "", "", "")
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("lookup failure is propagated", func(t *testing.T) {
		t.Parallel()
		dbErr := errors.New("connection refused")
		repo := &mockUserRepo{getByEmailErr: dbErr}

		_, err := newTestService(repo).EnsureAdmin(t.Context(), testEmail, testPassword, "Alice")
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		t.Parallel()
		user := storedAdmin(t)
		svc := newTestService(&mockUserRepo{getByEmailUser: user})

		pair, err := svc.Login(t.Context(), testEmail, testPassword)
		require.NoError(t, err)
		assert.True(t, pair.ExpiresAt.After(time.Now()))

		claims, err := auth.ValidateTyped(testJWTSecret, pair.AccessToken, auth.IssuerPlatform, auth.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)

		_, err = auth.ValidateTyped(testJWTSecret, pair.RefreshToken, auth.IssuerPlatform, auth.TokenTypeRefresh)
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&mockUserRepo{getByEmailUser: storedAdmin(t)})

		pair, err := svc.Login(t.Context(), testEmail, "wrong")
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		svc := newTestService(&mockUserRepo{getByEmailErr: domain.ErrNotFound})

		_, err := svc.Login(t.Context(), "nobody@example.com", testPassword)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	t.Run("refresh token yields access token", func(t *testing.T) {
		t.Parallel()
		user := storedAdmin(t)
		svc := newTestService(&mockUserRepo{getByEmailUser: user, getByIDUser: user})

		pair, err := svc.Login(t.Context(), testEmail, testPassword)
		require.NoError(t, err)

		access, err := svc.RefreshToken(t.Context(), pair.RefreshToken)
		require.NoError(t, err)
		_, err = auth.ValidateTyped(testJWTSecret, access, auth.IssuerPlatform, auth.TokenTypeAccess)
		require.NoError(t, err)
	})

	t.Run("access token is not accepted", func(t *testing.T) {
		t.Parallel()
		user := storedAdmin(t)
		svc := newTestService(&mockUserRepo{getByEmailUser: user, getByIDUser: user})

		pair, err := svc.Login(t.Context(), testEmail, testPassword)
		require.NoError(t, err)

		_, err = svc.RefreshToken(t.Context(), pair.AccessToken)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		t.Parallel()
		token, err := auth.IssueRefreshToken(testJWTSecret, uuid.New(), auth.RoleAdmin, time.Hour)
		require.NoError(t, err)
		svc := newTestService(&mockUserRepo{getByIDErr: domain.ErrNotFound})

		_, err = svc.RefreshToken(t.Context(), token)
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})
}
