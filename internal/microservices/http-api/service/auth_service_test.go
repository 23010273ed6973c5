package service_test

import (
	"errors"
	"testing"
	"time"

	"threadhub/internal/config"
	"threadhub/internal/microservices/http-api/middleware/auth"
	"threadhub/internal/microservices/http-api/models"
	"threadhub/internal/microservices/http-api/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- MOCK REPOSITORIES ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(refreshToken *models.RefreshToken) error {
	args := m.Called(refreshToken)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByToken(tokenString string) (*models.RefreshToken, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Delete(tokenID string) error {
	args := m.Called(tokenID)
	return args.Error(0)
}

// --- SETUP ---

var errNotFound = errors.New("record not found")

func setupAuthService() (*MockUserRepository, *MockRefreshTokenRepository, service.AuthService) {
	userRepo := new(MockUserRepository)
	tokenRepo := new(MockRefreshTokenRepository)
	cfg := &config.Config{
		JWTSecret:       "test-secret-key",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
	return userRepo, tokenRepo, service.NewAuthService(userRepo, tokenRepo, cfg)
}

// --- TESTS ---

func TestAuthService_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		userRepo, _, svc := setupAuthService()
		userRepo.On("FindByUsername", "alice").Return(nil, errNotFound)
		userRepo.On("FindByEmail", "alice@example.com").Return(nil, errNotFound)
		userRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil)

		user, err := svc.Register("alice", "hunter22", "alice@example.com")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		// Stored password is a hash, never the plaintext
		assert.NotEqual(t, "hunter22", user.Password)
		assert.NoError(t, auth.VerifyPassword(user.Password, "hunter22"))
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		userRepo, _, svc := setupAuthService()
		userRepo.On("FindByUsername", "alice").Return(&models.User{Username: "alice"}, nil)

		_, err := svc.Register("alice", "hunter22", "other@example.com")
		assert.ErrorIs(t, err, service.ErrNameInUse)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		userRepo, _, svc := setupAuthService()
		userRepo.On("FindByUsername", "bob").Return(nil, errNotFound)
		userRepo.On("FindByEmail", "alice@example.com").Return(&models.User{Email: "alice@example.com"}, nil)

		_, err := svc.Register("bob", "hunter22", "alice@example.com")
		assert.ErrorIs(t, err, service.ErrEmailInUse)
	})
}

func TestAuthService_Login(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)
	storedUser := &models.User{ID: "user-1", Username: "alice", Password: hash}

	t.Run("SuccessIssuesBothTokens", func(t *testing.T) {
		userRepo, tokenRepo, svc := setupAuthService()
		userRepo.On("FindByUsername", "alice").Return(storedUser, nil)
		tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

		access, refresh, user, err := svc.Login("alice", "hunter22")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.Equal(t, "user-1", user.ID)

		// The access token round-trips through validation
		claims, err := svc.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "alice", claims.Username)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		userRepo, _, svc := setupAuthService()
		userRepo.On("FindByUsername", "alice").Return(storedUser, nil)

		_, _, _, err := svc.Login("alice", "wrong")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		userRepo, _, svc := setupAuthService()
		userRepo.On("FindByUsername", "nobody").Return(nil, errNotFound)

		_, _, _, err := svc.Login("nobody", "whatever")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	t.Run("GarbageToken", func(t *testing.T) {
		_, _, svc := setupAuthService()

		_, err := svc.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		userRepo, tokenRepo, issuer := setupAuthService()
		userRepo.On("FindByUsername", "alice").Return(&models.User{
			ID: "user-1", Username: "alice", Password: mustHash(t, "pw12"),
		}, nil)
		tokenRepo.On("Create", mock.Anything).Return(nil)

		access, _, _, err := issuer.Login("alice", "pw12")
		require.NoError(t, err)

		otherCfg := &config.Config{
			JWTSecret:       "a-different-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: time.Hour,
		}
		verifier := service.NewAuthService(new(MockUserRepository), new(MockRefreshTokenRepository), otherCfg)

		_, err = verifier.ValidateToken(access)
		assert.Error(t, err)
	})
}

func TestAuthService_RefreshAccessToken(t *testing.T) {
	t.Run("RotatesBothTokens", func(t *testing.T) {
		userRepo, tokenRepo, svc := setupAuthService()
		stored := &models.RefreshToken{
			ID:        "token-1",
			UserID:    "user-1",
			Token:     "old-refresh",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		tokenRepo.On("FindByToken", "old-refresh").Return(stored, nil)
		userRepo.On("FindByID", "user-1").Return(&models.User{ID: "user-1", Username: "alice"}, nil)
		tokenRepo.On("Revoke", "token-1").Return(nil)
		tokenRepo.On("Create", mock.AnythingOfType("*models.RefreshToken")).Return(nil)

		access, refresh, err := svc.RefreshAccessToken("old-refresh")
		require.NoError(t, err)
		assert.NotEmpty(t, access)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, "old-refresh", refresh)
		tokenRepo.AssertCalled(t, "Revoke", "token-1")
	})

	t.Run("RevokedToken", func(t *testing.T) {
		_, tokenRepo, svc := setupAuthService()
		tokenRepo.On("FindByToken", "revoked").Return(&models.RefreshToken{
			ID: "token-2", Revoked: true, ExpiresAt: time.Now().Add(time.Hour),
		}, nil)

		_, _, err := svc.RefreshAccessToken("revoked")
		assert.ErrorIs(t, err, service.ErrExpiredToken)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		_, tokenRepo, svc := setupAuthService()
		tokenRepo.On("FindByToken", "stale").Return(&models.RefreshToken{
			ID: "token-3", ExpiresAt: time.Now().Add(-time.Minute),
		}, nil)

		_, _, err := svc.RefreshAccessToken("stale")
		assert.ErrorIs(t, err, service.ErrExpiredToken)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		_, tokenRepo, svc := setupAuthService()
		tokenRepo.On("FindByToken", "missing").Return(nil, errNotFound)

		_, _, err := svc.RefreshAccessToken("missing")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}
