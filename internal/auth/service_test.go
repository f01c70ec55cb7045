package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/rcastillo/storefront-backend/pkg/auth"
	"github.com/rcastillo/storefront-backend/pkg/auth/session"
	"github.com/rcastillo/storefront-backend/pkg/config"
	"github.com/rcastillo/storefront-backend/pkg/db/models"
	"github.com/rcastillo/storefront-backend/pkg/enums"
	pkgerrors "github.com/rcastillo/storefront-backend/pkg/errors"
	"github.com/rcastillo/storefront-backend/pkg/security"
)

type stubUsers struct {
	byEmail map[string]*models.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]*models.User{}}
}

func (s *stubUsers) Create(_ context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessions struct {
	generated map[string]string
	revoked   []string
	rotateErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{generated: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	stored, ok := s.generated[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	s.generated[newID] = token
	return newID, token, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "storefront-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Minimal argon cost keeps the suite fast.
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(repo *stubUsers, sessions *stubSessions) *service {
	return &service{
		users:    repo,
		sessions: sessions,
		jwtCfg:   testJWTConfig(),
		pwdCfg:   testPasswordConfig(),
		now:      time.Now,
	}
}

func seedUser(t *testing.T, repo *stubUsers, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPasswordConfig())
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         enums.UserRoleCustomer,
		IsActive:     true,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterNewAccount(t *testing.T) {
	repo := newStubUsers()
	svc := newTestService(repo, newStubSessions())

	view, err := svc.Register(context.Background(), RegisterInput{
		Email:    "New.User@Example.com",
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", view.Email, "emails are normalised to lowercase")
	assert.Equal(t, enums.UserRoleCustomer, view.Role, "new accounts always start as customers")

	stored := repo.byEmail["new.user@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "correct horse battery", stored.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUsers()
	seedUser(t, repo, "taken@example.com", "password123")
	svc := newTestService(repo, newStubSessions())

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Password: "password123",
	})

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestLoginSuccess(t *testing.T) {
	repo := newStubUsers()
	user := seedUser(t, repo, "user@example.com", "password123")
	sessions := newStubSessions()
	svc := newTestService(repo, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleCustomer, claims.Role)
	assert.Contains(t, sessions.generated, claims.ID, "the jti must map to a stored refresh session")
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUsers()
	seedUser(t, repo, "user@example.com", "password123")
	svc := newTestService(repo, newStubSessions())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(newStubUsers(), newStubSessions())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "password123",
	})

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginDeactivatedAccount(t *testing.T) {
	repo := newStubUsers()
	user := seedUser(t, repo, "user@example.com", "password123")
	user.IsActive = false
	svc := newTestService(repo, newStubSessions())

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "password123",
	})

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubUsers()
	seedUser(t, repo, "user@example.com", "password123")
	sessions := newStubSessions()
	svc := newTestService(repo, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})

	require.NoError(t, err)
	assert.NotEqual(t, result.Tokens.RefreshToken, pair.RefreshToken)

	// The old pair is dead after rotation.
	_, err = svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestRefreshKeepsShoppingSession(t *testing.T) {
	repo := newStubUsers()
	seedUser(t, repo, "user@example.com", "password123")
	sessions := newStubSessions()
	svc := newTestService(repo, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	before, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Tokens.AccessToken)
	require.NoError(t, err)
	require.NotEmpty(t, before.SessionID)

	pair, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
	require.NoError(t, err)

	after, err := pkgauth.ParseAccessToken(testJWTConfig(), pair.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, before.ID, after.ID, "the jti must rotate with the refresh session")
	assert.Equal(t, before.SessionID, after.SessionID,
		"the shopping session must survive rotation or the cart keyed by it is lost")

	// A second rotation keeps the same shopping session too.
	pair2, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)
	final, err := pkgauth.ParseAccessToken(testJWTConfig(), pair2.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, before.SessionID, final.SessionID)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	svc := newTestService(newStubUsers(), newStubSessions())

	_, err := svc.Refresh(context.Background(), RefreshInput{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubUsers()
	seedUser(t, repo, "user@example.com", "password123")
	sessions := newStubSessions()
	svc := newTestService(repo, sessions)

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "user@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Tokens.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))
	assert.Contains(t, sessions.revoked, claims.ID)
}
