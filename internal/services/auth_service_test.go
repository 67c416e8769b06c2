package services

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		AdminEmails:      "boss@example.com",
	}
}

func TestRegisterLoginRefresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testConfig()
	svc := NewAuthService(db, cfg)

	resp, err := svc.Register(testutil.ForumID, &dto.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, testutil.ForumID, claims["forum_id"])

	_, err = svc.Register(testutil.ForumID, &dto.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.Register(testutil.ForumID, &dto.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = svc.Register("rust", &dto.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password1"})
	assert.NoError(t, err, "usernames are unique per forum")

	login, err := svc.Login(testutil.ForumID, &dto.LoginRequest{Login: "alice", Password: "correct horse"})
	require.NoError(t, err)
	_, err = svc.Login(testutil.ForumID, &dto.LoginRequest{Login: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	refreshed, err := svc.Refresh(testutil.ForumID, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = svc.Refresh(testutil.ForumID, &dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh tokens are single use")

	require.NoError(t, svc.Logout(testutil.ForumID, &dto.LogoutRequest{RefreshToken: refreshed.RefreshToken}))
	_, err = svc.Refresh(testutil.ForumID, &dto.RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(testutil.SetupTestDB(t), testConfig())

	var verr *ValidationError
	_, err := svc.Register(testutil.ForumID, &dto.RegisterRequest{Username: "a b", Email: "x@example.com", Password: "password1"})
	assert.ErrorAs(t, err, &verr)
	_, err = svc.Register(testutil.ForumID, &dto.RegisterRequest{Username: "alice", Email: "nope", Password: "password1"})
	assert.ErrorAs(t, err, &verr)
	_, err = svc.Register(testutil.ForumID, &dto.RegisterRequest{Username: "alice", Email: "x@example.com", Password: "short"})
	assert.ErrorAs(t, err, &verr)
}

func TestDeleteAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuthService(db, testConfig())
	identity := NewIdentityService(db, testConfig())

	resp, err := svc.Register(testutil.ForumID, &dto.RegisterRequest{Username: "alice", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAccount(testutil.ForumID, resp.User.ID, "wrong-pass"), ErrInvalidCredentials)
	require.NoError(t, svc.DeleteAccount(testutil.ForumID, resp.User.ID, "password1"))

	_, err = identity.Resolve(testutil.ForumID, resp.User.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	var tokens int64
	db.Model(&models.RefreshToken{}).Where("user_id = ?", resp.User.ID).Count(&tokens)
	assert.Equal(t, int64(0), tokens)
}

func TestIdentityResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	identity := NewIdentityService(db, testConfig())
	blocks := NewBlockService(db, nil)

	alice := testutil.CreateUser(t, db, "alice", models.RoleUser)
	boss := testutil.CreateUser(t, db, "boss", models.RoleUser)

	actor, err := identity.Resolve(testutil.ForumID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", actor.Username)
	assert.False(t, actor.IsBlocked)
	assert.False(t, actor.IsAdmin())

	promoted, err := identity.Resolve(testutil.ForumID, boss.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin(), "ADMIN_EMAILS promotes to admin")

	_, err = blocks.Block(testutil.ForumID, "alice", "boss", "spam")
	require.NoError(t, err)
	actor, err = identity.Resolve(testutil.ForumID, alice.ID)
	require.NoError(t, err)
	assert.True(t, actor.IsBlocked)

	_, err = identity.Resolve(testutil.ForumID, uuid.New())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = identity.Resolve("rust", alice.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = identity.Resolve(testutil.ForumID, uuid.Nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
