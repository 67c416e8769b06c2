package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *tenant.Registry {
	registry := tenant.NewRegistry()
	registry.Register(&tenant.ForumConfig{ForumID: "golang", Name: "Go"})
	registry.Register(&tenant.ForumConfig{ForumID: "rust", Name: "Rust"})
	return registry
}

func status(t *testing.T, app *fiber.App, target string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

// withClaims simulates what jwtware leaves in locals for a valid token.
func withClaims(claims jwt.MapClaims) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims != nil {
			c.Locals("user", &jwt.Token{Claims: claims, Valid: true})
		}
		return c.Next()
	}
}

func TestForumMiddlewareSelection(t *testing.T) {
	var seen string
	newApp := func(claims jwt.MapClaims) *fiber.App {
		app := fiber.New()
		app.Use(withClaims(claims), ForumMiddleware(testRegistry()))
		app.Get("/api/*", func(c *fiber.Ctx) error {
			seen = tenant.GetForumID(c)
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}

	app := newApp(nil)
	assert.Equal(t, fiber.StatusOK, status(t, app, "/api/health", nil))
	assert.Equal(t, fiber.StatusBadRequest, status(t, app, "/api/topics", nil))
	assert.Equal(t, fiber.StatusBadRequest, status(t, app, "/api/topics", map[string]string{"X-Forum-ID": "python"}))

	assert.Equal(t, fiber.StatusOK, status(t, app, "/api/topics", map[string]string{"X-Forum-ID": "rust"}))
	assert.Equal(t, "rust", seen)

	assert.Equal(t, fiber.StatusOK, status(t, app, "/api/events?forum_id=golang", nil))
	assert.Equal(t, "golang", seen)

	tokenApp := newApp(jwt.MapClaims{"sub": uuid.NewString(), "forum_id": "golang"})
	assert.Equal(t, fiber.StatusOK, status(t, tokenApp, "/api/topics", nil))
	assert.Equal(t, "golang", seen)
	assert.Equal(t, fiber.StatusForbidden, status(t, tokenApp, "/api/topics", map[string]string{"X-Forum-ID": "rust"}))
}

type stubResolver struct {
	actor *services.Actor
	err   error
}

func (s stubResolver) Resolve(string, uuid.UUID) (*services.Actor, error) {
	return s.actor, s.err
}

func TestIdentifyAndAdminRequired(t *testing.T) {
	userID := uuid.New()
	newApp := func(claims jwt.MapClaims, resolver ActorResolver) *fiber.App {
		app := fiber.New()
		app.Use(withClaims(claims), ForumMiddleware(testRegistry()), Identify(resolver))
		app.Get("/api/whoami", func(c *fiber.Ctx) error {
			if GetActor(c) == nil {
				return c.SendString("anonymous")
			}
			return c.SendString(GetActor(c).Username)
		})
		app.Get("/api/admin", AdminRequired(), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})
		return app
	}
	forum := map[string]string{"X-Forum-ID": "golang"}
	claims := jwt.MapClaims{"sub": userID.String(), "forum_id": "golang"}

	anonymous := newApp(nil, stubResolver{})
	assert.Equal(t, fiber.StatusOK, status(t, anonymous, "/api/whoami", forum))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, anonymous, "/api/admin", forum))

	member := newApp(claims, stubResolver{actor: &services.Actor{ID: userID, Username: "alice", Role: models.RoleUser}})
	assert.Equal(t, fiber.StatusOK, status(t, member, "/api/whoami", forum))
	assert.Equal(t, fiber.StatusForbidden, status(t, member, "/api/admin", forum))

	admin := newApp(claims, stubResolver{actor: &services.Actor{ID: userID, Username: "root", Role: models.RoleAdmin}})
	assert.Equal(t, fiber.StatusOK, status(t, admin, "/api/admin", forum))

	gone := newApp(claims, stubResolver{err: services.ErrUnauthenticated})
	assert.Equal(t, fiber.StatusUnauthorized, status(t, gone, "/api/whoami", forum))

	broken := newApp(claims, stubResolver{err: errors.New("db down")})
	assert.Equal(t, fiber.StatusInternalServerError, status(t, broken, "/api/whoami", forum))

	badSubject := newApp(jwt.MapClaims{"sub": "nope", "forum_id": "golang"}, stubResolver{})
	assert.Equal(t, fiber.StatusUnauthorized, status(t, badSubject, "/api/whoami", forum))
}
