package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups every HTTP handler the API exposes.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Forum      *handlers.ForumHandler
	Votes      *handlers.VoteHandler
	Moderation *handlers.ModerationHandler
	Activity   *handlers.ActivityHandler
	Admin      *handlers.AdminHandler
	Session    *handlers.SessionHandler
	Events     *handlers.EventsHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	registry *tenant.Registry,
	resolver middleware.ActorResolver,
	h Handlers,
) {
	api := app.Group("/api")

	// Health (no forum required)
	api.Get("/health", h.Health.Check)

	// Token, then forum, then actor: the forum comes from the token claim
	// when there is one, and the actor is resolved inside that forum.
	api.Use(middleware.JWTOptional(cfg))
	api.Use(middleware.ForumMiddleware(registry))
	api.Use(middleware.Identify(resolver))

	// Live events are long-lived, keep them out of the rate limiter
	api.Get("/events", h.Events.Stream)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Auth: stricter limit, 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(), h.Auth.Logout)
	auth.Delete("/account", middleware.JWTProtected(), h.Auth.DeleteAccount)

	// Public reads; blocked authors are filtered per viewer
	api.Get("/topics", h.Forum.ListTopics)
	api.Get("/topics/:id", h.Forum.GetTopic)
	api.Get("/topics/:id/posts", h.Forum.ListPosts)
	api.Get("/users/:username/activity", h.Activity.Activity)
	api.Get("/users/:username/stats", h.Activity.Stats)

	// Authenticated: middleware is attached per route so public routes
	// above stay reachable without a token
	authed := middleware.JWTProtected()
	api.Get("/me", authed, h.Auth.Me)
	api.Get("/me/state", authed, h.Session.Get)
	api.Put("/me/state", authed, h.Session.Put)
	api.Delete("/me/state/thread", authed, h.Session.ClearThread)

	api.Post("/topics", authed, h.Forum.CreateTopic)
	api.Delete("/topics/:id", authed, h.Forum.DeleteTopic)
	api.Post("/topics/:id/vote", authed, h.Votes.VoteTopic)
	api.Post("/topics/:id/posts", authed, h.Forum.CreatePost)
	api.Delete("/posts/:id", authed, h.Forum.DeletePost)
	api.Post("/posts/:id/vote", authed, h.Votes.VotePost)

	api.Post("/reports", authed, h.Moderation.CreateReport)
	api.Get("/reports/cooldown/:username", authed, h.Moderation.Cooldown)

	// Admin panel
	admin := api.Group("/admin", authed, middleware.AdminRequired())
	admin.Get("/dashboard", h.Admin.Dashboard)
	admin.Get("/users", h.Admin.ListUsers)
	admin.Put("/users/:username", h.Admin.UpdateUser)
	admin.Get("/users/:username/reports", h.Moderation.UserReports)

	admin.Get("/moderation/reports", h.Moderation.ListReports)
	admin.Get("/moderation/summary", h.Moderation.ReportSummary)
	admin.Put("/moderation/reports/:id", h.Moderation.ActionReport)

	admin.Get("/blocks", h.Moderation.ListBlocks)
	admin.Post("/blocks", h.Moderation.BlockUser)
	admin.Delete("/blocks/:username", h.Moderation.UnblockUser)
}
