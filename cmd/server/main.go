package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/guard"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/notify"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/forum-backend/internal/tenant"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Forum registry, reloaded when the file changes
	registry, err := tenant.LoadFromFile(cfg.ForumsConfigPath)
	if err != nil {
		slog.Error("failed to load forum registry", "path", cfg.ForumsConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("forum registry loaded", "forums", len(registry.All()))

	watchDone := make(chan struct{})
	go func() {
		if err := tenant.Watch(cfg.ForumsConfigPath, registry, watchDone); err != nil {
			slog.Error("forum registry watch stopped", "error", err)
		}
	}()

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logging.WithDatabase(pgLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetentionDays, cleanupDone)

	// Services
	broker := notify.NewBroker(32)
	authService := services.NewAuthService(database.DB, cfg)
	identityService := services.NewIdentityService(database.DB, cfg)
	blockService := services.NewBlockService(database.DB, broker)
	moderationService := services.NewModerationService(database.DB, blockService, cfg.ReportCooldown, broker)
	voteService := services.NewVoteService(database.DB, broker)
	forumService := services.NewForumService(database.DB, registry, services.NewContentFilter(), broker)
	activityService := services.NewActivityService(database.DB)
	userService := services.NewUserService(database.DB)
	stateService := services.NewSessionStateService(database.DB)

	// Handlers
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, activityService),
		Health:     handlers.NewHealthHandler(database.DB, registry),
		Forum:      handlers.NewForumHandler(forumService, voteService),
		Votes:      handlers.NewVoteHandler(voteService, guard.NewVoteGuard(cfg.VoteDebounce)),
		Moderation: handlers.NewModerationHandler(moderationService, blockService),
		Activity:   handlers.NewActivityHandler(activityService),
		Admin:      handlers.NewAdminHandler(userService),
		Session:    handlers.NewSessionHandler(stateService),
		Events:     handlers.NewEventsHandler(broker, registry, cfg.EventKeepAlive),
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, registry, identityService, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	// End event streams first so Shutdown does not wait on them
	broker.Close()
	close(watchDone)
	close(cleanupDone)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
