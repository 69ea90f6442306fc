package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/voicebank/voicebank/internal/auth"
	"github.com/voicebank/voicebank/internal/config"
	"github.com/voicebank/voicebank/internal/identity"
	"github.com/voicebank/voicebank/internal/ledger"
	"github.com/voicebank/voicebank/internal/middleware"
	"github.com/voicebank/voicebank/internal/notification"
	"github.com/voicebank/voicebank/internal/onboarding"
	"github.com/voicebank/voicebank/internal/speech"
)

const snapshotTTL = time.Minute

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() && d.DB == nil {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Storage backends
	var identityRepo identity.Repository
	var store ledger.Store
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		store = ledger.NewPostgresStore(d.DB)
	} else {
		identityRepo = identity.NewMemoryRepository()
		store = ledger.NewMemoryStore()
	}

	var cache *ledger.SnapshotCache
	if d.Cache != nil {
		cache = ledger.NewSnapshotCache(d.Cache, snapshotTTL)
	}

	// Services
	identitySvc := identity.NewService(identityRepo)
	notifier := notification.NewLoggerNotifier(d.Logger)
	ledgerSvc := ledger.NewService(store, identityRepo, cache, notifier, d.Cfg.StartingBalance)
	signupSvc := onboarding.NewService(identitySvc, ledgerSvc)
	tokens := auth.NewTokens(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	speechClient := speech.NewClient(d.Cfg.SpeechAPIURL, d.Cfg.SpeechAPIKey, d.Cfg.SpeechTimeout)

	// API routes
	api := app.Group("/api")
	api.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Voice Banking API"})
	})

	tokenAuth := middleware.TokenAuth(tokens)

	RegisterAuthRoutes(api, identitySvc, signupSvc, tokens, tokenAuth, d.Logger)
	RegisterAccountRoutes(api, ledgerSvc, tokenAuth)
	RegisterVoiceRoutes(api, speechClient)
	RegisterIntentRoutes(api)

	return nil
}
