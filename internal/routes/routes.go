package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/paisepay/paisepay/internal/account"
	"github.com/paisepay/paisepay/internal/archive"
	"github.com/paisepay/paisepay/internal/auth"
	"github.com/paisepay/paisepay/internal/config"
	"github.com/paisepay/paisepay/internal/ledger"
	"github.com/paisepay/paisepay/internal/middleware"
	"github.com/paisepay/paisepay/internal/notification"
	"github.com/paisepay/paisepay/internal/reports"
	"github.com/paisepay/paisepay/internal/requests"
	"github.com/paisepay/paisepay/internal/seed"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
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
	app.Use(middleware.Audit(d.Logger))

	// Health and metrics
	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Services
	store := account.NewStore()
	if d.Cfg.SeedDemo {
		if err := seed.Demo(store); err != nil {
			return err
		}
	}
	gate := auth.NewGate(store, nil, d.Cfg.MaxPinAttempts, d.Cfg.LockoutDuration)
	notifier := notification.NewLoggerNotifier(d.Logger)

	var archiver archive.Archiver
	if d.DB != nil {
		archiver = archive.NewPostgres(d.DB)
	} else {
		archiver = archive.NewMemory()
	}

	engine := ledger.NewEngine(store, gate, ledger.Config{
		Notifier:           notifier,
		Archiver:           archiver,
		Logger:             d.Logger,
		HighValueThreshold: d.Cfg.HighValueThreshold,
	})
	broker := requests.NewBroker(store, engine, notifier, nil)
	reporter := reports.NewEngine(store)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAccountRoutes(api, store, gate, rateLimiter)

	// The idempotency guard is attached per route to the money-moving
	// endpoints only; a replayed Idempotency-Key returns the original
	// response instead of moving funds twice.
	idem := passThrough
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterLedgerRoutes(api, engine, idem)
	RegisterRequestRoutes(api, store, broker, idem)
	RegisterReportRoutes(api, reporter)

	return nil
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}
