// Package app builds the component graph shared by the HTTP server, the Lambda handler and tests.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stockhive/internal/cache"
	"stockhive/internal/config"
	"stockhive/internal/database"
	"stockhive/internal/handlers"
	"stockhive/internal/middleware"
	"stockhive/internal/repositories"
	"stockhive/internal/services"
	"stockhive/pkg/rabbitmq"
)

// Dependencies are the long-lived resources the HTTP app is built from.
// Cache and Publisher are optional.
type Dependencies struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *gorm.DB
	Cache     services.CategoryCache
	Publisher services.EventPublisher
}

// Services groups the service layer so other entry points can reuse it.
type Services struct {
	Auth     *services.AuthService
	Products *services.ProductService
}

// NewServices wires repositories and services.
func NewServices(deps Dependencies) *Services {
	cfg := deps.Config
	userRepo := repositories.NewGORMUserRepository(deps.DB, cfg.StoreTimeout)
	productRepo := repositories.NewGORMProductRepository(deps.DB, cfg.StoreTimeout)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	return &Services{
		Auth:     services.NewAuthService(userRepo, tokens, cfg.BcryptCost, deps.Logger),
		Products: services.NewProductService(productRepo, deps.Cache, deps.Publisher, deps.Logger),
	}
}

// New returns the fiber app serving the whole HTTP surface.
func New(deps Dependencies) *fiber.App {
	svc := NewServices(deps)

	app := fiber.New(fiber.Config{
		AppName:               "stockhive",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
		ErrorHandler:          handlers.ErrorHandler(deps.Config.IsDevelopment()),
	})

	origins := deps.Config.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	// --- Middleware ---
	// recover sits inside the logger so a panic is logged as the 500 it becomes.
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(deps.Logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
	}))

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, deps.DB); err != nil {
			deps.Logger.Warn("health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	// --- API Routes ---
	requireAuth := middleware.AuthRequired(svc.Auth)
	handlers.NewAuthHandler(svc.Auth).RegisterRoutes(app, requireAuth)
	handlers.NewProductHandler(svc.Products).RegisterRoutes(app, requireAuth)

	return app
}

// Runtime owns every resource opened by Bootstrap.
type Runtime struct {
	App *fiber.App
	DB  *gorm.DB
	// MQ is nil when RABBITMQ_URL is unset or the broker was unreachable.
	MQ *rabbitmq.Client

	redis *redis.Client
}

// Bootstrap opens the store and the optional Redis and RabbitMQ connections and builds the app.
// The store is required; an unreachable cache or broker only disables that feature.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	gormLevel := gormlogger.Silent
	if cfg.LogLevel == "debug" {
		gormLevel = gormlogger.Info
	}

	db, err := database.Open(ctx, cfg.DatabaseURL, database.Options{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
		LogLevel:     gormLevel,
	})
	if err != nil {
		return nil, err
	}
	rt := &Runtime{DB: db}
	deps := Dependencies{Config: cfg, Logger: logger, DB: db}

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("category cache disabled", zap.Error(err))
		} else {
			rt.redis = client
			deps.Cache = cache.NewCategoryCache(client, cfg.CategoryCacheTTL)
			logger.Info("category cache enabled", zap.Duration("ttl", cfg.CategoryCacheTTL))
		}
	}

	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger)
		if err != nil {
			logger.Warn("inventory events disabled", zap.Error(err))
		} else {
			rt.MQ = mq
			deps.Publisher = mq
		}
	}

	rt.App = New(deps)
	return rt, nil
}

// Close releases the broker, cache and store connections.
func (r *Runtime) Close() error {
	var errs []error
	if r.MQ != nil {
		if err := r.MQ.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.redis != nil {
		if err := r.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}
	if err := database.Close(r.DB); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}
