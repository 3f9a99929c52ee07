package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/catalog"
	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/database"
	"github.com/temcen/mealrec/internal/handlers"
	"github.com/temcen/mealrec/internal/middleware"
	"github.com/temcen/mealrec/internal/services"
	"github.com/temcen/mealrec/internal/validation"
)

type App struct {
	config    *config.Config
	logger    *logrus.Logger
	db        *database.Database
	catalog   *catalog.Catalog
	services  *services.Services
	handlers  *handlers.Handlers
	validator *validation.SchemaValidator
	registry  *prometheus.Registry
	router    *gin.Engine
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := SetupLogger(cfg.Logging)
	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app, err := NewWithDatabase(ctx, cfg, logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

// NewWithDatabase wires the application around already opened stores.
func NewWithDatabase(ctx context.Context, cfg *config.Config, logger *logrus.Logger, db *database.Database) (*App, error) {
	app := &App{
		config: cfg,
		logger: logger,
		db:     db,
	}

	validator, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}
	app.validator = validator

	var pg catalog.Querier
	if db.PG != nil {
		pg = db.PG
	}
	cat, err := catalog.Load(ctx, cfg.Catalog, pg, validator, logger)
	if err != nil {
		// Serve the empty catalog; every request falls back until fixed
		logger.WithError(err).Error("Failed to load food catalog, serving empty catalog")
	}
	app.catalog = cat

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := services.NewRecommender(cfg.Recommendation, logger)
	svc, err := services.New(cfg, logger, db, cat, engine, app.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svc

	app.handlers = handlers.New(logger, svc)
	app.setupRouter()

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if err := a.services.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing event publisher")
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		return err
	}

	return nil
}

func SetupLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

func (a *App) setupRouter() {
	if a.config.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(a.logger))
	router.Use(middleware.Recovery(a.logger))
	router.Use(middleware.CORS(a.config))
	router.NoRoute(handlers.NotFound)

	// Health check endpoint (no auth required)
	router.GET("/health", a.handlers.Health.Check)

	if a.config.Monitoring.Enabled {
		metricsPath := a.config.Monitoring.MetricsPath
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		router.GET(metricsPath, gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	}

	validate := middleware.NewValidationMiddleware(a.validator)

	api := router.Group("/api/v1")
	{
		if a.config.Auth.Enabled {
			api.POST("/auth/token", a.handlers.Auth.Token)
		}

		protected := api.Group("")
		if a.config.Auth.Enabled {
			protected.Use(middleware.Auth(a.services.Auth, a.logger))
		}
		if a.config.Auth.RateLimit.Enabled {
			protected.Use(middleware.RateLimit(a.services.RateLimit, a.logger))
		}

		protected.POST("/recommendations", validate.ValidateRecommendationRequest(), a.handlers.Recommendation.Create)
		protected.POST("/targets", a.handlers.Recommendation.Targets)
		protected.GET("/foods", validate.ValidateQueryParams(), a.handlers.Recommendation.ListFoods)
	}

	a.router = router
}
