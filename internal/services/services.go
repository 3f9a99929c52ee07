package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/catalog"
	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/database"
	"github.com/temcen/mealrec/internal/messaging"
	"github.com/temcen/mealrec/internal/recommender"
)

type Services struct {
	Recommendation *RecommendationService
	Cache          *RecommendationCache
	Auth           *AuthService
	Health         *HealthService
	RateLimit      *RateLimitService
	Metrics        *MetricsCollector
	Events         *messaging.EventPublisher
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, cat *catalog.Catalog, engine *recommender.Recommender, reg prometheus.Registerer) (*Services, error) {
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return nil, ErrNoJWTSecret
	}

	metrics := NewMetricsCollector(reg, logger)
	events := messaging.NewEventPublisher(cfg, logger)
	cache := NewRecommendationCache(db.Redis, cfg.Recommendation.CacheTTL, logger)

	if cfg.Recommendation.CacheTTL > 0 && db.Redis == nil {
		logger.Warn("Recommendation cache TTL set but Redis is not configured, caching disabled")
	}

	recommendationService := NewRecommendationService(engine, cat, cache, events, metrics, logger)

	return &Services{
		Recommendation: recommendationService,
		Cache:          cache,
		Auth:           NewAuthService(cfg, logger),
		Health:         NewHealthService(cfg, logger, db, cat, metrics),
		RateLimit:      NewRateLimitService(cfg, logger, db.Redis),
		Metrics:        metrics,
		Events:         events,
	}, nil
}

// Close releases the event publisher.
func (s *Services) Close() error {
	return s.Events.Close()
}
