package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/catalog"
	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/messaging"
	"github.com/temcen/mealrec/internal/recommender"
	"github.com/temcen/mealrec/pkg/models"
)

// RecommendationService serves recommendations over the shared catalog. The
// cache and publisher are optional collaborators; their failures are logged
// and never fail a request.
type RecommendationService struct {
	engine    *recommender.Recommender
	catalog   *catalog.Catalog
	cache     ResultCache
	publisher EventPublisher
	metrics   *MetricsCollector
	logger    *logrus.Logger
	now       func() time.Time
}

func NewRecommendationService(
	engine *recommender.Recommender,
	cat *catalog.Catalog,
	cache ResultCache,
	publisher EventPublisher,
	metrics *MetricsCollector,
	logger *logrus.Logger,
) *RecommendationService {
	if cat == nil {
		cat = catalog.New(nil)
	}
	metrics.SetCatalogSize(cat.Len())

	return &RecommendationService{
		engine:    engine,
		catalog:   cat,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *RecommendationService) Recommend(ctx context.Context, req *models.RecommendationRequest) (*models.RecommendationResponse, error) {
	if req == nil {
		return nil, recommender.ErrNilProfile
	}
	profile := req.Profile()

	var cacheKey string
	if s.cache != nil && s.cache.Enabled() {
		cacheKey = s.cache.Key(profile)
		cached, err := s.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			s.metrics.RecordCacheResult(CacheResultHit)
			cached.CacheHit = true
			return cached, nil
		case errors.Is(err, ErrCacheMiss):
			s.metrics.RecordCacheResult(CacheResultMiss)
		default:
			s.metrics.RecordCacheResult(CacheResultError)
			s.logger.WithError(err).Warn("Recommendation cache lookup failed")
		}
	}

	start := s.now()
	rec, err := s.engine.Recommend(profile, s.catalog.Foods())
	if err != nil {
		return nil, fmt.Errorf("failed to generate recommendation: %w", err)
	}
	s.metrics.ObserveRecommendation(profile.Goal, rec, s.now().Sub(start))

	resp := &models.RecommendationResponse{
		ID:             uuid.New(),
		Recommendation: rec,
		GeneratedAt:    s.now().UTC(),
	}

	s.logger.WithFields(logrus.Fields{
		"recommendation_id": resp.ID,
		"goal":              profile.Goal,
		"meal_count":        profile.MealCount,
		"items":             rec.Summary.ItemCount,
		"fallback":          rec.Fallback,
	}).Info("Recommendation generated")

	if s.publisher != nil {
		event := messaging.NewRecommendationEvent(resp.ID, profile, rec, resp.GeneratedAt)
		if err := s.publisher.PublishRecommendation(ctx, event); err != nil {
			s.logger.WithError(err).WithField("recommendation_id", resp.ID).Warn("Failed to publish recommendation event")
		}
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, resp); err != nil {
			s.logger.WithError(err).Warn("Failed to cache recommendation")
		}
	}

	return resp, nil
}

// Targets returns the daily, per-meal and per-slot targets for a profile,
// after the same clamping the recommender applies.
func (s *RecommendationService) Targets(req *models.TargetsRequest) *models.TargetsResponse {
	return recommender.TargetsFor(*req.Profile())
}

func (s *RecommendationService) Foods(offset, limit int) *models.FoodListResponse {
	return &models.FoodListResponse{
		Foods:  s.catalog.Page(offset, limit),
		Total:  s.catalog.Len(),
		Offset: offset,
		Limit:  limit,
	}
}

func (s *RecommendationService) CatalogSize() int {
	return s.catalog.Len()
}

// NewRecommender builds the recommender from the configured tuning. A
// non-zero seed makes runs reproducible.
func NewRecommender(cfg config.RecommendationConfig, logger *logrus.Logger) *recommender.Recommender {
	opts := []recommender.Option{recommender.WithOptions(cfg.Options)}
	if cfg.Seed != 0 {
		opts = append(opts, recommender.WithSeed(cfg.Seed))
	}
	return recommender.New(logger, opts...)
}
