package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/mealrec/internal/catalog"
	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/messaging"
	"github.com/temcen/mealrec/internal/recommender"
	"github.com/temcen/mealrec/pkg/models"
)

type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockResultCache) Key(profile *models.UserProfile) string {
	return m.Called(profile).String(0)
}

func (m *MockResultCache) Get(ctx context.Context, key string) (*models.RecommendationResponse, error) {
	args := m.Called(ctx, key)
	resp, _ := args.Get(0).(*models.RecommendationResponse)
	return resp, args.Error(1)
}

func (m *MockResultCache) Set(ctx context.Context, key string, resp *models.RecommendationResponse) error {
	return m.Called(ctx, key, resp).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishRecommendation(ctx context.Context, event messaging.RecommendationEvent) error {
	return m.Called(ctx, event).Error(0)
}

func newTestService(cache ResultCache, publisher EventPublisher, metrics *MetricsCollector) *RecommendationService {
	engine := recommender.New(testLogger(), recommender.WithDeterministic())
	return NewRecommendationService(engine, testCatalog(40), cache, publisher, metrics, testLogger())
}

func TestRecommendationService_Recommend(t *testing.T) {
	metrics := NewMetricsCollector(prometheus.NewRegistry(), testLogger())
	s := newTestService(nil, nil, metrics)

	resp, err := s.Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.False(t, resp.CacheHit)
	assert.False(t, resp.GeneratedAt.IsZero())
	require.NotNil(t, resp.Recommendation)
	assert.Len(t, resp.Recommendation.Meals, 3)
	assert.NotEmpty(t, resp.Recommendation.Items())

	fallback := "false"
	if resp.Recommendation.Fallback {
		fallback = "true"
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.recommendations.WithLabelValues("weight-loss", fallback)))
	assert.Equal(t, 40.0, testutil.ToFloat64(metrics.catalogItems))
}

func TestRecommendationService_Recommend_CacheHit(t *testing.T) {
	cache := new(MockResultCache)
	publisher := new(MockEventPublisher)
	cached := &models.RecommendationResponse{ID: uuid.New(), Recommendation: &models.Recommendation{}}

	cache.On("Enabled").Return(true)
	cache.On("Key", mock.Anything).Return("key-1")
	cache.On("Get", mock.Anything, "key-1").Return(cached, nil)

	s := newTestService(cache, publisher, nil)
	resp, err := s.Recommend(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, cached.ID, resp.ID)
	assert.True(t, resp.CacheHit)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "PublishRecommendation", mock.Anything, mock.Anything)
}

func TestRecommendationService_Recommend_CacheMissStoresAndPublishes(t *testing.T) {
	cache := new(MockResultCache)
	publisher := new(MockEventPublisher)

	cache.On("Enabled").Return(true)
	cache.On("Key", mock.MatchedBy(func(p *models.UserProfile) bool {
		return p.BudgetPerMeal == 15000
	})).Return("key-1")
	cache.On("Get", mock.Anything, "key-1").Return(nil, ErrCacheMiss)
	cache.On("Set", mock.Anything, "key-1", mock.AnythingOfType("*models.RecommendationResponse")).Return(nil)
	publisher.On("PublishRecommendation", mock.Anything, mock.AnythingOfType("messaging.RecommendationEvent")).
		Return(errors.New("broker unavailable"))

	req := testRequest()
	req.Budget = 45000
	req.BudgetPeriod = models.BudgetPerDay

	s := newTestService(cache, publisher, nil)
	resp, err := s.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)

	cache.AssertExpectations(t)
	publisher.AssertExpectations(t)

	event := publisher.Calls[0].Arguments.Get(1).(messaging.RecommendationEvent)
	assert.Equal(t, resp.ID, event.ID)
	assert.Len(t, event.ItemIDs, resp.Recommendation.Summary.ItemCount)
}

func TestRecommendationService_Recommend_CacheErrorFallsThrough(t *testing.T) {
	cache := new(MockResultCache)
	cache.On("Enabled").Return(true)
	cache.On("Key", mock.Anything).Return("key-1")
	cache.On("Get", mock.Anything, "key-1").Return(nil, errors.New("connection refused"))
	cache.On("Set", mock.Anything, "key-1", mock.Anything).Return(errors.New("connection refused"))

	metrics := NewMetricsCollector(prometheus.NewRegistry(), testLogger())
	s := newTestService(cache, nil, metrics)

	resp, err := s.Recommend(context.Background(), testRequest())
	require.NoError(t, err)
	assert.NotNil(t, resp.Recommendation)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheRequests.WithLabelValues(CacheResultError)))
}

func TestRecommendationService_Recommend_Errors(t *testing.T) {
	s := newTestService(nil, nil, nil)

	_, err := s.Recommend(context.Background(), nil)
	assert.ErrorIs(t, err, recommender.ErrNilProfile)

	req := testRequest()
	req.Budget = 0
	_, err = s.Recommend(context.Background(), req)
	assert.ErrorIs(t, err, recommender.ErrInvalidBudget)
}

func TestRecommendationService_Targets(t *testing.T) {
	s := newTestService(nil, nil, nil)
	req := &models.TargetsRequest{
		Gender:        models.Male,
		Age:           30,
		HeightCM:      175,
		WeightKG:      75,
		ActivityLevel: models.ActivityMedium,
		Goal:          models.GoalWeightLoss,
		MealCount:     3,
	}

	resp := s.Targets(req)

	assert.Equal(t, 2238.1, resp.Daily.Calories)
	assert.Equal(t, recommender.RoundTargets(recommender.PerMealTargets(*req.Profile())), resp.PerMeal)
	assert.Len(t, resp.Slots, 3)
}

func TestRecommendationService_Foods(t *testing.T) {
	s := newTestService(nil, nil, nil)

	resp := s.Foods(35, 10)
	assert.Equal(t, 40, resp.Total)
	assert.Len(t, resp.Foods, 5)
	assert.Equal(t, 35, resp.Offset)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 40, s.CatalogSize())
}

func TestNewRecommendationService_NilCatalog(t *testing.T) {
	s := NewRecommendationService(recommender.New(testLogger()), (*catalog.Catalog)(nil), nil, nil, nil, testLogger())

	resp, err := s.Recommend(context.Background(), testRequest())
	require.NoError(t, err)
	assert.True(t, resp.Recommendation.Fallback)
	assert.Empty(t, resp.Recommendation.Items())
}

func TestNewRecommender(t *testing.T) {
	cfg := config.RecommendationConfig{Options: recommender.DefaultOptions(), Seed: 11}
	cfg.TargetPerSlot = 4
	cfg.Deterministic = true

	r := NewRecommender(cfg, testLogger())
	assert.Equal(t, 4, r.Options().TargetPerSlot)
	assert.True(t, r.Options().Deterministic)

	seeded := NewRecommender(config.RecommendationConfig{Seed: 11}, testLogger())
	cat := testCatalog(60)
	profile := testRequest().Profile()

	first, err := seeded.Recommend(profile, cat.Foods())
	require.NoError(t, err)
	second, err := seeded.Recommend(profile, cat.Foods())
	require.NoError(t, err)
	assert.Equal(t, first.Items(), second.Items())
}
