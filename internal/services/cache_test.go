package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/mealrec/pkg/models"
)

func TestRecommendationCache_Disabled(t *testing.T) {
	tests := []struct {
		name  string
		cache *RecommendationCache
	}{
		{name: "no client", cache: NewRecommendationCache(nil, time.Minute, testLogger())},
		{name: "zero ttl", cache: NewRecommendationCache(unreachableRedis(), 0, testLogger())},
		{name: "nil cache", cache: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.cache.Enabled())

			_, err := tt.cache.Get(context.Background(), "key")
			assert.ErrorIs(t, err, ErrCacheMiss)
			assert.NoError(t, tt.cache.Set(context.Background(), "key", &models.RecommendationResponse{}))
		})
	}
}

func TestRecommendationCache_Key(t *testing.T) {
	cache := NewRecommendationCache(nil, time.Minute, testLogger())

	perMeal := testRequest()
	perDay := testRequest()
	perDay.Budget = 45000
	perDay.BudgetPeriod = models.BudgetPerDay
	other := testRequest()
	other.Goal = models.GoalMuscleGain

	key := cache.Key(perMeal.Profile())
	assert.True(t, strings.HasPrefix(key, cacheKeyPrefix))
	assert.Equal(t, key, cache.Key(perMeal.Profile()))
	assert.Equal(t, key, cache.Key(perDay.Profile()))
	assert.NotEqual(t, key, cache.Key(other.Profile()))
}

func TestRecommendationCache_RedisUnavailable(t *testing.T) {
	cache := NewRecommendationCache(unreachableRedis(), time.Minute, testLogger())
	require.True(t, cache.Enabled())

	_, err := cache.Get(context.Background(), "key")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))

	err = cache.Set(context.Background(), "key", &models.RecommendationResponse{})
	assert.Error(t, err)
}
