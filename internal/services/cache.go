package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/pkg/models"
)

const cacheKeyPrefix = "mealrec:recommendation:"

var ErrCacheMiss = errors.New("recommendation not cached")

// RecommendationCache stores recommendation responses in redis, keyed by a
// hash of the per-meal profile. It is disabled when there is no client or
// the TTL is zero.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRecommendationCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RecommendationCache {
	return &RecommendationCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RecommendationCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Key hashes the profile. Two requests that normalise to the same profile
// share a key regardless of the budget period they used.
func (c *RecommendationCache) Key(profile *models.UserProfile) string {
	// UserProfile holds only plain values, Marshal cannot fail
	data, _ := json.Marshal(profile)
	sum := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *RecommendationCache) Get(ctx context.Context, key string) (*models.RecommendationResponse, error) {
	if !c.Enabled() {
		return nil, ErrCacheMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached recommendation: %w", err)
	}

	var resp models.RecommendationResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode cached recommendation: %w", err)
	}
	return &resp, nil
}

func (c *RecommendationCache) Set(ctx context.Context, key string, resp *models.RecommendationResponse) error {
	if !c.Enabled() {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode recommendation: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache recommendation: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"key": key,
		"ttl": c.ttl,
	}).Debug("Recommendation cached")
	return nil
}
