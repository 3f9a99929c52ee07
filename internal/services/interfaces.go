package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/temcen/mealrec/internal/messaging"
	"github.com/temcen/mealrec/pkg/models"
)

// RecommendationServiceInterface defines the recommendation operations used by the HTTP handlers
type RecommendationServiceInterface interface {
	Recommend(ctx context.Context, req *models.RecommendationRequest) (*models.RecommendationResponse, error)
	Targets(req *models.TargetsRequest) *models.TargetsResponse
	Foods(offset, limit int) *models.FoodListResponse
}

// AuthServiceInterface defines token issuing and verification
type AuthServiceInterface interface {
	ValidateAPIKey(apiKey string) (uuid.UUID, error)
	IssueToken(apiKey string) (*models.AuthResponse, error)
	ValidateToken(tokenString string) (*models.JWTClaims, error)
}

// RateLimiterInterface defines per-client request limiting
type RateLimiterInterface interface {
	IsAllowed(ctx context.Context, clientID string) (bool, *models.RateLimitInfo, error)
}

// HealthCheckerInterface defines dependency health reporting
type HealthCheckerInterface interface {
	CheckHealth(ctx context.Context) *HealthStatus
}

// ResultCache stores recommendation responses by profile key
type ResultCache interface {
	Enabled() bool
	Key(profile *models.UserProfile) string
	Get(ctx context.Context, key string) (*models.RecommendationResponse, error)
	Set(ctx context.Context, key string, resp *models.RecommendationResponse) error
}

// EventPublisher receives an event for every generated recommendation
type EventPublisher interface {
	PublishRecommendation(ctx context.Context, event messaging.RecommendationEvent) error
}

var (
	_ RecommendationServiceInterface = (*RecommendationService)(nil)
	_ AuthServiceInterface           = (*AuthService)(nil)
	_ RateLimiterInterface           = (*RateLimitService)(nil)
	_ HealthCheckerInterface         = (*HealthService)(nil)
	_ ResultCache                    = (*RecommendationCache)(nil)
	_ EventPublisher                 = (*messaging.EventPublisher)(nil)
)
