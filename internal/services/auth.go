package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/pkg/models"
)

const tokenIssuer = "github.com/temcen/mealrec"

var (
	ErrInvalidAPIKey = errors.New("invalid API key")
	ErrNoJWTSecret   = errors.New("JWT secret is not configured")
)

// AuthService exchanges configured API keys for signed JWTs. Tokens are
// stateless; each API key maps to a stable client id.
type AuthService struct {
	config    *config.Config
	logger    *logrus.Logger
	jwtSecret []byte
	apiKeys   []string
}

func NewAuthService(cfg *config.Config, logger *logrus.Logger) *AuthService {
	return &AuthService{
		config:    cfg,
		logger:    logger,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		apiKeys:   cfg.Auth.APIKeys,
	}
}

// ClientIDForKey derives the client id of an API key.
func ClientIDForKey(apiKey string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(tokenIssuer+"/"+apiKey))
}

func (s *AuthService) ValidateAPIKey(apiKey string) (uuid.UUID, error) {
	if apiKey == "" {
		return uuid.Nil, ErrInvalidAPIKey
	}
	for _, k := range s.apiKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(apiKey)) == 1 {
			return ClientIDForKey(apiKey), nil
		}
	}
	return uuid.Nil, ErrInvalidAPIKey
}

func (s *AuthService) GenerateToken(clientID uuid.UUID) (string, time.Time, error) {
	if len(s.jwtSecret) == 0 {
		return "", time.Time{}, ErrNoJWTSecret
	}

	now := time.Now()
	expiresAt := now.Add(s.config.Auth.TokenTTL)
	claims := &models.JWTClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// IssueToken validates apiKey and returns a fresh token for its client.
func (s *AuthService) IssueToken(apiKey string) (*models.AuthResponse, error) {
	clientID, err := s.ValidateAPIKey(apiKey)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.GenerateToken(clientID)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("client_id", clientID).Info("Issued access token")
	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, ErrNoJWTSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
