package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/services"
)

const (
	clientIDKey   = "client_id"
	authMethodKey = "auth_method"

	APIKeyHeader = "X-API-Key"
)

// Auth accepts either a JWT issued by the token endpoint ("Bearer <jwt>")
// or a raw API key, sent as "Bearer <key>" or in the X-API-Key header.
func Auth(authService services.AuthServiceInterface, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential, ok := extractCredential(c)
		if !ok {
			abortUnauthorized(c, "MISSING_AUTHORIZATION", "Authorization header or X-API-Key is required")
			return
		}

		// API keys never contain dots, JWTs always do
		if !strings.Contains(credential, ".") {
			clientID, err := authService.ValidateAPIKey(credential)
			if err != nil {
				logger.WithError(err).WithField("client_ip", c.ClientIP()).Warn("Invalid API key")
				abortUnauthorized(c, "INVALID_API_KEY", "Invalid API key")
				return
			}

			c.Set(clientIDKey, clientID)
			c.Set(authMethodKey, "api_key")
			c.Next()
			return
		}

		claims, err := authService.ValidateToken(credential)
		if err != nil {
			logger.WithError(err).WithField("client_ip", c.ClientIP()).Warn("Invalid JWT token")
			abortUnauthorized(c, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(clientIDKey, claims.ClientID)
		c.Set(authMethodKey, "jwt")
		c.Next()
	}
}

func extractCredential(c *gin.Context) (string, bool) {
	if key := strings.TrimSpace(c.GetHeader(APIKeyHeader)); key != "" {
		return key, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
		return "", false
	}
	return tokenParts[1], true
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
	c.Abort()
}

// GetClientFromContext returns the client id set by Auth.
func GetClientFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(clientIDKey)
	if !exists {
		return uuid.Nil, false
	}
	clientID, ok := v.(uuid.UUID)
	return clientID, ok
}
