package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/services"
	"github.com/temcen/mealrec/pkg/models"
)

type AuthHandler struct {
	authService services.AuthServiceInterface
	validator   *validator.Validate
	logger      *logrus.Logger
}

func NewAuthHandler(authService services.AuthServiceInterface, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Token exchanges an API key for a signed access token.
func (h *AuthHandler) Token(c *gin.Context) {
	var request models.AuthRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		errorResponse(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format", err.Error())
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		errorResponse(c, http.StatusBadRequest, "VALIDATION_FAILED", "api_key is required", err.Error())
		return
	}

	resp, err := h.authService.IssueToken(request.APIKey)
	switch {
	case errors.Is(err, services.ErrInvalidAPIKey):
		errorResponse(c, http.StatusUnauthorized, "INVALID_API_KEY", "Invalid API key", nil)
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to issue token")
		errorResponse(c, http.StatusInternalServerError, "TOKEN_ISSUE_FAILED", "Failed to issue token", nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}
