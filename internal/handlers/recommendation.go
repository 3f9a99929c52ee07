package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/mealrec/internal/recommender"
	"github.com/temcen/mealrec/internal/services"
	"github.com/temcen/mealrec/pkg/models"
)

const (
	defaultFoodsLimit = 50
	maxFoodsLimit     = 1000
)

type RecommendationHandler struct {
	service   services.RecommendationServiceInterface
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewRecommendationHandler(service services.RecommendationServiceInterface, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// Create runs the recommendation pipeline for the profile in the body.
func (h *RecommendationHandler) Create(c *gin.Context) {
	var request models.RecommendationRequest
	if !h.bind(c, &request) {
		return
	}

	resp, err := h.service.Recommend(c.Request.Context(), &request)
	if err != nil {
		if errors.Is(err, recommender.ErrInvalidBudget) || errors.Is(err, recommender.ErrNilProfile) {
			errorResponse(c, http.StatusBadRequest, "INVALID_PROFILE", err.Error(), nil)
			return
		}
		h.logger.WithError(err).WithField("goal", request.Goal).Error("Failed to generate recommendation")
		errorResponse(c, http.StatusInternalServerError, "RECOMMENDATION_GENERATION_FAILED", "Failed to generate recommendation", nil)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Targets returns the nutrition targets for a profile without selecting food.
func (h *RecommendationHandler) Targets(c *gin.Context) {
	var request models.TargetsRequest
	if !h.bind(c, &request) {
		return
	}

	c.JSON(http.StatusOK, h.service.Targets(&request))
}

// ListFoods pages through the loaded catalog.
func (h *RecommendationHandler) ListFoods(c *gin.Context) {
	limit := defaultFoodsLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= maxFoodsLimit {
			limit = parsed
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	c.JSON(http.StatusOK, h.service.Foods(offset, limit))
}

func (h *RecommendationHandler) bind(c *gin.Context, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		h.logger.WithError(err).Warn("Invalid JSON in request")
		errorResponse(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format", err.Error())
		return false
	}

	if err := h.validator.Struct(request); err != nil {
		h.logger.WithError(err).Warn("Request validation failed")
		errorResponse(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", validationDetails(err))
		return false
	}

	return true
}

func validationDetails(err error) interface{} {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return details
}
