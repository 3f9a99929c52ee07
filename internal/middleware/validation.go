package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/temcen/mealrec/internal/validation"
)

const (
	MaxPageLimit = 1000
	maxBodyBytes = 64 << 10
)

// ValidationMiddleware checks request bodies against the embedded JSON
// schemas before they reach the handlers.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validator,
	}
}

// ValidateRecommendationRequest validates the body of a recommendation request
func (vm *ValidationMiddleware) ValidateRecommendationRequest() gin.HandlerFunc {
	return vm.validateRequestBody(vm.validator.ValidateUserProfile)
}

func (vm *ValidationMiddleware) validateRequestBody(validate func(interface{}) *validation.ValidationResult) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
		if err != nil {
			vm.sendValidationError(c, "BODY_READ_ERROR", "Failed to read request body", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		if len(bodyBytes) > maxBodyBytes {
			vm.sendValidationError(c, "BODY_TOO_LARGE", "Request body is too large", map[string]interface{}{
				"max_bytes": maxBodyBytes,
			})
			return
		}

		// Restore request body for downstream handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bodyBytes) == 0 {
			vm.sendValidationError(c, "EMPTY_BODY", "Request body is required", nil)
			return
		}

		if !json.Valid(bodyBytes) {
			vm.sendValidationError(c, "INVALID_JSON", "Request body must be valid JSON", nil)
			return
		}

		result := validate(bodyBytes)
		if !result.Valid {
			apiError := result.ToAPIError()
			if errorObj, ok := apiError["error"].(map[string]interface{}); ok {
				errorObj["timestamp"] = time.Now().UTC().Format(time.RFC3339)
				errorObj["request_id"] = c.GetString(requestIDKey)
				errorObj["path"] = c.Request.URL.Path
			}

			c.JSON(http.StatusBadRequest, apiError)
			c.Abort()
			return
		}

		c.Next()
	}
}

// ValidateQueryParams checks the paging parameters of list endpoints
func (vm *ValidationMiddleware) ValidateQueryParams() gin.HandlerFunc {
	return func(c *gin.Context) {
		errors := make([]validation.ValidationError, 0)

		if limit := c.Query("limit"); limit != "" {
			if n, err := strconv.Atoi(limit); err != nil || n < 1 || n > MaxPageLimit {
				errors = append(errors, validation.ValidationError{
					Field:   "limit",
					Message: "Limit must be an integer between 1 and 1000",
					Code:    "INVALID_QUERY_PARAM",
					Value:   limit,
				})
			}
		}

		if offset := c.Query("offset"); offset != "" {
			if n, err := strconv.Atoi(offset); err != nil || n < 0 {
				errors = append(errors, validation.ValidationError{
					Field:   "offset",
					Message: "Offset must be a non-negative integer",
					Code:    "INVALID_QUERY_PARAM",
					Value:   offset,
				})
			}
		}

		if len(errors) > 0 {
			vm.sendValidationErrors(c, errors)
			return
		}

		c.Next()
	}
}

func (vm *ValidationMiddleware) sendValidationError(c *gin.Context, code, message string, details map[string]interface{}) {
	errorResponse := map[string]interface{}{
		"error": map[string]interface{}{
			"code":       code,
			"message":    message,
			"details":    details,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"request_id": c.GetString(requestIDKey),
			"path":       c.Request.URL.Path,
		},
	}

	c.JSON(http.StatusBadRequest, errorResponse)
	c.Abort()
}

func (vm *ValidationMiddleware) sendValidationErrors(c *gin.Context, errors []validation.ValidationError) {
	fieldErrors := make(map[string][]string)
	for _, err := range errors {
		if err.Field != "" {
			fieldErrors[err.Field] = append(fieldErrors[err.Field], err.Message)
		}
	}

	vm.sendValidationError(c, "VALIDATION_ERROR", "Request validation failed", map[string]interface{}{
		"validationErrors": errors,
		"fieldErrors":      fieldErrors,
	})
}
