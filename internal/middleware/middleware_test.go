package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/mealrec/internal/config"
	"github.com/temcen/mealrec/internal/validation"
	"github.com/temcen/mealrec/pkg/models"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) ValidateAPIKey(apiKey string) (uuid.UUID, error) {
	args := m.Called(apiKey)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockAuthService) IssueToken(apiKey string) (*models.AuthResponse, error) {
	args := m.Called(apiKey)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	args := m.Called(tokenString)
	claims, _ := args.Get(0).(*models.JWTClaims)
	return claims, args.Error(1)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) IsAllowed(ctx context.Context, clientID string) (bool, *models.RateLimitInfo, error) {
	args := m.Called(ctx, clientID)
	info, _ := args.Get(1).(*models.RateLimitInfo)
	return args.Bool(0), info, args.Error(2)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	clientID := uuid.New()
	authService := new(MockAuthService)
	authService.On("ValidateAPIKey", "good-key").Return(clientID, nil)
	authService.On("ValidateAPIKey", "bad-key").Return(uuid.Nil, errors.New("invalid API key"))
	authService.On("ValidateToken", "a.b.c").Return(&models.JWTClaims{ClientID: clientID}, nil)
	authService.On("ValidateToken", "x.y.z").Return(nil, errors.New("expired"))

	tests := []struct {
		name           string
		headers        map[string]string
		expectedStatus int
		expectedCode   string
	}{
		{name: "api key header", headers: map[string]string{APIKeyHeader: "good-key"}, expectedStatus: http.StatusOK},
		{name: "api key as bearer", headers: map[string]string{"Authorization": "Bearer good-key"}, expectedStatus: http.StatusOK},
		{name: "jwt", headers: map[string]string{"Authorization": "Bearer a.b.c"}, expectedStatus: http.StatusOK},
		{name: "missing", headers: nil, expectedStatus: http.StatusUnauthorized, expectedCode: "MISSING_AUTHORIZATION"},
		{name: "wrong scheme", headers: map[string]string{"Authorization": "Basic abc"}, expectedStatus: http.StatusUnauthorized, expectedCode: "MISSING_AUTHORIZATION"},
		{name: "bad api key", headers: map[string]string{APIKeyHeader: "bad-key"}, expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_API_KEY"},
		{name: "bad token", headers: map[string]string{"Authorization": "Bearer x.y.z"}, expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Auth(authService, testLogger()))
			router.GET("/protected", func(c *gin.Context) {
				id, ok := GetClientFromContext(c)
				assert.True(t, ok)
				c.String(http.StatusOK, id.String())
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			} else {
				assert.Equal(t, clientID.String(), w.Body.String())
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reset := time.Now().Add(time.Minute).Unix()
	limiter := new(MockRateLimiter)
	limiter.On("IsAllowed", mock.Anything, "ip:192.0.2.1").
		Return(true, &models.RateLimitInfo{Limit: 10, Remaining: 9, ResetTime: reset}, nil).Once()
	limiter.On("IsAllowed", mock.Anything, "ip:192.0.2.1").
		Return(false, &models.RateLimitInfo{Limit: 10, Remaining: 0, ResetTime: reset}, nil).Once()

	router := gin.New()
	router.Use(RateLimit(limiter, testLogger()))
	router.GET("/limited", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errorCode(t, w))

	limiter.AssertExpectations(t)
}

func TestRateLimit_ErrorLetsRequestThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := new(MockRateLimiter)
	limiter.On("IsAllowed", mock.Anything, mock.Anything).Return(false, nil, errors.New("redis down"))

	router := gin.New()
	router.Use(RateLimit(limiter, testLogger()))
	router.GET("/limited", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), Logger(testLogger()))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "caller-id", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Recovery(testLogger()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", errorCode(t, w))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Security.CORS.AllowedOrigins = []string{"https://app.example.com"}
	cfg.Security.CORS.AllowedMethods = []string{"GET", "POST"}
	cfg.Security.CORS.AllowedHeaders = []string{"Content-Type"}

	router := gin.New()
	router.Use(CORS(cfg))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestValidationMiddleware_RecommendationRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sv, err := validation.NewSchemaValidator()
	require.NoError(t, err)
	vm := NewValidationMiddleware(sv)

	valid := `{"gender":"male","age":30,"height_cm":175,"weight_kg":75,"activity_level":"medium",
		"goal":"weight-loss","meal_count":3,"budget":15000}`

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedCode   string
	}{
		{name: "valid", body: valid, expectedStatus: http.StatusOK},
		{name: "empty", body: "", expectedStatus: http.StatusBadRequest, expectedCode: "EMPTY_BODY"},
		{name: "not json", body: "{gender", expectedStatus: http.StatusBadRequest, expectedCode: "INVALID_JSON"},
		{name: "schema violation", body: `{"gender":"other"}`, expectedStatus: http.StatusBadRequest, expectedCode: "VALIDATION_ERROR"},
		{name: "too large", body: `{"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`, expectedStatus: http.StatusBadRequest, expectedCode: "BODY_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/recommendations", vm.ValidateRecommendationRequest(), func(c *gin.Context) {
				var doc map[string]interface{}
				require.NoError(t, c.ShouldBindJSON(&doc))
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/recommendations", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			}
		})
	}
}

func TestValidationMiddleware_QueryParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	vm := NewValidationMiddleware(nil)
	router := gin.New()
	router.GET("/foods", vm.ValidateQueryParams(), func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		query          string
		expectedStatus int
	}{
		{query: "", expectedStatus: http.StatusOK},
		{query: "?limit=50&offset=100", expectedStatus: http.StatusOK},
		{query: "?limit=0", expectedStatus: http.StatusBadRequest},
		{query: "?limit=1001", expectedStatus: http.StatusBadRequest},
		{query: "?limit=ten", expectedStatus: http.StatusBadRequest},
		{query: "?offset=-1", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/foods"+tt.query, nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
