package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, token string) (models.Identity, error) {
	switch token {
	case "good":
		return models.Identity{UID: "u1", Email: "u1@example.com"}, nil
	case "old":
		return models.Identity{}, app_errors.ErrTokenExpired
	}
	return models.Identity{}, app_errors.ErrInvalidToken
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := NewAuthMiddlewareProvider(logger.Discard(), fakeVerifier{})
	r.GET("/me", LoggingMiddleware(logger.Discard()), auth.AuthMiddleware, func(c *gin.Context) {
		id, _ := ClientID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "email": c.GetString(ClientEmailCtx)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine()

	tests := []struct {
		name   string
		header string
		status int
		errMsg string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, errMsg: "Unauthorized: Missing or invalid token"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, errMsg: "Unauthorized: Missing or invalid token"},
		{name: "invalid token", header: "Bearer nope", status: http.StatusUnauthorized, errMsg: "Unauthorized: Missing or invalid token"},
		{name: "expired token", header: "Bearer old", status: http.StatusUnauthorized, errMsg: app_errors.ErrTokenExpired.Error()},
		{name: "valid token", header: "Bearer good", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(requestIDHeader))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, body["error"])
				return
			}
			assert.Equal(t, "u1", body["id"])
			assert.Equal(t, "u1@example.com", body["email"])
		})
	}
}

func TestLoggingMiddlewareKeepsRequestID(t *testing.T) {
	r := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewRateLimiter(1, 2)
	r := gin.New()
	r.GET("/", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
