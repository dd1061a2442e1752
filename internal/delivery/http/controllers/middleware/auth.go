package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
}

type AuthMiddlewareProvider struct {
	log      logger.Log
	verifier TokenVerifier
}

func NewAuthMiddlewareProvider(log logger.Log, v TokenVerifier) *AuthMiddlewareProvider {
	return &AuthMiddlewareProvider{
		log:      log,
		verifier: v,
	}
}

func (h *AuthMiddlewareProvider) AuthMiddleware(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	var token string
	if parts := strings.Split(authHeader, "Bearer "); len(parts) == 2 {
		token = strings.TrimSpace(parts[1])
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Missing or invalid token"})
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), token)
	if err != nil {
		h.log.Debug("AuthMiddleware: token rejected", logger.Err(err))
		if errors.Is(err, app_errors.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": app_errors.ErrTokenExpired.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Missing or invalid token"})
		return
	}

	c.Set(ClientIDCtx, identity.UID)
	c.Set(ClientEmailCtx, identity.Email)
	c.Next()
}
