package auth

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/middleware"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

type ProfileService interface {
	Me(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, userID, fullName string, picture io.Reader) error
}

type AuthHandler struct {
	log      logger.Log
	auth     AuthService
	profiles ProfileService
}

func NewAuthHandler(l logger.Log, auth AuthService, p ProfileService) *AuthHandler {
	return &AuthHandler{
		log:      l,
		auth:     auth,
		profiles: p,
	}
}

type meResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	profile, err := h.profiles.Me(c.Request.Context(), userID)
	if err != nil {
		h.log.ErrorErr("Me: error retrieving profile", err, "user", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user data"})
		return
	}

	c.JSON(http.StatusOK, meResponse{
		ID:             userID,
		Email:          c.GetString(middleware.ClientEmailCtx),
		FullName:       profile.FullName,
		ProfilePicture: profile.ProfilePicture,
	})
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input registerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, err := h.auth.Register(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrIncorrectPassword), errors.Is(err, app_errors.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("Register: error handling register user", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	// The account exists at this point; a missing profile is recreated on
	// the first POST /users.
	if err := h.profiles.SaveProfile(c.Request.Context(), uid, input.FullName, nil); err != nil {
		h.log.ErrorErr("Register: failed to create profile", err, "user", uid)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "id": uid})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrUserNotFound), errors.Is(err, app_errors.ErrIncorrectPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSupported):
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("Login: error handling login user", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	c.JSON(http.StatusOK, pair)
}

type tokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var input tokenRefreshRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), input.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrTokenNotFound),
			errors.Is(err, app_errors.ErrTokenExpired),
			errors.Is(err, app_errors.ErrInvalidToken),
			errors.Is(err, app_errors.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotSupported):
			c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("Refresh: error refreshing tokens", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		}
		return
	}
	c.JSON(http.StatusOK, pair)
}
