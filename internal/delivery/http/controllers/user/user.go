package user

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

type UserService interface {
	Profile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, userID, fullName string, picture io.Reader) error
}

type UserHandler struct {
	log       logger.Log
	service   UserService
	maxUpload int64
}

func NewUserHandler(l logger.Log, s UserService, maxUpload int64) *UserHandler {
	return &UserHandler{log: l, service: s, maxUpload: maxUpload}
}

type profileResponse struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	ProfilePicture string `json:"profilePicture"`
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.Param("userId")
	p, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.log.ErrorErr("Profile: failed to load profile", err, "user", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	}
	c.JSON(http.StatusOK, profileResponse{
		ID:             userID,
		FullName:       p.FullName,
		ProfilePicture: p.ProfilePicture,
	})
}

// SaveProfile creates or overwrites the caller's profile from the multipart
// fields full_name and image.
func (h *UserHandler) SaveProfile(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	fullName := c.PostForm("full_name")
	if fullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name is required"})
		return
	}

	var picture io.Reader
	fileHeader, err := c.FormFile("image")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
			return
		}
		defer file.Close()
		picture = file
	case !errors.Is(err, http.ErrMissingFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}

	if err := h.service.SaveProfile(c.Request.Context(), userID, fullName, picture); err != nil {
		if errors.Is(err, app_errors.ErrNotImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.ErrorErr("SaveProfile: failed to save profile", err, "user", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
