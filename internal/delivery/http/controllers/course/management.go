package course

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/middleware"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type ManagementService interface {
	CreateCourse(ctx context.Context, ownerID, name, description string, cover io.Reader) (string, error)
	ReplaceCover(ctx context.Context, courseID, userID string, cover io.Reader) error
}

type ManagementHandler struct {
	log       logger.Log
	service   ManagementService
	maxUpload int64
}

func NewManagementHandler(l logger.Log, s ManagementService, maxUpload int64) *ManagementHandler {
	return &ManagementHandler{
		log:       l,
		service:   s,
		maxUpload: maxUpload,
	}
}

// CreateCourse reads the multipart fields name, description and the optional
// image file.
func (h *ManagementHandler) CreateCourse(c *gin.Context) {
	ownerID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course name is required"})
		return
	}

	var cover io.Reader
	file, err := openFormFile(c, "image")
	switch {
	case err == nil:
		defer file.Close()
		cover = file
	case !errors.Is(err, http.ErrMissingFile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image upload"})
		return
	}

	id, err := h.service.CreateCourse(c.Request.Context(), ownerID, name, c.PostForm("description"), cover)
	if err != nil {
		if errors.Is(err, app_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Course name is required"})
			return
		}
		h.log.ErrorErr("CreateCourse: failed to create course", err, "owner", ownerID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create course"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "courseId": id})
}

func (h *ManagementHandler) ReplaceCover(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	courseID := c.Param("courseId")
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	file, err := openFormFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	err = h.service.ReplaceCover(c.Request.Context(), courseID, userID, file)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		case errors.Is(err, app_errors.ErrNotCourseOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, app_errors.ErrNotImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.ErrorErr("ReplaceCover: upload failed", err, "course", courseID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func openFormFile(c *gin.Context, field string) (multipart.File, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return fileHeader.Open()
}
