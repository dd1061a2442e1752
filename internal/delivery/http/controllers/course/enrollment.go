package course

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/middleware"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error)
	Unenroll(ctx context.Context, userID, courseID string) error
	Enrollments(ctx context.Context, userID string) ([]models.Enrollment, error)
}

type EnrollmentHandler struct {
	log     logger.Log
	service EnrollmentService
}

func NewEnrollmentHandler(log logger.Log, s EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:     log,
		service: s,
	}
}

type enrollmentRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var input enrollmentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID is required"})
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), userID, input.CourseID)
	if err != nil {
		if errors.Is(err, app_errors.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		h.log.ErrorErr("Enroll: failed to enroll", err, "user", userID, "course", input.CourseID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enroll in course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "enrollment": enrollment})
}

func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var input enrollmentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID is required"})
		return
	}

	if err := h.service.Unenroll(c.Request.Context(), userID, input.CourseID); err != nil {
		h.log.ErrorErr("Unenroll: failed to unenroll", err, "user", userID, "course", input.CourseID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unenroll from course"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EnrollmentHandler) Enrollments(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	enrollments, err := h.service.Enrollments(c.Request.Context(), userID)
	if err != nil {
		h.log.ErrorErr("Enrollments: failed to list enrollments", err, "user", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch enrollments"})
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "enrollments": enrollments})
}
