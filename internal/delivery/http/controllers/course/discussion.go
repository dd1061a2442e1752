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

type DiscussionService interface {
	Post(ctx context.Context, userID, courseID, message string) (*models.CommentView, error)
	Comments(ctx context.Context, courseID string) ([]models.CommentView, error)
}

type DiscussionHandler struct {
	log     logger.Log
	service DiscussionService
}

func NewDiscussionHandler(log logger.Log, s DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{log: log, service: s}
}

type postCommentRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

func (h *DiscussionHandler) Post(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var input postCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	comment, err := h.service.Post(c.Request.Context(), userID, input.CourseID, input.Message)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		case errors.Is(err, app_errors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		default:
			h.log.ErrorErr("Post: failed to add comment", err, "course", input.CourseID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post comment"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "comment": comment})
}

func (h *DiscussionHandler) Comments(c *gin.Context) {
	courseID := c.Param("courseId")
	comments, err := h.service.Comments(c.Request.Context(), courseID)
	if err != nil {
		h.log.ErrorErr("Comments: failed to load discussion", err, "course", courseID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	if comments == nil {
		comments = []models.CommentView{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "comments": comments})
}
