package lesson

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

type ScheduleService interface {
	Days(ctx context.Context, requesterID, userID string) ([]models.ProgrammedLesson, error)
	SetMarked(ctx context.Context, requesterID, userID, date string, marked bool) (string, error)
}

type ScheduleHandler struct {
	log     logger.Log
	service ScheduleService
}

func NewScheduleHandler(log logger.Log, service ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{log, service}
}

func (h *ScheduleHandler) Days(c *gin.Context) {
	requesterID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	userID := c.Param("userId")

	days, err := h.service.Days(c.Request.Context(), requesterID, userID)
	if err != nil {
		if errors.Is(err, app_errors.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Cannot access another user's data"})
			return
		}
		h.log.ErrorErr("Days: failed to read programmed lessons", err, "user", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if days == nil {
		days = []models.ProgrammedLesson{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "programmedLessons": days})
}

type setMarkedRequest struct {
	Date     string `json:"date" binding:"required"`
	IsMarked *bool  `json:"isMarked" binding:"required"`
}

func (h *ScheduleHandler) SetMarked(c *gin.Context) {
	requesterID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var req setMarkedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	userID := c.Param("userId")

	date, err := h.service.SetMarked(c.Request.Context(), requesterID, userID, req.Date, *req.IsMarked)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: Cannot modify another user's data"})
		case errors.Is(err, app_errors.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		default:
			h.log.ErrorErr("SetMarked: failed to update programmed lesson", err, "user", userID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "date": date, "isMarked": *req.IsMarked})
}
