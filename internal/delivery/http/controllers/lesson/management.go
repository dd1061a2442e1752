package lesson

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/delivery/http/controllers/middleware"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type ManagementService interface {
	AddLesson(ctx context.Context, courseID, userID string, index int, name string) (string, error)
	UploadFile(ctx context.Context, courseID, userID string, index int, filename string, r io.Reader, size int64, contentType string) (string, error)
	RequestSummary(ctx context.Context, courseID string, index int, filePath string) (string, error)
}

type ManagementHandler struct {
	log       logger.Log
	service   ManagementService
	maxUpload int64
}

func NewManagementHandler(log logger.Log, service ManagementService, maxUpload int64) *ManagementHandler {
	return &ManagementHandler{
		log:       log,
		service:   service,
		maxUpload: maxUpload,
	}
}

type addLessonRequest struct {
	LessonIndex *int   `json:"lessonIndex" binding:"required"`
	LessonName  string `json:"lessonName" binding:"required"`
}

func (h *ManagementHandler) AddLesson(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var req addLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	courseID := c.Param("courseId")

	filePath, err := h.service.AddLesson(c.Request.Context(), courseID, userID, *req.LessonIndex, req.LessonName)
	if err != nil {
		h.writeError(c, "AddLesson", err, courseID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "filePath": filePath})
}

func (h *ManagementHandler) UploadFile(c *gin.Context) {
	userID, ok := middleware.ClientID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	courseID := c.Param("courseId")
	index, err := strconv.Atoi(c.Param("lessonIndex"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lessonIndex"})
		return
	}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": app_errors.ErrFileSize.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer file.Close()

	filePath, err := h.service.UploadFile(
		c.Request.Context(),
		courseID,
		userID,
		index,
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		h.writeError(c, "UploadFile", err, courseID)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "filePath": filePath})
}

type summaryRequest struct {
	FilePath string `json:"filePath" binding:"required"`
}

func (h *ManagementHandler) RequestSummary(c *gin.Context) {
	courseID := c.Param("courseId")
	index, err := strconv.Atoi(c.Param("lessonIndex"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lessonIndex"})
		return
	}
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filePath is required"})
		return
	}

	taskID, err := h.service.RequestSummary(c.Request.Context(), courseID, index, req.FilePath)
	if err != nil {
		h.writeError(c, "RequestSummary", err, courseID)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "taskId": taskID})
}

func (h *ManagementHandler) writeError(c *gin.Context, op string, err error, courseID string) {
	switch {
	case errors.Is(err, app_errors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotCourseOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
	case errors.Is(err, app_errors.ErrLessonNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
	default:
		h.log.ErrorErr(op+": request failed", err, "course", courseID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
