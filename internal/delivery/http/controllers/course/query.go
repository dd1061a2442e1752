package course

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/service/course/query"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type QueryService interface {
	Courses(ctx context.Context, after, term string) (*query.CoursePage, error)
	Recent(ctx context.Context, k int) ([]models.CoursePreview, error)
	CourseByID(ctx context.Context, id string) (*models.CourseDetail, error)
	CoverURL(ctx context.Context, id string) (string, error)
	Catalog(ctx context.Context, after string, limit int) ([]models.Course, error)
	CatalogRecent(ctx context.Context, k int) ([]models.Course, error)
	Search(ctx context.Context, q string, from, size int) (*query.SearchResult, error)
}

type QueryHandler struct {
	log         logger.Log
	service     QueryService
	recentCount int
}

func NewQueryHandler(log logger.Log, s QueryService, recentCount int) *QueryHandler {
	if recentCount <= 0 {
		recentCount = 4
	}
	return &QueryHandler{
		log:         log,
		service:     s,
		recentCount: recentCount,
	}
}

// ListCourses serves one page of the listing: the records after the cursor,
// narrowed to the q term.
func (h *QueryHandler) ListCourses(c *gin.Context) {
	page, err := h.service.Courses(c.Request.Context(), c.Query("after"), c.Query("q"))
	if err != nil {
		h.log.ErrorErr("ListCourses: failed to load courses", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courses. Please try again later."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"courses":    page.Courses,
		"hasMore":    page.HasMore,
		"cursor":     page.Cursor,
		"totalPages": page.TotalPages,
		"message":    page.Message,
	})
}

func (h *QueryHandler) RecentCourses(c *gin.Context) {
	k, ok := intQuery(c, "k", h.recentCount)
	if !ok || k <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
		return
	}
	previews, err := h.service.Recent(c.Request.Context(), k)
	if err != nil {
		h.log.ErrorErr("RecentCourses: failed to load recent courses", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recent courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "courses": previews})
}

func (h *QueryHandler) SearchCourses(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	from, ok := intQuery(c, "from", 0)
	if !ok || from < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from must be a non-negative integer"})
		return
	}
	size, ok := intQuery(c, "size", 0)
	if !ok || size < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a non-negative integer"})
		return
	}

	res, err := h.service.Search(c.Request.Context(), q, from, size)
	if err != nil {
		if errors.Is(err, app_errors.ErrNotSupported) {
			c.JSON(http.StatusNotImplemented, gin.H{"error": "search is not enabled"})
			return
		}
		h.log.ErrorErr("SearchCourses: search failed", err, "query", q)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not search courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "courses": res.Courses, "total": res.Total})
}

func (h *QueryHandler) CourseByID(c *gin.Context) {
	courseID := c.Param("courseId")
	detail, err := h.service.CourseByID(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, app_errors.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		h.log.ErrorErr("CourseByID: failed to load course", err, "course", courseID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "course": detail})
}

func (h *QueryHandler) Cover(c *gin.Context) {
	courseID := c.Param("courseId")
	url, err := h.service.CoverURL(c.Request.Context(), courseID)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		case errors.Is(err, app_errors.ErrObjectNotFound), errors.Is(err, app_errors.ErrImageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		default:
			h.log.ErrorErr("Cover: failed to resolve cover", err, "course", courseID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch image"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Catalog serves raw course records in key order for remote listing
// controllers.
func (h *QueryHandler) Catalog(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	courses, err := h.service.Catalog(c.Request.Context(), c.Query("after"), limit)
	if err != nil {
		h.log.ErrorErr("Catalog: failed to read courses", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": nonNil(courses)})
}

func (h *QueryHandler) CatalogRecent(c *gin.Context) {
	k, ok := intQuery(c, "k", h.recentCount)
	if !ok || k <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
		return
	}
	courses, err := h.service.CatalogRecent(c.Request.Context(), k)
	if err != nil {
		h.log.ErrorErr("CatalogRecent: failed to read courses", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch courses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": nonNil(courses)})
}

func intQuery(c *gin.Context, key string, def int) (int, bool) {
	s := c.Query(key)
	if s == "" {
		return def, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func nonNil(courses []models.Course) []models.Course {
	if courses == nil {
		return []models.Course{}
	}
	return courses
}
