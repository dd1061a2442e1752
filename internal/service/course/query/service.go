package query

import (
	"context"
	"fmt"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const maxCatalogLimit = 100

type courseRepo interface {
	CourseByID(ctx context.Context, id string) (*models.Course, error)
	Courses(ctx context.Context, after string, limit int) ([]models.Course, error)
	Recent(ctx context.Context, k int) ([]models.Course, error)
}

type searchRepo interface {
	Search(ctx context.Context, query string, from, size int) ([]string, error)
	Count(ctx context.Context, query string) (int, error)
}

// CoursePage is one listing response.
type CoursePage struct {
	Courses    []models.CoursePreview `json:"courses"`
	HasMore    bool                   `json:"hasMore"`
	Cursor     string                 `json:"cursor"`
	TotalPages int                    `json:"totalPages"`
	Message    string                 `json:"message,omitempty"`
}

type SearchResult struct {
	Courses []models.CoursePreview `json:"courses"`
	Total   int                    `json:"total"`
}

type CourseQueryService struct {
	log        logger.Log
	courseRepo courseRepo
	searchRepo searchRepo
	profiles   listing.Profiles
	covers     listing.Covers
	opts       listing.Options
}

// NewCourseQueryService builds the read side of the course catalog. s may be
// nil when full-text search is disabled.
func NewCourseQueryService(l logger.Log, c courseRepo, p listing.Profiles, cv listing.Covers, s searchRepo, opts listing.Options) *CourseQueryService {
	return &CourseQueryService{
		log:        l,
		courseRepo: c,
		searchRepo: s,
		profiles:   p,
		covers:     cv,
		opts:       opts,
	}
}

func (s *CourseQueryService) controller() *listing.Controller {
	return listing.NewController(s.log, s.courseRepo, s.profiles, s.covers, s.opts)
}

// Courses loads the page after the cursor and narrows it to term.
func (s *CourseQueryService) Courses(ctx context.Context, after, term string) (*CoursePage, error) {
	ctrl := s.controller()
	defer ctrl.Close()

	page, err := ctrl.LoadPage(ctx, after)
	if err != nil {
		return nil, err
	}
	ctrl.ApplyFilter(term)
	view := ctrl.View()

	return &CoursePage{
		Courses:    view.Items,
		HasMore:    page.HasMore,
		Cursor:     page.Cursor,
		TotalPages: view.TotalPages,
		Message:    view.EmptyMessage,
	}, nil
}

func (s *CourseQueryService) Recent(ctx context.Context, k int) ([]models.CoursePreview, error) {
	if k > maxCatalogLimit {
		k = maxCatalogLimit
	}
	ctrl := s.controller()
	defer ctrl.Close()
	return ctrl.Recent(ctx, k)
}

func (s *CourseQueryService) CourseByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	course, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ctrl := s.controller()
	defer ctrl.Close()
	previews := ctrl.Enrich(ctx, []models.Course{*course})

	lessons := []string(course.Lessons)
	if lessons == nil {
		lessons = []string{}
	}
	return &models.CourseDetail{CoursePreview: previews[0], Lessons: lessons}, nil
}

func (s *CourseQueryService) CoverURL(ctx context.Context, id string) (string, error) {
	if _, err := s.courseRepo.CourseByID(ctx, id); err != nil {
		return "", err
	}
	url, err := s.covers.CoverURL(ctx, id)
	if err != nil {
		return "", err
	}
	return url, nil
}

// Catalog returns raw course records in key order.
func (s *CourseQueryService) Catalog(ctx context.Context, after string, limit int) ([]models.Course, error) {
	if limit <= 0 || limit > maxCatalogLimit {
		limit = maxCatalogLimit
	}
	return s.courseRepo.Courses(ctx, after, limit)
}

// CatalogRecent returns the last k raw records by createdAt, oldest first.
func (s *CourseQueryService) CatalogRecent(ctx context.Context, k int) ([]models.Course, error) {
	if k <= 0 || k > maxCatalogLimit {
		k = maxCatalogLimit
	}
	return s.courseRepo.Recent(ctx, k)
}

func (s *CourseQueryService) Search(ctx context.Context, query string, from, size int) (*SearchResult, error) {
	if s.searchRepo == nil {
		return nil, app_errors.ErrNotSupported
	}
	if size <= 0 || size > maxCatalogLimit {
		size = s.opts.PageSize
		if size <= 0 {
			size = listing.DefaultPageSize
		}
	}
	if from < 0 {
		from = 0
	}

	ids, err := s.searchRepo.Search(ctx, query, from, size)
	if err != nil {
		return nil, fmt.Errorf("search: elastic search failed: %w", err)
	}
	if len(ids) == 0 {
		return &SearchResult{Courses: []models.CoursePreview{}}, nil
	}

	total, err := s.searchRepo.Count(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search count failed: %w", err)
	}

	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		course, err := s.courseRepo.CourseByID(ctx, id)
		if err != nil {
			s.log.ErrorErr("Search: failed to load course by id", err, "course", id)
			continue
		}
		courses = append(courses, *course)
	}

	ctrl := s.controller()
	defer ctrl.Close()
	return &SearchResult{Courses: ctrl.Enrich(ctx, courses), Total: total}, nil
}
