package management

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/listing"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/imaging"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type courseRepo interface {
	NewCourse(ctx context.Context, course *models.Course) (string, error)
	CourseByID(ctx context.Context, id string) (*models.Course, error)
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
}

type blobStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
}

type CourseManagementService struct {
	log        logger.Log
	courseRepo courseRepo
	searchRepo searchRepo
	blobs      blobStore
	coverPath  string
}

// NewCourseManagementService builds the write side of the course catalog.
// search may be nil when indexing is disabled.
func NewCourseManagementService(l logger.Log, c courseRepo, search searchRepo, blobs blobStore, coverPath string) *CourseManagementService {
	return &CourseManagementService{
		log:        l,
		courseRepo: c,
		searchRepo: search,
		blobs:      blobs,
		coverPath:  coverPath,
	}
}

// CreateCourse stores a new course owned by ownerID. A cover that cannot be
// processed is logged and skipped; the course is still created.
func (s *CourseManagementService) CreateCourse(ctx context.Context, ownerID, name, description string, cover io.Reader) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", app_errors.ErrInvalidInput
	}

	course := models.Course{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
		CreatedAt:   models.ISOTime(time.Now()),
	}

	if cover != nil {
		if err := s.storeCover(ctx, course.ID, cover); err != nil {
			s.log.ErrorErr("CreateCourse: cover processing failed", err, "course", course.ID)
		}
	}

	id, err := s.courseRepo.NewCourse(ctx, &course)
	if err != nil {
		return "", err
	}
	s.index(ctx, course)
	s.log.Info("CreateCourse: course created", "course", id, "owner", ownerID)
	return id, nil
}

// ReplaceCover overwrites the cover of a course owned by userID.
func (s *CourseManagementService) ReplaceCover(ctx context.Context, courseID, userID string, cover io.Reader) error {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	if course.OwnerID != userID {
		return app_errors.ErrNotCourseOwner
	}
	return s.storeCover(ctx, courseID, cover)
}

func (s *CourseManagementService) storeCover(ctx context.Context, courseID string, cover io.Reader) error {
	img, err := imaging.Cover(cover, imaging.CoverWidth, imaging.CoverHeight)
	if err != nil {
		return err
	}
	size := int64(img.Len())
	return s.blobs.Upload(ctx, listing.CoverPath(s.coverPath, courseID), img, size, imaging.ContentType)
}

func (s *CourseManagementService) index(ctx context.Context, course models.Course) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.Index(ctx, course); err != nil {
		s.log.ErrorErr("error indexing course", err, "course", course.ID)
	}
}
