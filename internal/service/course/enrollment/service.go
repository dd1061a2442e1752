package enrollment

import (
	"context"
	"strings"
	"time"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id string) (*models.Course, error)
}

type enrollmentRepo interface {
	Enroll(ctx context.Context, userID string, e models.Enrollment) error
	Unenroll(ctx context.Context, userID, courseID string) error
	Enrollments(ctx context.Context, userID string) ([]models.Enrollment, error)
}

type EnrollmentService struct {
	log        logger.Log
	courseRepo courseRepo
	repo       enrollmentRepo
}

func NewEnrollmentService(l logger.Log, c courseRepo, e enrollmentRepo) *EnrollmentService {
	return &EnrollmentService{
		log:        l,
		courseRepo: c,
		repo:       e,
	}
}

// Enroll records an active enrollment of userID in an existing course.
// Enrolling again refreshes the enrollment date.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, app_errors.ErrInvalidInput
	}
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	e := models.Enrollment{
		CourseID:   courseID,
		EnrolledAt: models.ISOTime(time.Now()),
		Status:     models.EnrollmentActive,
	}
	if err := s.repo.Enroll(ctx, userID, e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EnrollmentService) Unenroll(ctx context.Context, userID, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return app_errors.ErrInvalidInput
	}
	return s.repo.Unenroll(ctx, userID, courseID)
}

func (s *EnrollmentService) Enrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	return s.repo.Enrollments(ctx, userID)
}
