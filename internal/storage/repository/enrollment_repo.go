package repository

import (
	"context"
	"fmt"

	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

type EnrollmentRepo struct {
	store storage.Store
}

func NewEnrollmentRepo(store storage.Store) *EnrollmentRepo {
	return &EnrollmentRepo{store: store}
}

func enrollmentsPath(userID string) string {
	return storage.JoinPath(usersPath, userID, "enrollments")
}

func (r *EnrollmentRepo) Enroll(ctx context.Context, userID string, e models.Enrollment) error {
	if err := r.store.Set(ctx, storage.JoinPath(enrollmentsPath(userID), e.CourseID), e); err != nil {
		return fmt.Errorf("EnrollmentRepo.Enroll: %w", err)
	}
	return nil
}

func (r *EnrollmentRepo) Unenroll(ctx context.Context, userID, courseID string) error {
	if err := r.store.Remove(ctx, storage.JoinPath(enrollmentsPath(userID), courseID)); err != nil {
		return fmt.Errorf("EnrollmentRepo.Unenroll: %w", err)
	}
	return nil
}

func (r *EnrollmentRepo) Enrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	nodes, err := r.store.Query(ctx, enrollmentsPath(userID), storage.Query{OrderBy: storage.OrderByKey})
	if err != nil {
		return nil, fmt.Errorf("EnrollmentRepo.Enrollments: %w", err)
	}
	out := make([]models.Enrollment, 0, len(nodes))
	for _, n := range nodes {
		var e models.Enrollment
		if err := n.Unmarshal(&e); err != nil {
			return nil, fmt.Errorf("decode enrollment %s: %w", n.Key, err)
		}
		if e.CourseID == "" {
			e.CourseID = n.Key
		}
		out = append(out, e)
	}
	return out, nil
}
