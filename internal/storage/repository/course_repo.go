package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

const coursesPath = "courses"

type CourseRepo struct {
	store storage.Store
}

func NewCourseRepo(store storage.Store) *CourseRepo {
	return &CourseRepo{store: store}
}

func coursePath(id string) string {
	return storage.JoinPath(coursesPath, id)
}

// NewCourse stores course under a fresh id and returns it.
func (r *CourseRepo) NewCourse(ctx context.Context, course *models.Course) (string, error) {
	if course.ID == "" {
		course.ID = uuid.New().String()
	}
	record := *course
	record.ID = ""
	if err := r.store.Set(ctx, coursePath(course.ID), record); err != nil {
		return "", fmt.Errorf("CourseRepo.NewCourse: %w", err)
	}
	return course.ID, nil
}

func (r *CourseRepo) CourseByID(ctx context.Context, id string) (*models.Course, error) {
	course := &models.Course{}
	if err := r.store.Get(ctx, coursePath(id), course); err != nil {
		if errors.Is(err, app_errors.ErrNodeNotFound) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("CourseRepo.CourseByID: %w", err)
	}
	course.ID = id
	return course, nil
}

// Courses returns up to limit courses after the given key, in key order.
func (r *CourseRepo) Courses(ctx context.Context, after string, limit int) ([]models.Course, error) {
	nodes, err := r.store.Query(ctx, coursesPath, storage.Query{
		OrderBy:      storage.OrderByKey,
		StartAfter:   after,
		LimitToFirst: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("CourseRepo.Courses: %w", err)
	}
	return decodeCourses(nodes)
}

// Recent returns the k most recently created courses, oldest first.
func (r *CourseRepo) Recent(ctx context.Context, k int) ([]models.Course, error) {
	nodes, err := r.store.Query(ctx, coursesPath, storage.Query{
		OrderBy:     "createdAt",
		LimitToLast: k,
	})
	if err != nil {
		return nil, fmt.Errorf("CourseRepo.Recent: %w", err)
	}
	return decodeCourses(nodes)
}

func (r *CourseRepo) SetLesson(ctx context.Context, courseID string, index int, name string) error {
	path := storage.JoinPath(coursePath(courseID), "lessons", strconv.Itoa(index))
	if err := r.store.Set(ctx, path, name); err != nil {
		return fmt.Errorf("CourseRepo.SetLesson: %w", err)
	}
	return nil
}

func decodeCourses(nodes []storage.Node) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(nodes))
	for _, n := range nodes {
		var c models.Course
		if err := n.Unmarshal(&c); err != nil {
			return nil, fmt.Errorf("decode course %s: %w", n.Key, err)
		}
		c.ID = n.Key
		courses = append(courses, c)
	}
	return courses, nil
}
