package lesson

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage/blob"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const (
	mainFile     = "main.md"
	lessonPrefix = "courses/"
)

type courseRepo interface {
	CourseByID(ctx context.Context, id string) (*models.Course, error)
	SetLesson(ctx context.Context, courseID string, index int, name string) error
}

type searchRepo interface {
	Index(ctx context.Context, course models.Course) error
}

type queueRepo interface {
	Enqueue(ctx context.Context, path string) (string, error)
}

type LessonService struct {
	log        logger.Log
	courseRepo courseRepo
	searchRepo searchRepo
	blobs      blob.Store
	queue      queueRepo
}

func NewLessonService(l logger.Log, c courseRepo, search searchRepo, blobs blob.Store, q queueRepo) *LessonService {
	return &LessonService{
		log:        l,
		courseRepo: c,
		searchRepo: search,
		blobs:      blobs,
		queue:      q,
	}
}

// Dir is the blob folder holding the files of one lesson.
func Dir(courseID string, index int) string {
	return fmt.Sprintf("%s%s/%d", lessonPrefix, courseID, index)
}

func mainTemplate(courseID string, index int, name string) string {
	return fmt.Sprintf(`# %s

Welcome to lesson %d of course %s.

This lesson covers important topics including:
- Topic 1
- Topic 2
- Topic 3

Enjoy your learning experience!
`, name, index, courseID)
}

// AddLesson sets the title of lesson index and seeds its main.md. It returns
// the path of the seeded file.
func (s *LessonService) AddLesson(ctx context.Context, courseID, userID string, index int, name string) (string, error) {
	name = strings.TrimSpace(name)
	if index < 0 || name == "" {
		return "", app_errors.ErrInvalidInput
	}
	course, err := s.ownedCourse(ctx, courseID, userID)
	if err != nil {
		return "", err
	}

	if err := s.courseRepo.SetLesson(ctx, courseID, index, name); err != nil {
		return "", err
	}

	filePath := path.Join(Dir(courseID, index), mainFile)
	content := mainTemplate(courseID, index, name)
	if err := s.blobs.Upload(ctx, filePath, strings.NewReader(content), int64(len(content)), blob.ContentType(filePath, "")); err != nil {
		s.log.ErrorErr("AddLesson: failed to seed lesson file", err, "path", filePath)
		return "", err
	}

	if s.searchRepo != nil {
		for len(course.Lessons) <= index {
			course.Lessons = append(course.Lessons, "")
		}
		course.Lessons[index] = name
		if err := s.searchRepo.Index(ctx, *course); err != nil {
			s.log.ErrorErr("error indexing course", err, "course", courseID)
		}
	}
	return filePath, nil
}

// UploadFile stores a file under an existing lesson of a course owned by
// userID and returns its path.
func (s *LessonService) UploadFile(ctx context.Context, courseID, userID string, index int, filename string, r io.Reader, size int64, contentType string) (string, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", app_errors.ErrInvalidInput
	}
	course, err := s.ownedCourse(ctx, courseID, userID)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(course.Lessons) || course.Lessons[index] == "" {
		return "", app_errors.ErrLessonNotFound
	}

	filePath := path.Join(Dir(courseID, index), name)
	if err := s.blobs.Upload(ctx, filePath, r, size, blob.ContentType(filePath, contentType)); err != nil {
		s.log.ErrorErr("UploadFile: failed to upload to storage", err, "path", filePath)
		return "", err
	}
	return filePath, nil
}

// RequestSummary queues a lesson file for summarization. filePath may be the
// full blob path or a name relative to the lesson folder.
func (s *LessonService) RequestSummary(ctx context.Context, courseID string, index int, filePath string) (string, error) {
	if index < 0 || strings.TrimSpace(filePath) == "" {
		return "", app_errors.ErrInvalidInput
	}
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return "", err
	}

	dir := Dir(courseID, index) + "/"
	if !strings.HasPrefix(filePath, lessonPrefix) {
		filePath = dir + strings.TrimPrefix(filePath, "/")
	}
	filePath = path.Clean(filePath)
	if !strings.HasPrefix(filePath, dir) {
		return "", app_errors.ErrInvalidInput
	}

	id, err := s.queue.Enqueue(ctx, filePath)
	if err != nil {
		return "", err
	}
	s.log.Info("RequestSummary: task queued", "task", id, "path", filePath)
	return id, nil
}

func (s *LessonService) ownedCourse(ctx context.Context, courseID, userID string) (*models.Course, error) {
	course, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.OwnerID != userID {
		return nil, app_errors.ErrNotCourseOwner
	}
	return course, nil
}
