package schedule

import (
	"context"
	"strings"
	"time"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const dayKeyLayout = "20060102"

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.000Z", time.DateOnly}

type scheduleRepo interface {
	Mark(ctx context.Context, userID, dayKey string, day models.ProgrammedLesson) error
	Unmark(ctx context.Context, userID, dayKey string) error
	Days(ctx context.Context, userID string) ([]models.ProgrammedLesson, error)
}

// ScheduleService keeps the learning days a user marked on the calendar.
// Users may only read and change their own days.
type ScheduleService struct {
	log  logger.Log
	repo scheduleRepo
}

func NewScheduleService(l logger.Log, r scheduleRepo) *ScheduleService {
	return &ScheduleService{log: l, repo: r}
}

func (s *ScheduleService) Days(ctx context.Context, requesterID, userID string) ([]models.ProgrammedLesson, error) {
	if requesterID != userID {
		return nil, app_errors.ErrForbidden
	}
	return s.repo.Days(ctx, userID)
}

// SetMarked marks or unmarks the day of date and returns the normalized
// timestamp of that date.
func (s *ScheduleService) SetMarked(ctx context.Context, requesterID, userID, date string, marked bool) (string, error) {
	if requesterID != userID {
		return "", app_errors.ErrForbidden
	}
	day, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	iso := models.ISOTime(day)
	key := day.UTC().Format(dayKeyLayout)

	if !marked {
		return iso, s.repo.Unmark(ctx, userID, key)
	}
	err = s.repo.Mark(ctx, userID, key, models.ProgrammedLesson{
		Date:      iso,
		CreatedAt: models.ISOTime(time.Now()),
	})
	return iso, err
}

// ParseDate accepts an ISO-8601 timestamp or a plain yyyy-mm-dd date.
func ParseDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, app_errors.ErrInvalidInput
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, app_errors.ErrInvalidInput
}
