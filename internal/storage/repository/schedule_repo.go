package repository

import (
	"context"
	"fmt"

	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

type ScheduleRepo struct {
	store storage.Store
}

func NewScheduleRepo(store storage.Store) *ScheduleRepo {
	return &ScheduleRepo{store: store}
}

func schedulePath(userID string) string {
	return storage.JoinPath(usersPath, userID, "programmedLessons")
}

// Mark stores a day under its compact yyyymmdd key.
func (r *ScheduleRepo) Mark(ctx context.Context, userID, dayKey string, day models.ProgrammedLesson) error {
	if err := r.store.Set(ctx, storage.JoinPath(schedulePath(userID), dayKey), day); err != nil {
		return fmt.Errorf("ScheduleRepo.Mark: %w", err)
	}
	return nil
}

func (r *ScheduleRepo) Unmark(ctx context.Context, userID, dayKey string) error {
	if err := r.store.Remove(ctx, storage.JoinPath(schedulePath(userID), dayKey)); err != nil {
		return fmt.Errorf("ScheduleRepo.Unmark: %w", err)
	}
	return nil
}

func (r *ScheduleRepo) Days(ctx context.Context, userID string) ([]models.ProgrammedLesson, error) {
	nodes, err := r.store.Query(ctx, schedulePath(userID), storage.Query{OrderBy: storage.OrderByKey})
	if err != nil {
		return nil, fmt.Errorf("ScheduleRepo.Days: %w", err)
	}
	out := make([]models.ProgrammedLesson, 0, len(nodes))
	for _, n := range nodes {
		var d models.ProgrammedLesson
		if err := n.Unmarshal(&d); err != nil {
			return nil, fmt.Errorf("decode programmed lesson %s: %w", n.Key, err)
		}
		out = append(out, d)
	}
	return out, nil
}
