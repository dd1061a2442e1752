package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

const summarizeQueuePath = "summarizeQueue"

type QueueRepo struct {
	store storage.Store
	now   func() time.Time
}

func NewQueueRepo(store storage.Store) *QueueRepo {
	return &QueueRepo{store: store, now: time.Now}
}

func taskPath(id string) string {
	return storage.JoinPath(summarizeQueuePath, id)
}

func (r *QueueRepo) Enqueue(ctx context.Context, path string) (string, error) {
	id := uuid.New().String()
	task := models.SummaryTask{Path: path, Status: models.TaskWaiting, LastUpdated: models.ISOTime(r.now())}
	if err := r.store.Set(ctx, taskPath(id), task); err != nil {
		return "", fmt.Errorf("QueueRepo.Enqueue: %w", err)
	}
	return id, nil
}

func (r *QueueRepo) Task(ctx context.Context, id string) (*models.SummaryTask, error) {
	task := &models.SummaryTask{}
	if err := r.store.Get(ctx, taskPath(id), task); err != nil {
		return nil, fmt.Errorf("QueueRepo.Task: %w", err)
	}
	task.ID = id
	return task, nil
}

// NextWaiting returns the first waiting task without claiming it.
func (r *QueueRepo) NextWaiting(ctx context.Context) (*models.SummaryTask, error) {
	nodes, err := r.store.Query(ctx, summarizeQueuePath, storage.Query{
		OrderBy:      "status",
		EqualTo:      models.TaskWaiting,
		LimitToFirst: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("QueueRepo.NextWaiting: %w", err)
	}
	if len(nodes) == 0 {
		return nil, app_errors.ErrQueueEmpty
	}
	task := &models.SummaryTask{}
	if err := nodes[0].Unmarshal(task); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", nodes[0].Key, err)
	}
	task.ID = nodes[0].Key
	return task, nil
}

// Claim moves a waiting task to in-progress atomically. It returns
// app_errors.ErrTaskClaimed when another worker got there first.
func (r *QueueRepo) Claim(ctx context.Context, id string) error {
	err := r.store.Transaction(ctx, taskPath(id), func(current json.RawMessage) (interface{}, error) {
		if current == nil {
			return nil, app_errors.ErrTaskClaimed
		}
		var task models.SummaryTask
		if err := json.Unmarshal(current, &task); err != nil {
			return nil, err
		}
		if task.Status != models.TaskWaiting {
			return nil, app_errors.ErrTaskClaimed
		}
		task.Status = models.TaskInProgress
		task.LastUpdated = models.ISOTime(r.now())
		return task, nil
	})
	if err != nil {
		if errors.Is(err, app_errors.ErrTaskClaimed) {
			return err
		}
		return fmt.Errorf("QueueRepo.Claim: %w", err)
	}
	return nil
}

func (r *QueueRepo) Complete(ctx context.Context, id string) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status":      models.TaskDone,
		"lastUpdated": models.ISOTime(r.now()),
	})
}

func (r *QueueRepo) Fail(ctx context.Context, id string, cause error) error {
	return r.finish(ctx, id, map[string]interface{}{
		"status":      models.TaskError,
		"lastUpdated": models.ISOTime(r.now()),
		"error":       cause.Error(),
	})
}

func (r *QueueRepo) finish(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := r.store.Update(ctx, taskPath(id), fields); err != nil {
		return fmt.Errorf("QueueRepo.finish: %w", err)
	}
	return nil
}
