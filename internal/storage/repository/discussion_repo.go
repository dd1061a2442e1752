package repository

import (
	"context"
	"fmt"

	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

const discussionsPath = "discussions"

type DiscussionRepo struct {
	store storage.Store
}

func NewDiscussionRepo(store storage.Store) *DiscussionRepo {
	return &DiscussionRepo{store: store}
}

func (r *DiscussionRepo) Post(ctx context.Context, courseID string, c models.Comment) (string, error) {
	id, err := r.store.Push(ctx, storage.JoinPath(discussionsPath, courseID), c)
	if err != nil {
		return "", fmt.Errorf("DiscussionRepo.Post: %w", err)
	}
	return id, nil
}

// Comments returns the thread of a course in posting order. Push keys sort
// chronologically.
func (r *DiscussionRepo) Comments(ctx context.Context, courseID string) ([]models.CommentView, error) {
	nodes, err := r.store.Query(ctx, storage.JoinPath(discussionsPath, courseID), storage.Query{OrderBy: storage.OrderByKey})
	if err != nil {
		return nil, fmt.Errorf("DiscussionRepo.Comments: %w", err)
	}
	out := make([]models.CommentView, 0, len(nodes))
	for _, n := range nodes {
		var c models.Comment
		if err := n.Unmarshal(&c); err != nil {
			return nil, fmt.Errorf("decode comment %s: %w", n.Key, err)
		}
		out = append(out, models.CommentView{
			ID:        n.Key,
			UserID:    c.UserID,
			Message:   c.Message,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}
