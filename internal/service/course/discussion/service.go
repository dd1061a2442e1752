package discussion

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const (
	maxMessageLen     = 4000
	lookupConcurrency = 8
)

type courseRepo interface {
	CourseByID(ctx context.Context, id string) (*models.Course, error)
}

type discussionRepo interface {
	Post(ctx context.Context, courseID string, c models.Comment) (string, error)
	Comments(ctx context.Context, courseID string) ([]models.CommentView, error)
}

type profiles interface {
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

type DiscussionService struct {
	log        logger.Log
	courseRepo courseRepo
	repo       discussionRepo
	profiles   profiles
}

func NewDiscussionService(l logger.Log, c courseRepo, d discussionRepo, p profiles) *DiscussionService {
	return &DiscussionService{
		log:        l,
		courseRepo: c,
		repo:       d,
		profiles:   p,
	}
}

func (s *DiscussionService) Post(ctx context.Context, userID, courseID, message string) (*models.CommentView, error) {
	message = strings.TrimSpace(message)
	if courseID == "" || message == "" || len(message) > maxMessageLen {
		return nil, app_errors.ErrInvalidInput
	}
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}

	c := models.Comment{
		UserID:    userID,
		Message:   message,
		CreatedAt: models.ISOTime(time.Now()),
	}
	id, err := s.repo.Post(ctx, courseID, c)
	if err != nil {
		return nil, err
	}

	view := &models.CommentView{
		ID:        id,
		UserID:    userID,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
	if p, err := s.profiles.Profile(ctx, userID); err == nil {
		view.UserName = p.FullName
		view.ProfilePicture = p.ProfilePicture
	}
	return view, nil
}

// Comments returns the thread of a course, oldest first, with author names
// and pictures filled in where the profile exists.
func (s *DiscussionService) Comments(ctx context.Context, courseID string) ([]models.CommentView, error) {
	comments, err := s.repo.Comments(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		authors = make(map[string]models.Profile)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	seen := make(map[string]bool)
	for _, c := range comments {
		if seen[c.UserID] {
			continue
		}
		seen[c.UserID] = true
		uid := c.UserID
		g.Go(func() error {
			p, err := s.profiles.Profile(gctx, uid)
			if err != nil {
				s.log.Debug("Comments: author lookup failed", "user", uid, logger.Err(err))
				return nil
			}
			mu.Lock()
			authors[uid] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for i := range comments {
		if p, ok := authors[comments[i].UserID]; ok {
			comments[i].UserName = p.FullName
			comments[i].ProfilePicture = p.ProfilePicture
		}
	}
	return comments, nil
}
