package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

const usersPath = "users"

type UserRepo struct {
	store storage.Store
}

func NewUserRepo(store storage.Store) *UserRepo {
	return &UserRepo{store: store}
}

func (r *UserRepo) Profile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	if err := r.store.Get(ctx, storage.JoinPath(usersPath, userID), &p); err != nil {
		if errors.Is(err, app_errors.ErrNodeNotFound) {
			return models.Profile{}, app_errors.ErrUserNotFound
		}
		return models.Profile{}, fmt.Errorf("UserRepo.Profile: %w", err)
	}
	p.ID = userID
	return p, nil
}

// SaveProfile writes the profile fields without touching the user's
// enrollments or schedule, which live below the same node.
func (r *UserRepo) SaveProfile(ctx context.Context, userID string, p models.Profile) error {
	fields := map[string]interface{}{
		"fullName":       p.FullName,
		"profilePicture": p.ProfilePicture,
		"createdAt":      p.CreatedAt,
	}
	if err := r.store.Update(ctx, storage.JoinPath(usersPath, userID), fields); err != nil {
		return fmt.Errorf("UserRepo.SaveProfile: %w", err)
	}
	return nil
}
