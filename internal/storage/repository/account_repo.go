package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

const accountsPath = "auth/accounts"

// AccountRepo keeps locally managed credentials keyed by normalized email.
type AccountRepo struct {
	store storage.Store
}

func NewAccountRepo(store storage.Store) *AccountRepo {
	return &AccountRepo{store: store}
}

func accountPath(email string) string {
	return storage.JoinPath(accountsPath, storage.EncodeKey(strings.ToLower(strings.TrimSpace(email))))
}

// Create stores account unless the email is already registered.
func (r *AccountRepo) Create(ctx context.Context, account models.Account) error {
	err := r.store.Transaction(ctx, accountPath(account.Email), func(current json.RawMessage) (interface{}, error) {
		if current != nil {
			return nil, app_errors.ErrUserExists
		}
		return account, nil
	})
	if err != nil {
		if errors.Is(err, app_errors.ErrUserExists) {
			return err
		}
		return fmt.Errorf("AccountRepo.Create: %w", err)
	}
	return nil
}

func (r *AccountRepo) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	if err := r.store.Get(ctx, accountPath(email), account); err != nil {
		if errors.Is(err, app_errors.ErrNodeNotFound) {
			return nil, app_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("AccountRepo.ByEmail: %w", err)
	}
	return account, nil
}
