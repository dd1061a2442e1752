package repository

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/internal/storage"
)

const refreshTokensPath = "auth/refreshTokens"

// TokensRepo stores hashes of issued refresh tokens per user.
type TokensRepo struct {
	store storage.Store
}

func NewTokensRepo(store storage.Store) *TokensRepo {
	return &TokensRepo{store: store}
}

// hashToken yields a digest usable as a path segment.
func (r *TokensRepo) hashToken(token *jwt.Token) string {
	h := sha256.Sum256([]byte(token.Raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

func tokenPath(userID, hashed string) string {
	return storage.JoinPath(refreshTokensPath, userID, hashed)
}

func (r *TokensRepo) Create(ctx context.Context, userID string, token *jwt.Token) (*models.RefreshToken, error) {
	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if expiresAt == nil {
		return nil, app_errors.ErrInvalidToken
	}
	refreshToken := &models.RefreshToken{
		UserID:      userID,
		HashedToken: r.hashToken(token),
		CreatedAt:   models.ISOTime(time.Now()),
		ExpiresAt:   models.ISOTime(expiresAt.Time),
	}
	if err := r.store.Set(ctx, tokenPath(userID, refreshToken.HashedToken), refreshToken); err != nil {
		return nil, fmt.Errorf("TokensRepo.Create: %w", err)
	}
	return refreshToken, nil
}

func (r *TokensRepo) ByPrimaryKey(ctx context.Context, userID string, token *jwt.Token) (*models.RefreshToken, error) {
	refreshToken := &models.RefreshToken{}
	if err := r.store.Get(ctx, tokenPath(userID, r.hashToken(token)), refreshToken); err != nil {
		if errors.Is(err, app_errors.ErrNodeNotFound) {
			return nil, app_errors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("TokensRepo.ByPrimaryKey: %w", err)
	}
	return refreshToken, nil
}

func (r *TokensRepo) DeleteUserTokens(ctx context.Context, userID string) error {
	if err := r.store.Remove(ctx, storage.JoinPath(refreshTokensPath, userID)); err != nil {
		return fmt.Errorf("TokensRepo.DeleteUserTokens: %w", err)
	}
	return nil
}
