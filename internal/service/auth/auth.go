package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72
)

// Provider authenticates users and verifies bearer tokens. The local
// provider signs its own JWTs; the Firebase provider delegates to Firebase
// Authentication.
type Provider interface {
	Verify(ctx context.Context, token string) (models.Identity, error)
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

type accountRepo interface {
	Create(ctx context.Context, account models.Account) error
	ByEmail(ctx context.Context, email string) (*models.Account, error)
}

type tokenRepo interface {
	Create(ctx context.Context, userID string, token *jwt.Token) (*models.RefreshToken, error)
	ByPrimaryKey(ctx context.Context, userID string, token *jwt.Token) (*models.RefreshToken, error)
	DeleteUserTokens(ctx context.Context, userID string) error
}

type AuthService struct {
	log         logger.Log
	jwtManager  *JWTManager
	accountRepo accountRepo
	tokenRepo   tokenRepo
}

func NewAuthService(l logger.Log, manager *JWTManager, aRepo accountRepo, tRepo tokenRepo) *AuthService {
	return &AuthService{
		log:         l,
		jwtManager:  manager,
		accountRepo: aRepo,
		tokenRepo:   tRepo,
	}
}

func ValidateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return app_errors.ErrInvalidInput
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return app_errors.ErrIncorrectPassword
	}
	return nil
}

func (u *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateCredentials(email, password); err != nil {
		return "", err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return "", err
	}
	account := models.Account{
		UID:          uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		CreatedAt:    models.ISOTime(time.Now()),
	}
	if err := u.accountRepo.Create(ctx, account); err != nil {
		return "", err
	}
	u.log.Info("Register: account created", "uid", account.UID)
	return account.UID, nil
}

func (u *AuthService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	account, err := u.accountRepo.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, app_errors.ErrUserNotFound) {
			return nil, app_errors.ErrIncorrectPassword
		}
		return nil, err
	}

	if !checkPasswordHash(password, account.PasswordHash) {
		return nil, app_errors.ErrIncorrectPassword
	}

	return u.issue(ctx, account.UID, account.Email)
}

func (u *AuthService) Refresh(ctx context.Context, token string) (*models.TokenPair, error) {
	curToken, userID, err := u.jwtManager.ParseRefresh(token)
	if err != nil {
		return nil, err
	}
	tokenRecord, err := u.tokenRepo.ByPrimaryKey(ctx, userID, curToken)
	if err != nil {
		return nil, err
	}
	expiresAt, err := time.Parse(time.RFC3339, tokenRecord.ExpiresAt)
	if err != nil || expiresAt.Before(time.Now()) {
		return nil, app_errors.ErrTokenExpired
	}
	return u.issue(ctx, userID, "")
}

// issue replaces every stored refresh token of the user with a new pair.
func (u *AuthService) issue(ctx context.Context, userID, email string) (*models.TokenPair, error) {
	pair, err := u.jwtManager.generateTokenPair(userID, email)
	if err != nil {
		return nil, err
	}
	if err := u.tokenRepo.DeleteUserTokens(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := u.tokenRepo.Create(ctx, userID, pair.refresh); err != nil {
		return nil, err
	}
	return &models.TokenPair{
		AccessToken:  pair.access.Raw,
		RefreshToken: pair.refresh.Raw,
	}, nil
}

func (u *AuthService) Verify(_ context.Context, token string) (models.Identity, error) {
	claims, err := u.jwtManager.AccessClaims(token)
	if err != nil {
		return models.Identity{}, err
	}
	return models.Identity{UID: claims.Subject, Email: claims.Email}, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
