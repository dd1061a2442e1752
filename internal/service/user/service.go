package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/imaging"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

type userRepo interface {
	Profile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, userID string, p models.Profile) error
}

type blobStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	DownloadURL(ctx context.Context, path string) (string, error)
}

type UserService struct {
	log      logger.Log
	userRepo userRepo
	blobs    blobStore
}

func NewUserService(l logger.Log, u userRepo, b blobStore) *UserService {
	return &UserService{log: l, userRepo: u, blobs: b}
}

// PicturePath is the blob path of a user's profile picture.
func PicturePath(userID string) string {
	return fmt.Sprintf("users/%s/profile_picture.jpg", userID)
}

// Profile returns a stored profile with its picture resolved to a URL.
func (s *UserService) Profile(ctx context.Context, userID string) (models.Profile, error) {
	p, err := s.userRepo.Profile(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	p.ProfilePicture = s.pictureURL(ctx, p.ProfilePicture)
	return p, nil
}

// Me returns the caller's profile, or an empty one when none was saved yet.
func (s *UserService) Me(ctx context.Context, userID string) (models.Profile, error) {
	p, err := s.Profile(ctx, userID)
	if errors.Is(err, app_errors.ErrUserNotFound) {
		return models.Profile{ID: userID}, nil
	}
	return p, err
}

// SaveProfile creates or overwrites the caller's profile. Without a new
// picture the stored one is kept.
func (s *UserService) SaveProfile(ctx context.Context, userID, fullName string, picture io.Reader) error {
	p := models.Profile{
		FullName:  strings.TrimSpace(fullName),
		CreatedAt: models.ISOTime(time.Now()),
	}

	existing, err := s.userRepo.Profile(ctx, userID)
	switch {
	case err == nil:
		p.ProfilePicture = existing.ProfilePicture
		if existing.CreatedAt != "" {
			p.CreatedAt = existing.CreatedAt
		}
	case !errors.Is(err, app_errors.ErrUserNotFound):
		return err
	}

	if picture != nil {
		img, err := imaging.Cover(picture, imaging.AvatarSize, imaging.AvatarSize)
		if err != nil {
			return err
		}
		path := PicturePath(userID)
		if err := s.blobs.Upload(ctx, path, img, int64(img.Len()), imaging.ContentType); err != nil {
			s.log.ErrorErr("SaveProfile: failed to upload picture", err, "user", userID)
			return err
		}
		p.ProfilePicture = path
	}

	return s.userRepo.SaveProfile(ctx, userID, p)
}

// pictureURL resolves a stored blob path. Absolute URLs pass through.
func (s *UserService) pictureURL(ctx context.Context, stored string) string {
	if stored == "" || strings.HasPrefix(stored, "http://") || strings.HasPrefix(stored, "https://") {
		return stored
	}
	url, err := s.blobs.DownloadURL(ctx, stored)
	if err != nil {
		s.log.Debug("pictureURL: cannot resolve profile picture", "path", stored, logger.Err(err))
		return ""
	}
	return url
}
