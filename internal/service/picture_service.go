package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"payroll/internal/entity"
	"payroll/internal/model"
	"payroll/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	pictureCategory        = "profile_pictures"
	DefaultPictureMaxBytes = 5 * 1024 * 1024
)

var (
	ErrNoFile          = errors.New("no file provided")
	ErrInvalidFileType = errors.New("invalid file type: only JPEG, PNG, GIF and WebP are allowed")
	ErrFileTooLarge    = errors.New("file too large")
)

// allowedPictureTypes maps sniffed MIME types to stored extensions.
var allowedPictureTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// PictureService stores profile pictures and replaces the previous one.
type PictureService struct {
	repo     model.Repository
	storage  storage.Storage
	maxBytes int64
}

func NewPictureService(repo model.Repository, store storage.Storage, maxBytes int64) *PictureService {
	if maxBytes <= 0 {
		maxBytes = DefaultPictureMaxBytes
	}
	return &PictureService{repo: repo, storage: store, maxBytes: maxBytes}
}

// MaxBytes is the upload size limit.
func (s *PictureService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload validates the content by sniffing it, stores it as
// user_<id>_<random>.<ext> and returns the new storage key.
func (s *PictureService) Upload(ctx context.Context, userID uint, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrNoFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrFileTooLarge
	}

	mtype := mimetype.Detect(data)
	ext, ok := allowedPictureTypes[strings.ToLower(strings.Split(mtype.String(), ";")[0])]
	if !ok {
		return "", ErrInvalidFileType
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("load user: %w", err)
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("random suffix: %w", err)
	}

	key, err := s.storage.Save(ctx, data, storage.SaveOptions{
		Category:    pictureCategory,
		BaseName:    fmt.Sprintf("user_%d_%s", userID, hex.EncodeToString(suffix)),
		Extension:   ext,
		ContentType: mtype.String(),
	})
	if err != nil {
		return "", fmt.Errorf("store picture: %w", err)
	}

	if err := s.repo.UpdateUser(ctx, userID, entity.UserUpdates{ProfilePicture: &key}); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logrus.WithError(delErr).WithField("key", key).Warn("failed to roll back stored picture")
		}
		return "", fmt.Errorf("update user: %w", err)
	}

	if previous := strings.TrimSpace(user.ProfilePicture); previous != "" && previous != key {
		if err := s.storage.Delete(ctx, previous); err != nil {
			logrus.WithError(err).WithField("key", previous).Warn("failed to delete previous profile picture")
		}
	}
	return key, nil
}

// Remove deletes the stored picture of a user being removed.
func (s *PictureService) Remove(ctx context.Context, key string) {
	if strings.TrimSpace(key) == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("failed to delete profile picture")
	}
}
