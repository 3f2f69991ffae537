package storage

import (
	"context"
	"fmt"
	"strings"

	"payroll/internal/config"
)

const (
	TypeLocal = "local"
	// TypeS3 is Amazon S3 or any S3 compatible endpoint.
	TypeS3  = "s3"
	TypeOSS = "oss"
	TypeCOS = "cos"
	TypeR2  = "r2"
)

// SaveOptions controls where an object is written.
//
// Category groups objects (for example "profile_pictures"); Extension is the
// preferred file extension without the leading dot.
type SaveOptions struct {
	Category    string
	Extension   string
	BaseName    string
	ContentType string
}

// Storage persists uploaded media and returns a backend specific key, such
// as a path relative to the local base directory.
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
	// Delete removes the object; a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// LocalBaseDirProvider is implemented by drivers whose files can be served
// directly over HTTP.
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage instantiates the backend selected by STORAGE_TYPE.
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
