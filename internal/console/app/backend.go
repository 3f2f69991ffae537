// Package app owns the console state: the user cache, the mounted views, and
// the orchestration of writes followed by refreshes.
package app

import (
	"context"
	"io"

	"payroll/internal/console/domain"
)

// Backend is the subset of the REST adapter the console drives.
type Backend interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	History(ctx context.Context, userID uint) ([]domain.PayrollRecord, error)
	Upsert(ctx context.Context, userID uint, in domain.PayrollUpsert) (domain.PayrollRecord, error)
	CreateUser(ctx context.Context, in domain.UserInput) (domain.User, error)
	UpdateUser(ctx context.Context, userID uint, in domain.UserInput) (domain.User, error)
	DeleteUser(ctx context.Context, userID uint) error
	UploadPicture(ctx context.Context, userID uint, filename string, data io.Reader) (string, error)
}
