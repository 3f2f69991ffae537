package model

import (
	"context"

	"payroll/internal/entity"
)

// Repository is the persistence boundary of the server.
type Repository interface {
	// users
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	ListUsers(ctx context.Context) ([]entity.DbUser, error)
	DeleteUser(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*entity.DbUser, error)
	// MarkEmailVerified clears the pending flag and the verification token.
	MarkEmailVerified(ctx context.Context, id uint) error

	// payroll
	ListPayrollRecords(ctx context.Context, userID uint) ([]entity.DbPayrollRecord, error)
	GetPayrollRecord(ctx context.Context, userID uint, month string) (*entity.DbPayrollRecord, error)
	UpsertPayrollRecord(ctx context.Context, record *entity.DbPayrollRecord) error
}
