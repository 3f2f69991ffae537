package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payroll/internal/auth"
	"payroll/internal/entity"
	"payroll/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultVerificationTTL = 24 * time.Hour

var (
	ErrDuplicateUser       = errors.New("username or email already exists")
	ErrVerificationInvalid = errors.New("verification link is invalid")
	ErrVerificationExpired = errors.New("verification link has expired")
)

// RegistrationService signs up employees and confirms their email address.
type RegistrationService struct {
	repo   model.Repository
	mailer Mailer
	from   string
	ttl    time.Duration

	now      func() time.Time
	newToken func() string
}

func NewRegistrationService(repo model.Repository, mailer Mailer, from string, ttl time.Duration) *RegistrationService {
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	return &RegistrationService{
		repo:     repo,
		mailer:   mailer,
		from:     from,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		newToken: newVerificationToken,
	}
}

func newVerificationToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// Registration is the outcome of a sign up. MailErr is set when the account
// was stored but the verification mail could not be sent.
type Registration struct {
	User    *entity.DbUser
	MailErr error
}

// Register creates a pending account with role user. verifyURL maps a token
// to the link placed in the mail.
func (s *RegistrationService) Register(ctx context.Context, req entity.RegisterRequest, verifyURL func(token string) string) (*Registration, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, errors.New("username and email are required")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	token := s.newToken()
	expires := s.now().Add(s.ttl)
	user := &entity.DbUser{
		Username:              username,
		Email:                 email,
		PasswordHash:          hash,
		FullName:              strings.TrimSpace(req.FullName),
		Role:                  entity.UserRoleUser,
		IsActive:              true,
		EmailPending:          true,
		VerificationToken:     &token,
		VerificationExpiresAt: &expires,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	name := user.FullName
	if name == "" {
		name = user.Username
	}
	mailErr := s.mailer.Send(ctx, Mail{
		From:    s.from,
		To:      user.Email,
		Subject: "Verify your email",
		Body: fmt.Sprintf("Hi %s,\n\nPlease verify your email address by clicking the link below:\n%s\n\nThis link expires in %d hours.",
			name, verifyURL(token), int(s.ttl.Hours())),
	})
	return &Registration{User: user, MailErr: mailErr}, nil
}

// Verify consumes a verification token. An expired token is left in place
// so a repeated click keeps reporting expiry.
func (s *RegistrationService) Verify(ctx context.Context, token string) (*entity.DbUser, error) {
	user, err := s.repo.GetUserByVerificationToken(ctx, strings.TrimSpace(token))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVerificationInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("load user by token: %w", err)
	}
	if user.VerificationExpiresAt != nil && s.now().After(*user.VerificationExpiresAt) {
		return user, ErrVerificationExpired
	}
	if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("mark email verified: %w", err)
	}
	user.EmailPending = false
	user.VerificationToken = nil
	user.VerificationExpiresAt = nil
	return user, nil
}
