package model

import (
	"context"
	"strings"

	"payroll/internal/auth"
	"payroll/internal/config"
	"payroll/internal/entity"

	"github.com/sirupsen/logrus"
)

// SeedDefaultAdmin creates the first administrator when the user table is empty.
func SeedDefaultAdmin(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil {
		return nil
	}

	count, err := repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	password := strings.TrimSpace(cfg.SeedAdminPassword)
	if password == "" {
		logrus.Warn("user table is empty and SEED_ADMIN_PASSWORD is not set; skipping admin seed")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	username := strings.TrimSpace(cfg.SeedAdminUsername)
	if username == "" {
		username = "admin"
	}

	admin := &entity.DbUser{
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail)),
		PasswordHash: hash,
		FullName:     "Administrator",
		Role:         entity.UserRoleAdmin,
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, admin); err != nil {
		return err
	}
	logrus.WithField("username", username).Info("seeded default admin")
	return nil
}
