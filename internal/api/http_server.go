package api

import (
	"strings"
	"time"

	"payroll/internal/auth"
	"payroll/internal/config"
	"payroll/internal/model"
	"payroll/internal/service"
	"payroll/internal/storage"

	"github.com/sirupsen/logrus"
)

// HTTPHandler serves the REST API.
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	authManager       *auth.Manager

	payroll  *service.PayrollService
	pictures *service.PictureService
	slips    *service.SlipService
	signup   *service.RegistrationService
	metrics  *HTTPMetrics
}

// NewHTTPHandler wires the services behind the REST handlers. metrics may be nil.
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, metrics *HTTPMetrics) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}

	mailer := service.LogMailer{Log: logrus.WithField("component", "mail")}
	signup := service.NewRegistrationService(repo, mailer, cfg.MailFrom, time.Duration(cfg.VerificationTTLHours)*time.Hour)

	return &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		authManager:       authManager,
		payroll:           service.NewPayrollService(repo),
		pictures:          service.NewPictureService(repo, store, cfg.UploadMaxBytes),
		slips:             service.NewSlipService(),
		signup:            signup,
		metrics:           metrics,
	}, nil
}

func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/media"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}
