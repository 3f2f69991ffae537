package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payroll/internal/entity"
	"payroll/internal/model"

	"gorm.io/gorm"
)

var (
	ErrMonthRequired  = errors.New("month is required (YYYY-MM)")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrUserNotFound   = errors.New("user not found")
	ErrRecordNotFound = errors.New("payroll record not found")
)

// PayrollService owns the upsert rules for monthly payroll records.
type PayrollService struct {
	repo model.Repository
}

func NewPayrollService(repo model.Repository) *PayrollService {
	return &PayrollService{repo: repo}
}

// NormalizeMonth trims and validates a "YYYY-MM" period key.
func NormalizeMonth(month string) (string, error) {
	trimmed := strings.TrimSpace(month)
	if trimmed == "" {
		return "", ErrMonthRequired
	}
	if _, err := time.Parse(entity.PayrollMonthLayout, trimmed); err != nil {
		return "", ErrMonthRequired
	}
	return trimmed, nil
}

// Upsert writes the record for (userID, req.Month). Net salary is always
// base + allowances - deductions. An empty status keeps the stored one, or
// pending for a new month.
func (s *PayrollService) Upsert(ctx context.Context, userID uint, req entity.PayrollUpsertRequest) (*entity.DbPayrollRecord, error) {
	month, err := NormalizeMonth(req.Month)
	if err != nil {
		return nil, err
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != "" && !entity.ValidPayrollStatus(status) {
		return nil, ErrInvalidStatus
	}

	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	existing, err := s.repo.GetPayrollRecord(ctx, userID, month)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load payroll record: %w", err)
	}
	if status == "" {
		status = entity.PayrollStatusPending
		if existing != nil && entity.ValidPayrollStatus(existing.Status) {
			status = existing.Status
		}
	}

	base := req.BaseSalary.Decimal
	allowances := req.Allowances.Decimal
	deductions := req.Deductions.Decimal

	record := &entity.DbPayrollRecord{
		UserID:     userID,
		Month:      month,
		BaseSalary: base,
		Allowances: allowances,
		Deductions: deductions,
		NetSalary:  base.Add(allowances).Sub(deductions),
		Status:     status,
		Notes:      req.Notes,
	}
	if err := s.repo.UpsertPayrollRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("upsert payroll record: %w", err)
	}
	return record, nil
}

// History returns the user's records, most recently written first.
func (s *PayrollService) History(ctx context.Context, userID uint) ([]entity.DbPayrollRecord, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return s.repo.ListPayrollRecords(ctx, userID)
}

// Record loads one month for the slip endpoint.
func (s *PayrollService) Record(ctx context.Context, userID uint, month string) (*entity.DbUser, *entity.DbPayrollRecord, error) {
	month, err := NormalizeMonth(month)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	record, err := s.repo.GetPayrollRecord(ctx, userID, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRecordNotFound
		}
		return nil, nil, fmt.Errorf("load payroll record: %w", err)
	}
	return user, record, nil
}
