package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"payroll/internal/console/domain"
	"payroll/internal/console/status"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Orchestrator performs writes and, once the backend acknowledged them,
// invalidates the cache and refreshes every mounted view.
type Orchestrator struct {
	backend Backend
	store   *Store
	views   func() []View
	modal   *ModalView
	log     logrus.FieldLogger
}

func NewOrchestrator(backend Backend, store *Store, views func() []View, modal *ModalView, log logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{backend: backend, store: store, views: views, modal: modal, log: log}
}

// Cascade invalidates the user cache and refreshes the mounted views
// concurrently. payrollUserID, when non zero, also refreshes the payroll
// modal if it shows that user.
func (o *Orchestrator) Cascade(ctx context.Context, payrollUserID uint) error {
	o.store.Invalidate()

	var g errgroup.Group
	for _, v := range o.views() {
		if !v.Mounted() {
			continue
		}
		v := v
		g.Go(func() error {
			if err := v.Refresh(ctx); err != nil {
				return fmt.Errorf("refresh %s: %w", v.Name(), err)
			}
			return nil
		})
	}
	if payrollUserID != 0 && o.modal != nil && o.modal.UserID() == payrollUserID {
		g.Go(func() error {
			if err := o.modal.Refresh(ctx); err != nil {
				return fmt.Errorf("refresh %s: %w", o.modal.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// afterWrite runs the cascade. The write already succeeded, so refresh
// failures are logged and not returned.
func (o *Orchestrator) afterWrite(ctx context.Context, action string, payrollUserID uint) {
	if err := o.Cascade(ctx, payrollUserID); err != nil {
		o.log.WithError(err).WithField("action", action).Warn("refresh after write failed")
	}
}

func (o *Orchestrator) CreateUser(ctx context.Context, in domain.UserInput) (domain.User, error) {
	user, err := o.backend.CreateUser(ctx, in)
	if err != nil {
		return domain.User{}, err
	}
	o.afterWrite(ctx, "create user", 0)
	return user, nil
}

func (o *Orchestrator) UpdateUser(ctx context.Context, userID uint, in domain.UserInput) (domain.User, error) {
	if userID == 0 {
		return domain.User{}, &domain.ValidationError{Field: "user"}
	}
	user, err := o.backend.UpdateUser(ctx, userID, in)
	if err != nil {
		return domain.User{}, err
	}
	o.afterWrite(ctx, "update user", 0)
	return user, nil
}

func (o *Orchestrator) DeleteUser(ctx context.Context, userID uint) error {
	if userID == 0 {
		return &domain.ValidationError{Field: "user"}
	}
	if err := o.backend.DeleteUser(ctx, userID); err != nil {
		return err
	}
	o.afterWrite(ctx, "delete user", 0)
	return nil
}

func (o *Orchestrator) UploadPicture(ctx context.Context, userID uint, filename string, data io.Reader) (string, error) {
	if userID == 0 {
		return "", &domain.ValidationError{Field: "user"}
	}
	url, err := o.backend.UploadPicture(ctx, userID, filename, data)
	if err != nil {
		return "", err
	}
	o.afterWrite(ctx, "upload picture", 0)
	return url, nil
}

// UpsertPayroll writes a full record for in.Month.
func (o *Orchestrator) UpsertPayroll(ctx context.Context, userID uint, in domain.PayrollUpsert) (domain.PayrollRecord, error) {
	if userID == 0 {
		return domain.PayrollRecord{}, &domain.ValidationError{Field: "employee", Message: "Please select an employee for payroll."}
	}
	if strings.TrimSpace(in.Month) == "" {
		return domain.PayrollRecord{}, &domain.ValidationError{Field: "month"}
	}
	record, err := o.backend.Upsert(ctx, userID, in)
	if err != nil {
		return domain.PayrollRecord{}, err
	}
	o.afterWrite(ctx, "upsert payroll", userID)
	return record, nil
}

// UpdateStatus changes only the status of an existing month. The other
// fields are copied from the stored record; a missing month is never created.
func (o *Orchestrator) UpdateStatus(ctx context.Context, userID uint, month, newStatus string) error {
	month = strings.TrimSpace(month)
	if userID == 0 {
		return &domain.ValidationError{Field: "user"}
	}
	if month == "" {
		return &domain.ValidationError{Field: "month"}
	}
	if !status.Valid(newStatus) {
		return &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	history, err := o.backend.History(ctx, userID)
	if err != nil {
		return err
	}
	record, ok := domain.FindRecord(history, month)
	if !ok {
		return &domain.NotFoundError{Resource: "payroll record", Message: "no payroll record for this month"}
	}

	_, err = o.backend.Upsert(ctx, userID, domain.PayrollUpsert{
		Month:      month,
		BaseSalary: record.BaseSalary,
		Allowances: record.Allowances,
		Deductions: record.Deductions,
		Notes:      record.Notes,
		Status:     newStatus,
	})
	if err != nil {
		return err
	}
	o.afterWrite(ctx, "update status", userID)
	return nil
}
