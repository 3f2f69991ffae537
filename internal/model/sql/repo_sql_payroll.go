package sql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payroll/internal/entity"

	"gorm.io/gorm/clause"
)

// ListPayrollRecords returns a user's history, most recently written first.
func (r *GormRepository) ListPayrollRecords(ctx context.Context, userID uint) ([]entity.DbPayrollRecord, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if userID == 0 {
		return nil, fmt.Errorf("invalid user id")
	}
	var records []entity.DbPayrollRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order(payrollOrder).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetPayrollRecord loads the record of one month.
func (r *GormRepository) GetPayrollRecord(ctx context.Context, userID uint, month string) (*entity.DbPayrollRecord, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	month = strings.TrimSpace(month)
	if userID == 0 || month == "" {
		return nil, fmt.Errorf("invalid payroll key")
	}
	var record entity.DbPayrollRecord
	if err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// UpsertPayrollRecord inserts the record or overwrites the one with the same
// (user_id, month). created_at of an existing row is left untouched.
func (r *GormRepository) UpsertPayrollRecord(ctx context.Context, record *entity.DbPayrollRecord) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if record == nil || record.UserID == 0 || strings.TrimSpace(record.Month) == "" {
		return fmt.Errorf("invalid payroll record")
	}
	record.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"base_salary", "allowances", "deductions", "net_salary", "status", "notes", "updated_at",
		}),
	}).Create(record).Error
	if err != nil {
		return err
	}

	saved, err := r.GetPayrollRecord(ctx, record.UserID, record.Month)
	if err != nil {
		return err
	}
	*record = *saved
	return nil
}
