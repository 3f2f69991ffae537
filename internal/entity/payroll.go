package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PayrollStatusPending     = "pending"
	PayrollStatusInProgress  = "in_progress"
	PayrollStatusTransferred = "transferred"
)

// PayrollMonthLayout is the time layout of a payroll period key.
const PayrollMonthLayout = "2006-01"

// ValidPayrollStatus reports whether value is one of the stored statuses.
func ValidPayrollStatus(value string) bool {
	switch value {
	case PayrollStatusPending, PayrollStatusInProgress, PayrollStatusTransferred:
		return true
	default:
		return false
	}
}

// DbPayrollRecord is one monthly payroll entry; (user_id, month) is unique.
type DbPayrollRecord struct {
	ID         uint            `gorm:"primarykey" json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	UserID     uint            `gorm:"column:user_id;not null;uniqueIndex:idx_payroll_user_month" json:"user_id"`
	Month      string          `gorm:"column:month;type:varchar(7);not null;uniqueIndex:idx_payroll_user_month" json:"month"`
	BaseSalary decimal.Decimal `gorm:"column:base_salary;type:decimal(18,2);not null" json:"base_salary"`
	Allowances decimal.Decimal `gorm:"column:allowances;type:decimal(18,2);not null" json:"allowances"`
	Deductions decimal.Decimal `gorm:"column:deductions;type:decimal(18,2);not null" json:"deductions"`
	NetSalary  decimal.Decimal `gorm:"column:net_salary;type:decimal(18,2);not null" json:"net_salary"`
	Status     string          `gorm:"column:status;type:varchar(20);not null;default:pending" json:"status"`
	Notes      string          `gorm:"column:notes;type:text" json:"notes"`
}

// TableName overrides default pluralised name.
func (DbPayrollRecord) TableName() string {
	return "payroll_records"
}

// PayrollRecordView is the wire shape of a payroll record.
type PayrollRecordView struct {
	Month      string          `json:"month"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	NetSalary  decimal.Decimal `json:"net_salary"`
	Status     string          `json:"status"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// PayrollUpsertRequest carries no net salary; it is always derived server side.
type PayrollUpsertRequest struct {
	Month      string `json:"month" binding:"required,datetime=2006-01"`
	BaseSalary Money  `json:"base_salary"`
	Allowances Money  `json:"allowances"`
	Deductions Money  `json:"deductions"`
	Notes      string `json:"notes"`
	Status     string `json:"status"`
}

type PayrollHistoryResponse struct {
	PayrollHistory []PayrollRecordView `json:"payroll_history"`
}

type PayrollUpsertResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Record  *PayrollRecordView `json:"record,omitempty"`
}
