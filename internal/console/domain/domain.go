// Package domain holds the console's read replica of users and payroll
// records, plus the error taxonomy surfaced to the operator.
package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	StatusPending     = "pending"
	StatusInProgress  = "in_progress"
	StatusTransferred = "transferred"
)

// User mirrors the backend user document. PayrollHistory is newest first.
type User struct {
	ID                    uint            `json:"id"`
	Username              string          `json:"username"`
	Email                 string          `json:"email"`
	FullName              string          `json:"full_name"`
	Role                  string          `json:"role"`
	IsActive              bool            `json:"is_active"`
	ProfilePicture        string          `json:"profile_picture"`
	Department            string          `json:"department"`
	Position              string          `json:"position"`
	Phone                 string          `json:"phone"`
	EmergencyContactName  string          `json:"emergency_contact_name"`
	EmergencyContactPhone string          `json:"emergency_contact_phone"`
	PayrollHistory        []PayrollRecord `json:"payroll_history"`
}

// Latest returns the authoritative current record.
func (u User) Latest() (PayrollRecord, bool) {
	if len(u.PayrollHistory) == 0 {
		return PayrollRecord{}, false
	}
	return u.PayrollHistory[0], true
}

// PayrollRecord is one month of pay. NetSalary is computed by the server.
type PayrollRecord struct {
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

// PayrollUpsert is the write payload keyed by Month. It has no net salary.
type PayrollUpsert struct {
	Month      string          `json:"month"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Allowances decimal.Decimal `json:"allowances"`
	Deductions decimal.Decimal `json:"deductions"`
	Notes      string          `json:"notes"`
	Status     string          `json:"status,omitempty"`
}

// UserInput is the create/update payload. Empty fields are left unchanged on
// update.
type UserInput struct {
	Username              string `json:"username,omitempty"`
	Email                 string `json:"email,omitempty"`
	Password              string `json:"password,omitempty"`
	FullName              string `json:"full_name,omitempty"`
	Role                  string `json:"role,omitempty"`
	IsActive              *bool  `json:"is_active,omitempty"`
	Department            string `json:"department,omitempty"`
	Position              string `json:"position,omitempty"`
	Phone                 string `json:"phone,omitempty"`
	EmergencyContactName  string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string `json:"emergency_contact_phone,omitempty"`
}

// NormalizeHistory returns a copy ordered by UpdatedAt, most recent first.
// Records with equal timestamps keep their received order.
func NormalizeHistory(history []PayrollRecord) []PayrollRecord {
	if len(history) == 0 {
		return []PayrollRecord{}
	}
	out := make([]PayrollRecord, len(history))
	copy(out, history)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// FindRecord returns the record for month, if any.
func FindRecord(history []PayrollRecord, month string) (PayrollRecord, bool) {
	for _, record := range history {
		if record.Month == month {
			return record, true
		}
	}
	return PayrollRecord{}, false
}

// PayrollUsers keeps only role user accounts, preserving order.
func PayrollUsers(users []User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.Role == RoleUser {
			out = append(out, u)
		}
	}
	return out
}
