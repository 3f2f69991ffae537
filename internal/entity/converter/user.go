package converter

import (
	"sort"
	"strings"

	"payroll/internal/entity"
)

// UserToView converts a persisted user to its client representation.
// publicURL turns a stored picture key into a link; nil keeps the key as is.
func UserToView(u *entity.DbUser, publicURL func(string) string) entity.UserView {
	if u == nil {
		return entity.UserView{}
	}
	view := entity.UserView{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		FullName:              u.FullName,
		Role:                  u.Role,
		IsActive:              u.IsActive,
		EmailVerified:         !u.EmailPending,
		Department:            u.Department,
		Position:              u.Position,
		Phone:                 u.Phone,
		EmergencyContactName:  u.EmergencyContactName,
		EmergencyContactPhone: u.EmergencyContactPhone,
		CreatedAt:             u.CreatedAt,
		PayrollHistory:        PayrollHistoryToView(u.PayrollHistory),
	}
	if picture := strings.TrimSpace(u.ProfilePicture); picture != "" {
		if publicURL != nil {
			picture = publicURL(picture)
		}
		view.ProfilePicture = &picture
	}
	return view
}

// UsersToViews converts a slice of users.
func UsersToViews(users []entity.DbUser, publicURL func(string) string) []entity.UserView {
	views := make([]entity.UserView, len(users))
	for i := range users {
		views[i] = UserToView(&users[i], publicURL)
	}
	return views
}

// PayrollRecordToView converts a single record.
func PayrollRecordToView(r *entity.DbPayrollRecord) entity.PayrollRecordView {
	if r == nil {
		return entity.PayrollRecordView{}
	}
	return entity.PayrollRecordView{
		Month:      r.Month,
		BaseSalary: r.BaseSalary,
		Allowances: r.Allowances,
		Deductions: r.Deductions,
		NetSalary:  r.NetSalary,
		Status:     r.Status,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// PayrollHistoryToView returns records most recently updated first.
func PayrollHistoryToView(records []entity.DbPayrollRecord) []entity.PayrollRecordView {
	ordered := make([]entity.DbPayrollRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].UpdatedAt.Equal(ordered[j].UpdatedAt) {
			return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})
	views := make([]entity.PayrollRecordView, len(ordered))
	for i := range ordered {
		views[i] = PayrollRecordToView(&ordered[i])
	}
	return views
}
