package view

import (
	"fmt"
	"strconv"

	"payroll/internal/console/currency"
	"payroll/internal/console/domain"
	"payroll/internal/console/status"
)

// SlipPath is the backend path of a payroll slip document.
func SlipPath(userID uint, month string) string {
	return fmt.Sprintf("/api/payroll/%d/pdf?month=%s", userID, month)
}

func userID(id uint) string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}

func statusControl(u domain.User, d status.Derived) *StatusControl {
	return &StatusControl{
		UserID:   u.ID,
		Month:    d.LatestMonth,
		Selected: d.Code,
		Disabled: !d.HasRecord,
		Options:  status.Options(),
	}
}

// Directory lists every user regardless of role.
func Directory(users []domain.User) Table {
	t := Table{
		Title:   "Directory",
		Columns: []string{"Name", "Department", "Position", "Email", "Phone", "Emergency Contact"},
	}
	if len(users) == 0 {
		t.Rows = placeholder(NoUsersPlaceholder)
		return t
	}
	for _, u := range users {
		emergency := "-"
		if u.EmergencyContactName != "" {
			emergency = u.EmergencyContactName
			if u.EmergencyContactPhone != "" {
				emergency += " (" + u.EmergencyContactPhone + ")"
			}
		}
		t.Rows = append(t.Rows, Row{
			UserID: u.ID,
			Cells:  []string{u.FullName, orDash(u.Department), orDash(u.Position), u.Email, orDash(u.Phone), emergency},
		})
	}
	return t
}

// UserTable is the main user management table.
func UserTable(users []domain.User) Table {
	t := Table{
		Title:   "Users",
		Columns: []string{"Picture", "ID", "Name", "Username", "Email", "Role", "Status"},
	}
	if len(users) == 0 {
		t.Rows = placeholder(NoUsersPlaceholder)
		return t
	}
	for _, u := range users {
		picture := "-"
		if u.ProfilePicture != "" {
			picture = "[img]"
		}
		role := "User"
		if u.Role == domain.RoleAdmin {
			role = "Admin"
		}
		active := "Inactive"
		if u.IsActive {
			active = "Active"
		}
		t.Rows = append(t.Rows, Row{
			UserID: u.ID,
			Cells:  []string{picture, userID(u.ID), u.FullName, u.Username, u.Email, role, active},
		})
	}
	return t
}

// PayrollInput is the payroll management table of role user accounts.
func PayrollInput(users []domain.User) Table {
	t := Table{
		Title:   "Payroll",
		Columns: []string{"ID", "Name", "Username", "Department", "Position", "Net Salary", "Month", "Last Updated", "Status", "Set Status"},
	}
	payroll := domain.PayrollUsers(users)
	if len(payroll) == 0 {
		t.Rows = placeholder(NoUsersPlaceholder)
		return t
	}
	for _, u := range payroll {
		d := status.Resolve(u.PayrollHistory)
		amount, month, updated := "-", "", "Never"
		if latest, ok := u.Latest(); ok {
			amount = currency.Format(latest.NetSalary)
			month = latest.Month
			if !latest.UpdatedAt.IsZero() {
				updated = latest.UpdatedAt.Format("2/1/2006")
			}
		}
		t.Rows = append(t.Rows, Row{
			UserID:  u.ID,
			Cells:   []string{userID(u.ID), u.FullName, u.Username, orDash(u.Department), orDash(u.Position), amount, month, updated, d.Label},
			Status:  &d,
			Control: statusControl(u, d),
		})
	}
	return t
}

// PayrollHistory summarises every role user account's latest record.
func PayrollHistory(users []domain.User) Table {
	t := Table{
		Title:   "Payroll History",
		Columns: []string{"Name", "Department", "Month", "Net Salary", "Status", "Records", "Set Status"},
	}
	payroll := domain.PayrollUsers(users)
	if len(payroll) == 0 {
		t.Rows = placeholder(NoUsersPlaceholder)
		return t
	}
	for _, u := range payroll {
		d := status.Resolve(u.PayrollHistory)
		month, amount := "-", "No data"
		if latest, ok := u.Latest(); ok {
			month = latest.Month
			amount = currency.Format(latest.NetSalary)
		}
		records := fmt.Sprintf("%d records", len(u.PayrollHistory))
		if len(u.PayrollHistory) == 1 {
			records = "1 record"
		}
		t.Rows = append(t.Rows, Row{
			UserID:  u.ID,
			Cells:   []string{u.FullName + " (" + u.Username + ")", orDash(u.Department), month, amount, d.Label, records},
			Status:  &d,
			Control: statusControl(u, d),
		})
	}
	return t
}

// PDFList lists the slip documents that can be generated.
func PDFList(users []domain.User) Table {
	t := Table{
		Title:   "Generate PDF",
		Columns: []string{"Name", "Month", "Net Salary", "Status", "Slip", "Set Status"},
	}
	payroll := domain.PayrollUsers(users)
	if len(payroll) == 0 {
		t.Rows = placeholder(NoUsersPlaceholder)
		return t
	}
	for _, u := range payroll {
		d := status.Resolve(u.PayrollHistory)
		month, amount, slip := "No data", "-", "No payroll data"
		if latest, ok := u.Latest(); ok {
			month = latest.Month
			amount = currency.Format(latest.NetSalary)
			slip = SlipPath(u.ID, latest.Month)
		}
		t.Rows = append(t.Rows, Row{
			UserID:  u.ID,
			Cells:   []string{u.FullName + " (" + u.Username + ")", month, amount, d.Label, slip},
			Status:  &d,
			Control: statusControl(u, d),
		})
	}
	return t
}

// ModalHistory is the history panel of one user's payroll modal.
func ModalHistory(userID uint, history []domain.PayrollRecord) Table {
	t := Table{
		Title:   "Payroll Records",
		Columns: []string{"Month", "Base Salary", "Allowances", "Deductions", "Net Salary", "Slip"},
	}
	if len(history) == 0 {
		t.Rows = placeholder(NoRecordsPlaceholder)
		return t
	}
	for _, r := range history {
		t.Rows = append(t.Rows, Row{
			UserID: userID,
			Cells: []string{
				r.Month,
				currency.Format(r.BaseSalary),
				currency.Format(r.Allowances),
				currency.Format(r.Deductions),
				currency.Format(r.NetSalary),
				SlipPath(userID, r.Month),
			},
		})
	}
	return t
}
