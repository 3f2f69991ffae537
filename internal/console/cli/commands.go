package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"payroll/internal/console/app"
	"payroll/internal/console/domain"
)

func (a *App) Login(ctx context.Context, args []string) error {
	username := a.username
	if len(args) > 0 {
		username = args[0]
	}
	return a.run(ctx, func(ctx context.Context) (string, error) {
		if username == "" {
			var err error
			if username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
				return "", err
			}
		}
		password, err := GetPassword(a.out)
		if err != nil {
			return "", err
		}
		user, err := a.api.Login(ctx, username, password)
		if err != nil {
			return "", err
		}
		if user.Role != domain.RoleAdmin {
			_ = a.api.Logout(ctx)
			return "", &domain.BackendError{StatusCode: 403, Message: "This console requires an admin account"}
		}

		a.mu.Lock()
		a.user = &user
		a.mu.Unlock()

		if err := a.ctrl.Start(ctx); err != nil {
			return "", fmt.Errorf("load users: %w", err)
		}
		if err := a.printMounted(); err != nil {
			return "", err
		}
		return fmt.Sprintf("Logged in as %s", user.Username), nil
	})
}

func (a *App) Logout(ctx context.Context) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		if err := a.api.Logout(ctx); err != nil {
			return "", err
		}
		a.mu.Lock()
		a.user = nil
		a.mu.Unlock()
		a.ctrl.CloseModal()
		a.ctrl.Store().Invalidate()
		return "Logged out", nil
	})
}

func (a *App) switchMode(ctx context.Context, mode app.Mode, tables ...string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		if err := a.ctrl.SetMode(ctx, mode); err != nil {
			return "", err
		}
		for _, name := range tables {
			if err := a.printTable(name); err != nil {
				return "", err
			}
		}
		return "", nil
	})
}

func (a *App) ShowUsers(ctx context.Context) error {
	return a.switchMode(ctx, app.ModeUsers, app.ViewUsers)
}

func (a *App) ShowDirectory(ctx context.Context) error {
	return a.switchMode(ctx, app.ModeDirectory, app.ViewDirectory)
}

func (a *App) ShowPayroll(ctx context.Context) error {
	return a.switchMode(ctx, app.ModePayroll, app.ViewPayrollInput, app.ViewPayrollHistory, app.ViewPDFList)
}

func (a *App) Search(ctx context.Context, query string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		if a.ctrl.Mode() != app.ModeDirectory {
			if err := a.ctrl.SetMode(ctx, app.ModeDirectory); err != nil {
				return "", err
			}
		}
		table, err := a.ctrl.Search(ctx, query)
		if err != nil {
			return "", err
		}
		return "", table.Render(a.out)
	})
}

func (a *App) ShowTables(ctx context.Context) error {
	return a.printMounted()
}

func (a *App) Refresh(ctx context.Context) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		if err := a.ctrl.Orchestrator().Cascade(ctx, a.ctrl.Modal().UserID()); err != nil {
			return "", err
		}
		return "", a.printMounted()
	})
}

func (a *App) Employees(ctx context.Context) error {
	users := a.ctrl.EmployeeOptions(ctx)
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No employees")
		return nil
	}
	for _, u := range users {
		fmt.Fprintf(a.out, "%d\t%s (@%s)\n", u.ID, u.FullName, u.Username)
	}
	return nil
}

func (a *App) OpenModal(ctx context.Context, args []string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		userID, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		if err := a.ctrl.OpenModal(ctx, userID); err != nil {
			return "", err
		}
		return "", a.ctrl.Modal().Table().Render(a.out)
	})
}

func (a *App) CloseModal(ctx context.Context) error {
	a.ctrl.CloseModal()
	return nil
}

func (a *App) CreateUser(ctx context.Context) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		var form app.UserForm
		prompts := []struct {
			label string
			dst   *string
		}{
			{"Full name", &form.FullName},
			{"Username", &form.Username},
			{"Email", &form.Email},
			{"Role (user/admin)", &form.Role},
			{"Department", &form.Department},
			{"Position", &form.Position},
			{"Phone", &form.Phone},
			{"Emergency contact name", &form.EmergencyContactName},
			{"Emergency contact phone", &form.EmergencyContactPhone},
		}
		for _, p := range prompts {
			value, err := GetSimpleText(a.reader, p.label, a.out)
			if err != nil {
				return "", err
			}
			*p.dst = value
		}
		password, err := GetPassword(a.out)
		if err != nil {
			return "", err
		}
		form.Password = password

		in, err := form.Input()
		if err != nil {
			return "", err
		}
		if _, err := a.ctrl.Orchestrator().CreateUser(ctx, in); err != nil {
			return "", err
		}
		return "User created successfully!", nil
	})
}

func (a *App) EditUser(ctx context.Context, args []string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		userID, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		current, err := a.findUser(ctx, userID)
		if err != nil {
			return "", err
		}

		var form app.EditUserForm
		prompts := []struct {
			label   string
			current string
			dst     *string
		}{
			{"Full name", current.FullName, &form.FullName},
			{"Email", current.Email, &form.Email},
			{"Role (user/admin)", current.Role, &form.Role},
			{"Department", current.Department, &form.Department},
			{"Position", current.Position, &form.Position},
			{"Phone", current.Phone, &form.Phone},
			{"Emergency contact name", current.EmergencyContactName, &form.EmergencyContactName},
			{"Emergency contact phone", current.EmergencyContactPhone, &form.EmergencyContactPhone},
		}
		for _, p := range prompts {
			value, err := GetOptionalText(a.reader, p.label, p.current, a.out)
			if err != nil {
				return "", err
			}
			*p.dst = value
		}
		activeLabel := "inactive"
		if current.IsActive {
			activeLabel = "active"
		}
		active, err := GetOptionalText(a.reader, "Status (active/inactive)", activeLabel, a.out)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(active) {
		case "":
		case "active":
			v := true
			form.IsActive = &v
		case "inactive":
			v := false
			form.IsActive = &v
		default:
			return "", &domain.ValidationError{Field: "status", Message: "status must be active or inactive"}
		}

		in, err := form.Input()
		if err != nil {
			return "", err
		}
		if _, err := a.ctrl.Orchestrator().UpdateUser(ctx, userID, in); err != nil {
			return "", err
		}
		return "User updated successfully!", nil
	})
}

func (a *App) findUser(ctx context.Context, userID uint) (domain.User, error) {
	users, err := a.ctrl.Store().Users(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			return u, nil
		}
	}
	return domain.User{}, &domain.NotFoundError{Resource: "user", Message: "User not found"}
}

func (a *App) DeleteUser(ctx context.Context, args []string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		userID, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		ok, err := Confirm(a.reader, "Are you sure you want to delete this user?", a.out)
		if err != nil || !ok {
			return "", err
		}
		if err := a.ctrl.Orchestrator().DeleteUser(ctx, userID); err != nil {
			return "", err
		}
		return "User deleted successfully!", nil
	})
}

func (a *App) UploadPicture(ctx context.Context, args []string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		userID, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		if len(args) < 2 {
			return "", &domain.ValidationError{Field: "file"}
		}
		f, err := os.Open(args[1])
		if err != nil {
			return "", fmt.Errorf("open picture: %w", err)
		}
		defer f.Close()

		if _, err := a.ctrl.Orchestrator().UploadPicture(ctx, userID, filepath.Base(args[1]), f); err != nil {
			return "", err
		}
		return "User updated successfully!", nil
	})
}

// UpsertPayroll writes one payroll month. Without an id it uses the open
// modal's user, then falls back to asking for an employee.
func (a *App) UpsertPayroll(ctx context.Context, args []string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		userID := a.ctrl.Modal().UserID()
		if len(args) > 0 {
			id, err := parseID(args, 0)
			if err != nil {
				return "", err
			}
			userID = id
		}
		if userID == 0 {
			if err := a.Employees(ctx); err != nil {
				return "", err
			}
			answer, err := GetSimpleText(a.reader, "Employee id", a.out)
			if err != nil {
				return "", err
			}
			if answer == "" {
				return "", &domain.ValidationError{Field: "employee", Message: "Please select an employee for payroll."}
			}
			if userID, err = parseID([]string{answer}, 0); err != nil {
				return "", err
			}
		}

		var form app.PayrollForm
		prompts := []struct {
			label string
			dst   *string
		}{
			{"Month (YYYY-MM)", &form.Month},
			{"Base salary", &form.BaseSalary},
			{"Allowances", &form.Allowances},
			{"Deductions", &form.Deductions},
			{"Notes", &form.Notes},
		}
		for _, p := range prompts {
			value, err := GetSimpleText(a.reader, p.label, a.out)
			if err != nil {
				return "", err
			}
			*p.dst = value
		}
		in, err := form.Upsert()
		if err != nil {
			return "", err
		}
		if _, err := a.ctrl.Orchestrator().UpsertPayroll(ctx, userID, in); err != nil {
			return "", err
		}
		if a.ctrl.Modal().UserID() == userID {
			if err := a.ctrl.Modal().Table().Render(a.out); err != nil {
				return "", err
			}
		}
		return "Payroll updated successfully!", nil
	})
}

func (a *App) SetStatus(ctx context.Context, args []string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		userID, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		if len(args) < 3 {
			return "", &domain.ValidationError{Field: "status", Message: "usage: status <id> <month> <pending|in_progress|transferred>"}
		}
		if err := a.ctrl.Orchestrator().UpdateStatus(ctx, userID, args[1], args[2]); err != nil {
			return "", err
		}
		return "Payroll status updated", nil
	})
}

func (a *App) DownloadSlip(ctx context.Context, args []string) error {
	return a.run(ctx, func(ctx context.Context) (string, error) {
		userID, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return "", &domain.ValidationError{Field: "month"}
		}
		month := args[1]
		path := fmt.Sprintf("slip-%d-%s.pdf", userID, month)
		if len(args) > 2 {
			path = args[2]
		}

		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("create slip file: %w", err)
		}
		err = a.api.DownloadSlip(ctx, userID, month, f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
			return "", err
		}
		return fmt.Sprintf("Slip saved to %s (%s)", path, a.api.PDFURL(userID, month)), nil
	})
}

func (a *App) Notifications(ctx context.Context) error {
	active := a.ctrl.Notifier().Active()
	if len(active) == 0 {
		fmt.Fprintln(a.out, "No notifications")
		return nil
	}
	for _, n := range active {
		a.printNotification(n)
	}
	return nil
}
