package app

import (
	"errors"
	"strings"

	"payroll/internal/console/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// UserForm holds the raw fields of the add and edit user forms.
type UserForm struct {
	Username              string `validate:"required,max=150"`
	Email                 string `validate:"required,email"`
	Password              string `validate:"required,min=6"`
	FullName              string `validate:"required,max=255"`
	Role                  string `validate:"omitempty,oneof=admin user"`
	Department            string
	Position              string
	Phone                 string
	EmergencyContactName  string
	EmergencyContactPhone string
}

// EditUserForm is the edit variant: every field is optional.
type EditUserForm struct {
	Email                 string `validate:"omitempty,email"`
	Password              string `validate:"omitempty,min=6"`
	FullName              string `validate:"omitempty,max=255"`
	Role                  string `validate:"omitempty,oneof=admin user"`
	IsActive              *bool
	Department            string
	Position              string
	Phone                 string
	EmergencyContactName  string
	EmergencyContactPhone string
}

// PayrollForm holds the raw payroll modal fields. Amounts are typed text.
type PayrollForm struct {
	Month      string `validate:"required,datetime=2006-01"`
	BaseSalary string `validate:"required"`
	Allowances string
	Deductions string
	Notes      string
	Status     string `validate:"omitempty,oneof=pending in_progress transferred"`
}

func (f UserForm) Input() (domain.UserInput, error) {
	f = trimUserForm(f)
	if err := validateForm(f); err != nil {
		return domain.UserInput{}, err
	}
	return domain.UserInput{
		Username:              f.Username,
		Email:                 strings.ToLower(f.Email),
		Password:              f.Password,
		FullName:              f.FullName,
		Role:                  f.Role,
		Department:            f.Department,
		Position:              f.Position,
		Phone:                 f.Phone,
		EmergencyContactName:  f.EmergencyContactName,
		EmergencyContactPhone: f.EmergencyContactPhone,
	}, nil
}

func (f EditUserForm) Input() (domain.UserInput, error) {
	f.Email = strings.TrimSpace(f.Email)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Role = strings.TrimSpace(f.Role)
	if err := validateForm(f); err != nil {
		return domain.UserInput{}, err
	}
	return domain.UserInput{
		Email:                 strings.ToLower(f.Email),
		Password:              f.Password,
		FullName:              f.FullName,
		Role:                  f.Role,
		IsActive:              f.IsActive,
		Department:            strings.TrimSpace(f.Department),
		Position:              strings.TrimSpace(f.Position),
		Phone:                 strings.TrimSpace(f.Phone),
		EmergencyContactName:  strings.TrimSpace(f.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(f.EmergencyContactPhone),
	}, nil
}

// Upsert validates the form and parses its amounts. Blank allowances and
// deductions are zero.
func (f PayrollForm) Upsert() (domain.PayrollUpsert, error) {
	f.Month = strings.TrimSpace(f.Month)
	f.BaseSalary = strings.TrimSpace(f.BaseSalary)
	f.Status = strings.TrimSpace(f.Status)
	if err := validateForm(f); err != nil {
		return domain.PayrollUpsert{}, err
	}

	out := domain.PayrollUpsert{Month: f.Month, Notes: f.Notes, Status: f.Status}
	var err error
	if out.BaseSalary, err = parseAmount("base_salary", f.BaseSalary); err != nil {
		return domain.PayrollUpsert{}, err
	}
	if out.Allowances, err = parseAmount("allowances", f.Allowances); err != nil {
		return domain.PayrollUpsert{}, err
	}
	if out.Deductions, err = parseAmount("deductions", f.Deductions); err != nil {
		return domain.PayrollUpsert{}, err
	}
	return out, nil
}

// parseAmount accepts "5000000", "5,000,000" and "5 000 000".
func parseAmount(field, raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "_", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &domain.ValidationError{Field: field, Message: field + " must be a number"}
	}
	if amount.IsNegative() {
		return decimal.Zero, &domain.ValidationError{Field: field, Message: field + " must not be negative"}
	}
	return amount, nil
}

func trimUserForm(f UserForm) UserForm {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Role = strings.TrimSpace(f.Role)
	f.Department = strings.TrimSpace(f.Department)
	f.Position = strings.TrimSpace(f.Position)
	f.Phone = strings.TrimSpace(f.Phone)
	f.EmergencyContactName = strings.TrimSpace(f.EmergencyContactName)
	f.EmergencyContactPhone = strings.TrimSpace(f.EmergencyContactPhone)
	return f
}

// validateForm reports the first failing field as *domain.ValidationError.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &domain.ValidationError{Field: "form", Message: err.Error()}
	}
	fe := fieldErrs[0]
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		if field == "month" {
			return &domain.ValidationError{Field: field, Message: "month is required (YYYY-MM)"}
		}
		return &domain.ValidationError{Field: field}
	case "datetime":
		return &domain.ValidationError{Field: field, Message: field + " must use the YYYY-MM format"}
	case "email":
		return &domain.ValidationError{Field: field, Message: "invalid email address"}
	case "min":
		return &domain.ValidationError{Field: field, Message: field + " must be at least " + fe.Param() + " characters"}
	case "max":
		return &domain.ValidationError{Field: field, Message: field + " must be at most " + fe.Param() + " characters"}
	case "oneof":
		return &domain.ValidationError{Field: field, Message: field + " must be one of: " + fe.Param()}
	default:
		return &domain.ValidationError{Field: field, Message: field + " is invalid"}
	}
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
