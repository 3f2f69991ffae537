// Package status derives the display status of a user from the most recent
// payroll record.
package status

import "payroll/internal/console/domain"

const (
	ColorSecondary = "secondary"
	ColorWarning   = "warning"
	ColorSuccess   = "success"
)

// Derived is recomputed on every render and never stored.
type Derived struct {
	Code        string
	Label       string
	ColorClass  string
	HasRecord   bool
	LatestMonth string
	// Recognized is false when the latest record carried a status outside the
	// known set. Raw keeps the received value.
	Recognized bool
	Raw        string
}

// Option is one selectable entry of a status control.
type Option struct {
	Code  string
	Label string
}

var options = []Option{
	{Code: domain.StatusPending, Label: "Pending"},
	{Code: domain.StatusInProgress, Label: "In Progress"},
	{Code: domain.StatusTransferred, Label: "Transferred"},
}

// Options lists the statuses an operator can pick, in display order.
func Options() []Option {
	out := make([]Option, len(options))
	copy(out, options)
	return out
}

// Valid reports whether code is a known status.
func Valid(code string) bool {
	for _, o := range options {
		if o.Code == code {
			return true
		}
	}
	return false
}

// Resolve looks only at history[0]; callers pass newest first history.
// Unknown values fall back to pending with Recognized unset.
func Resolve(history []domain.PayrollRecord) Derived {
	if len(history) == 0 {
		return Derived{
			Code:       domain.StatusPending,
			Label:      "Pending",
			ColorClass: ColorSecondary,
			Recognized: true,
		}
	}
	latest := history[0]
	d := Derived{
		HasRecord:   true,
		LatestMonth: latest.Month,
		Raw:         latest.Status,
		Recognized:  true,
	}
	switch latest.Status {
	case domain.StatusInProgress:
		d.Code, d.Label, d.ColorClass = domain.StatusInProgress, "In Progress", ColorWarning
	case domain.StatusTransferred:
		d.Code, d.Label, d.ColorClass = domain.StatusTransferred, "Transferred", ColorSuccess
	case domain.StatusPending:
		d.Code, d.Label, d.ColorClass = domain.StatusPending, "Pending", ColorSecondary
	default:
		d.Code, d.Label, d.ColorClass = domain.StatusPending, "Pending", ColorSecondary
		d.Recognized = false
	}
	return d
}
