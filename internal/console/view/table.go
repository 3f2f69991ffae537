// Package view turns cached users into table descriptors. Every function is
// pure: the same input always yields the same rows.
package view

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"payroll/internal/console/status"
)

const (
	NoUsersPlaceholder   = "No users found"
	NoRecordsPlaceholder = "No payroll records"
)

// StatusControl describes the status selector of a payroll row. It is
// disabled when the user has no record to update.
type StatusControl struct {
	UserID   uint
	Month    string
	Selected string
	Disabled bool
	Options  []status.Option
}

// Row is one table line. A placeholder row carries only Message.
type Row struct {
	UserID      uint
	Cells       []string
	Status      *status.Derived
	Control     *StatusControl
	Placeholder bool
	Message     string
}

// Table is a rendered view.
type Table struct {
	Title   string
	Columns []string
	Rows    []Row
}

func placeholder(message string) []Row {
	return []Row{{Placeholder: true, Message: message}}
}

// Render writes an aligned plain text rendering of t.
func (t Table) Render(w io.Writer) error {
	if t.Title != "" {
		if _, err := fmt.Fprintf(w, "== %s ==\n", t.Title); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		if row.Placeholder {
			fmt.Fprintln(tw, row.Message)
			continue
		}
		cells := row.Cells
		if row.Control != nil {
			cells = append(append([]string{}, cells...), renderControl(row.Control))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// String is Render into a string.
func (t Table) String() string {
	var buf bytes.Buffer
	_ = t.Render(&buf)
	return buf.String()
}

func renderControl(c *StatusControl) string {
	if c.Disabled {
		return "(disabled)"
	}
	parts := make([]string, 0, len(c.Options))
	for _, o := range c.Options {
		if o.Code == c.Selected {
			parts = append(parts, "["+o.Code+"]")
			continue
		}
		parts = append(parts, o.Code)
	}
	return strings.Join(parts, " ")
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
