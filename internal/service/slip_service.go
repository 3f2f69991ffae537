package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"payroll/internal/entity"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// SlipService renders the monthly payroll slip ("Slip Gaji") as PDF.
type SlipService struct {
	// now stamps the document metadata; fixed in tests.
	now func() time.Time
}

func NewSlipService() *SlipService {
	return &SlipService{now: time.Now}
}

// SlipFilename is the attachment name of a slip.
func SlipFilename(username, month string) string {
	return fmt.Sprintf("slip-gaji-%s-%s.pdf", username, month)
}

var slipPrinter = message.NewPrinter(language.English)

// FormatSlipAmount renders "Rp 5,100,000.00". Only the whole part goes
// through the printer, as an int64, so the cents are never rounded by a
// float conversion.
func FormatSlipAmount(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	whole, cents, _ := strings.Cut(rounded.Abs().StringFixed(2), ".")
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return "Rp " + sign + whole + "." + cents
	}
	return "Rp " + sign + slipPrinter.Sprint(number.Decimal(n)) + "." + cents
}

// Render builds the slip for one user and month.
func (s *SlipService) Render(user *entity.DbUser, record *entity.DbPayrollRecord) ([]byte, error) {
	if user == nil || record == nil {
		return nil, fmt.Errorf("slip requires a user and a record")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Slip Gaji", true)
	pdf.SetCreator("payroll", true)
	pdf.SetCreationDate(s.now())
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Slip Gaji (Payroll Slip)", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	name := strings.TrimSpace(user.FullName)
	if name == "" {
		name = user.Username
	}
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		"Nama: " + name,
		fmt.Sprintf("ID: #%d", user.ID),
		"Department: " + orDash(user.Department),
		"Position: " + orDash(user.Position),
		"Periode: " + record.Month,
	} {
		pdf.CellFormat(0, 6, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetDrawColor(0xdd, 0xdd, 0xdd)
	pdf.SetFillColor(0xf2, 0xf2, 0xf2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(90, 8, "Komponen", "1", 0, "L", true, 0, "")
	pdf.CellFormat(70, 8, "Jumlah", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	rows := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Gaji Pokok", record.BaseSalary},
		{"Tunjangan", record.Allowances},
		{"Potongan", record.Deductions},
		{"Total Diterima", record.NetSalary},
	}
	for _, row := range rows {
		pdf.CellFormat(90, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(70, 8, FormatSlipAmount(row.amount), "1", 1, "R", false, 0, "")
	}

	if notes := strings.TrimSpace(record.Notes); notes != "" {
		pdf.Ln(4)
		pdf.MultiCell(0, 6, tr("Catatan: "+notes), "", "L", false)
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Dokumen ini dihasilkan oleh sistem.", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render slip: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
