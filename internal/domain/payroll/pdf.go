package payroll

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// RenderPDF renders the caller's payslip for the period.
func (s *Service) RenderPDF(ctx context.Context, callerEmployeeID string, period Period) ([]byte, error) {
	slip, err := s.OwnPaySlip(ctx, callerEmployeeID, period)
	if err != nil {
		return nil, err
	}
	employee, err := s.store.GetEmployee(ctx, callerEmployeeID)
	if err != nil {
		return nil, err
	}
	return renderPaySlip(employee, period, slip)
}

func renderPaySlip(employee Employee, period Period, slip PaySlip) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s %s (%s)", employee.FirstName, employee.LastName, employee.Code))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", employee.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", period.Label()))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", slip.Status))
	pdf.Ln(10)

	lines := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Housing", slip.HouseAmount},
		{"Transport", slip.TransportAmount},
		{"Gross salary", slip.GrossSalary},
		{"Employee tax", slip.EmployeeTaxAmount},
		{"Pension", slip.PensionAmount},
		{"Medical insurance", slip.MedicalInsuranceAmount},
		{"Other", slip.OtherTaxAmount},
	}
	for _, line := range lines {
		pdf.CellFormat(80, 8, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, line.amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(80, 8, "Net salary", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, slip.NetSalary.StringFixed(2), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
