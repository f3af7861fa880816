package payroll

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"erp/internal/domain/deductions"
)

// Rates maps a deduction name to its percentage.
type Rates map[string]decimal.Decimal

// Missing returns the required deduction names absent from r.
func (r Rates) Missing() []string {
	var missing []string
	for _, name := range deductions.RequiredNames {
		if _, ok := r[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// AmountScale is the number of fractional digits stored for every payslip
// amount.
const AmountScale = 4

func (r Rates) fraction(name string) decimal.Decimal {
	return r[name].Shift(-2)
}

func (r Rates) amount(base decimal.Decimal, name string) decimal.Decimal {
	return base.Mul(r.fraction(name)).Round(AmountScale)
}

// Compute derives the payslip amounts for a base salary. Each component is
// rounded to AmountScale before the totals are summed, so gross, total
// deductions and net hold exactly over the stored values.
func Compute(base decimal.Decimal, rates Rates) (Breakdown, error) {
	if missing := rates.Missing(); len(missing) > 0 {
		return Breakdown{}, fmt.Errorf("%w: missing %s", ErrDeductionsNotConfigured, strings.Join(missing, ", "))
	}
	if !base.IsPositive() {
		return Breakdown{}, fmt.Errorf("%w: %s", ErrInvalidBaseSalary, base.String())
	}

	base = base.Round(AmountScale)
	b := Breakdown{
		Base:             base,
		House:            rates.amount(base, deductions.NameHousing),
		Transport:        rates.amount(base, deductions.NameTransport),
		EmployeeTax:      rates.amount(base, deductions.NameEmployeeTax),
		Pension:          rates.amount(base, deductions.NamePension),
		MedicalInsurance: rates.amount(base, deductions.NameMedicalInsurance),
		OtherTax:         rates.amount(base, deductions.NameOther),
	}
	b.Gross = base.Add(b.House).Add(b.Transport)
	b.TotalDeductions = b.EmployeeTax.Add(b.Pension).Add(b.MedicalInsurance).Add(b.OtherTax)
	b.Net = b.Gross.Sub(b.TotalDeductions)
	return b, nil
}

// CanTransition reports whether a payslip may move between two statuses.
// PENDING to PAID is the only edge; PAID is terminal.
func CanTransition(from, to Status) bool {
	return from == StatusPending && to == StatusPaid
}
