package payroll

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"erp/internal/domain/deductions"
)

func defaultRates() Rates {
	rates := Rates{}
	for _, d := range deductions.Defaults {
		rates[d.Name] = d.Percentage
	}
	return rates
}

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestComputeDefaultRates(t *testing.T) {
	b, err := Compute(dec("500000"), defaultRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"house", b.House, "70000"},
		{"transport", b.Transport, "70000"},
		{"gross", b.Gross, "640000"},
		{"tax", b.EmployeeTax, "150000"},
		{"pension", b.Pension, "30000"},
		{"medical", b.MedicalInsurance, "25000"},
		{"other", b.OtherTax, "25000"},
		{"deductions", b.TotalDeductions, "230000"},
		{"net", b.Net, "410000"},
	}
	for _, c := range checks {
		if !c.got.Equal(dec(c.want)) {
			t.Fatalf("expected %s %s, got %s", c.name, c.want, c.got)
		}
	}
}

func TestComputeIsExactForFractionalRates(t *testing.T) {
	rates := defaultRates()
	rates[deductions.NameMedicalInsurance] = dec("2.5")
	b, err := Compute(dec("1234.56"), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.MedicalInsurance.Equal(dec("30.864")) {
		t.Fatalf("expected medical 30.864, got %s", b.MedicalInsurance)
	}

	allowances := dec("0.28")
	deducted := dec("0.435")
	base := dec("1234.56")
	wantGross := base.Mul(decimal.NewFromInt(1).Add(allowances))
	if !b.Gross.Equal(wantGross) {
		t.Fatalf("expected gross %s, got %s", wantGross, b.Gross)
	}
	wantNet := wantGross.Sub(base.Mul(deducted))
	if !b.Net.Equal(wantNet) {
		t.Fatalf("expected net %s, got %s", wantNet, b.Net)
	}
}

func TestComputeTotalsHoldAtStoredScale(t *testing.T) {
	b, err := Compute(dec("333.3333"), defaultRates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parts := []decimal.Decimal{b.House, b.Transport, b.EmployeeTax, b.Pension, b.MedicalInsurance, b.OtherTax, b.Gross, b.TotalDeductions, b.Net}
	for _, p := range parts {
		if !p.Equal(p.Round(AmountScale)) {
			t.Fatalf("expected at most %d fractional digits, got %s", AmountScale, p)
		}
	}
	if !b.House.Equal(dec("46.6667")) {
		t.Fatalf("expected house 46.6667, got %s", b.House)
	}
	if want := b.Base.Add(b.House).Add(b.Transport); !b.Gross.Equal(want) {
		t.Fatalf("expected gross %s, got %s", want, b.Gross)
	}
	if !b.Gross.Equal(dec("426.6667")) {
		t.Fatalf("expected gross 426.6667, got %s", b.Gross)
	}
	if want := b.EmployeeTax.Add(b.Pension).Add(b.MedicalInsurance).Add(b.OtherTax); !b.TotalDeductions.Equal(want) {
		t.Fatalf("expected deductions %s, got %s", want, b.TotalDeductions)
	}
	if want := b.Gross.Sub(b.TotalDeductions); !b.Net.Equal(want) {
		t.Fatalf("expected net %s, got %s", want, b.Net)
	}
}

func TestComputeNegativeNet(t *testing.T) {
	rates := defaultRates()
	rates[deductions.NameEmployeeTax] = dec("100")
	rates[deductions.NamePension] = dec("50")
	b, err := Compute(dec("1000"), rates)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.Net.IsNegative() {
		t.Fatalf("expected negative net, got %s", b.Net)
	}
}

func TestComputeMissingRates(t *testing.T) {
	rates := defaultRates()
	delete(rates, deductions.NameHousing)
	if _, err := Compute(dec("1000"), rates); !errors.Is(err, ErrDeductionsNotConfigured) {
		t.Fatalf("expected deductions not configured, got %v", err)
	}
}

func TestComputeRejectsNonPositiveBase(t *testing.T) {
	if _, err := Compute(decimal.Zero, defaultRates()); !errors.Is(err, ErrInvalidBaseSalary) {
		t.Fatalf("expected invalid base salary, got %v", err)
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPending, StatusPaid) {
		t.Fatal("expected PENDING to PAID to be allowed")
	}
	if CanTransition(StatusPaid, StatusPending) {
		t.Fatal("expected PAID to PENDING to be rejected")
	}
	if CanTransition(StatusPaid, StatusPaid) {
		t.Fatal("expected PAID to be terminal")
	}
}
