package reports

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"erp/internal/domain/payroll"
	"erp/internal/platform/db"
)

type Store struct {
	DB db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{DB: q}
}

func (s *Store) PaySlipTotals(ctx context.Context, period payroll.Period) (PeriodSummary, error) {
	var out PeriodSummary
	var gross, deducted, net string
	if err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT
      COUNT(1),
      COUNT(1) FILTER (WHERE status = $2),
      COUNT(1) FILTER (WHERE status = $3),
      COALESCE(SUM(gross_salary), 0)::text,
      COALESCE(SUM(employee_tax_amount + pension_amount + medical_insurance_amount + other_tax_amount), 0)::text,
      COALESCE(SUM(net_salary), 0)::text
    FROM pay_slips
    WHERE year_month = $1
  `, period.String(), string(payroll.StatusPending), string(payroll.StatusPaid)).
		Scan(&out.PaySlips, &out.Pending, &out.Paid, &gross, &deducted, &net); err != nil {
		return PeriodSummary{}, err
	}

	var err error
	if out.GrossTotal, err = parseAmount("gross", gross); err != nil {
		return PeriodSummary{}, err
	}
	if out.DeductionsTotal, err = parseAmount("deductions", deducted); err != nil {
		return PeriodSummary{}, err
	}
	if out.NetTotal, err = parseAmount("net", net); err != nil {
		return PeriodSummary{}, err
	}
	return out, nil
}

// MessageCounts returns sent, failed and pending message counts.
func (s *Store) MessageCounts(ctx context.Context, period payroll.Period) (int, int, int, error) {
	var sent, failed, pending int
	err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT
      COUNT(1) FILTER (WHERE status = 'SENT'),
      COUNT(1) FILTER (WHERE status = 'FAILED'),
      COUNT(1) FILTER (WHERE status = 'PENDING')
    FROM messages
    WHERE year_month = $1
  `, period.String()).Scan(&sent, &failed, &pending)
	return sent, failed, pending, err
}

func parseAmount(label, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reports: parse %s total %q: %w", label, raw, err)
	}
	return d, nil
}
