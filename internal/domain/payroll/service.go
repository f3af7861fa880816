package payroll

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"erp/internal/requestctx"
)

// RateSource yields the deduction name to percentage mapping.
type RateSource interface {
	Rates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// Transactor runs fn inside a transaction that stores join through the
// context.
type Transactor interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

type Service struct {
	store   StoreAPI
	rates   RateSource
	tx      Transactor
	workers int
}

func NewService(store StoreAPI, rates RateSource, tx Transactor, workers int) *Service {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{store: store, rates: rates, tx: tx, workers: workers}
}

type outcome struct {
	slip    *PaySlip
	skip    *Skip
	failure *Failure
}

// Process creates a PENDING payslip for every active employee that has none
// for the period. Each employee is handled in its own transaction; a failure
// for one employee is reported and never aborts the others.
func (s *Service) Process(ctx context.Context, period Period) (RunReport, error) {
	report := RunReport{Period: period.String()}
	if err := period.Validate(); err != nil {
		return report, err
	}

	employees, err := s.store.ListActiveEmployees(ctx)
	if err != nil {
		return report, fmt.Errorf("list active employees: %w", err)
	}
	raw, err := s.rates.Rates(ctx)
	if err != nil {
		return report, fmt.Errorf("load deduction rates: %w", err)
	}
	rates := Rates(raw)
	if missing := rates.Missing(); len(missing) > 0 {
		return report, fmt.Errorf("%w: missing %s", ErrDeductionsNotConfigured, strings.Join(missing, ", "))
	}

	outcomes := make([]outcome, len(employees))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, employee := range employees {
		g.Go(func() error {
			outcomes[i] = s.processEmployee(ctx, employee, period, rates)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		switch {
		case o.slip != nil:
			report.Created = append(report.Created, *o.slip)
		case o.skip != nil:
			report.Skipped = append(report.Skipped, *o.skip)
		case o.failure != nil:
			report.Failed = append(report.Failed, *o.failure)
		}
	}
	requestctx.Logger(ctx).Info("payroll processed", "period", report.Period,
		"created", len(report.Created), "skipped", len(report.Skipped), "failed", len(report.Failed))
	return report, nil
}

func (s *Service) processEmployee(ctx context.Context, employee Employee, period Period, rates Rates) outcome {
	fail := func(err error) outcome {
		requestctx.Logger(ctx).Warn("payroll employee failed", "employeeId", employee.ID, "period", period.String(), "err", err)
		return outcome{failure: &Failure{EmployeeID: employee.ID, Error: err.Error()}}
	}
	skip := func(reason string) outcome {
		return outcome{skip: &Skip{EmployeeID: employee.ID, Reason: reason}}
	}

	exists, err := s.store.PaySlipExists(ctx, employee.ID, period)
	if err != nil {
		return fail(err)
	}
	if exists {
		return skip(ReasonAlreadyProcessed)
	}

	employments, err := s.store.ListActiveEmployments(ctx, employee.ID)
	if err != nil {
		return fail(err)
	}
	if len(employments) == 0 {
		requestctx.Logger(ctx).Warn("payroll skipped employee without active employment", "employeeId", employee.ID, "period", period.String())
		return skip(ReasonNoActiveEmployment)
	}
	employment := employments[0]
	if len(employments) > 1 {
		requestctx.Logger(ctx).Warn("employee has several active employments, using the oldest",
			"employeeId", employee.ID, "employmentId", employment.ID, "count", len(employments))
	}

	breakdown, err := Compute(employment.BaseSalary, rates)
	if err != nil {
		return fail(err)
	}
	if breakdown.Net.IsNegative() {
		requestctx.Logger(ctx).Warn("payroll skipped employee with negative net", "employeeId", employee.ID,
			"period", period.String(), "net", breakdown.Net.String())
		return skip(ReasonNegativeNet)
	}

	var created PaySlip
	err = s.within(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.store.InsertPaySlip(ctx, breakdown.PaySlip(employee.ID, period))
		return err
	})
	if errors.Is(err, ErrAlreadyProcessed) {
		return skip(ReasonAlreadyProcessed)
	}
	if err != nil {
		return fail(err)
	}
	return outcome{slip: &created}
}

func (s *Service) within(ctx context.Context, fn func(context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.Within(ctx, fn)
}

// Approve marks every PENDING payslip of the period as PAID and returns the
// payslips it changed. A period with nothing pending yields an empty list.
func (s *Service) Approve(ctx context.Context, period Period) ([]PaySlip, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	approved, err := s.store.ApprovePeriod(ctx, period)
	if err != nil {
		return nil, err
	}
	requestctx.Logger(ctx).Info("payroll approved", "period", period.String(), "count", len(approved))
	return approved, nil
}

func (s *Service) ListByPeriod(ctx context.Context, period Period) ([]PaySlip, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListByPeriod(ctx, period)
}

func (s *Service) Get(ctx context.Context, id string) (PaySlip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) OwnPaySlips(ctx context.Context, callerEmployeeID string) ([]PaySlip, error) {
	if callerEmployeeID == "" {
		return nil, ErrMissingEmployee
	}
	return s.store.ListByEmployee(ctx, callerEmployeeID)
}

func (s *Service) OwnPaySlip(ctx context.Context, callerEmployeeID string, period Period) (PaySlip, error) {
	if callerEmployeeID == "" {
		return PaySlip{}, ErrMissingEmployee
	}
	if err := period.Validate(); err != nil {
		return PaySlip{}, err
	}
	return s.store.GetForEmployeePeriod(ctx, callerEmployeeID, period)
}
