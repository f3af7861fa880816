package payroll

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"erp/internal/domain/deductions"
)

type fakeStore struct {
	mu          sync.Mutex
	employees   []Employee
	employments map[string][]Employment
	slips       []PaySlip
	insertErr   map[string]error
	nextID      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{employments: map[string][]Employment{}, insertErr: map[string]error{}}
}

func (f *fakeStore) addEmployee(id, base string) {
	f.employees = append(f.employees, Employee{ID: id, Code: "EMP-" + id, FirstName: "First " + id, LastName: "Last", Email: id + "@example.com", Status: EmployeeStatusActive})
	if base != "" {
		f.employments[id] = append(f.employments[id], Employment{ID: "job-" + id, EmployeeID: id, BaseSalary: decimal.RequireFromString(base), Status: EmploymentStatusActive})
	}
}

func (f *fakeStore) ListActiveEmployees(ctx context.Context) ([]Employee, error) {
	return f.employees, nil
}

func (f *fakeStore) ListActiveEmployments(ctx context.Context, employeeID string) ([]Employment, error) {
	return f.employments[employeeID], nil
}

func (f *fakeStore) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	for _, e := range f.employees {
		if e.ID == employeeID {
			return e, nil
		}
	}
	return Employee{}, ErrEmployeeNotFound
}

func (f *fakeStore) PaySlipExists(ctx context.Context, employeeID string, period Period) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.slips {
		if s.EmployeeID == employeeID && s.Period == period.String() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertPaySlip(ctx context.Context, slip PaySlip) (PaySlip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insertErr[slip.EmployeeID]; err != nil {
		return PaySlip{}, err
	}
	for _, s := range f.slips {
		if s.EmployeeID == slip.EmployeeID && s.Period == slip.Period {
			return PaySlip{}, ErrAlreadyProcessed
		}
	}
	f.nextID++
	slip.ID = fmt.Sprintf("slip-%d", f.nextID)
	slip.CreatedAt = time.Now()
	f.slips = append(f.slips, slip)
	return slip, nil
}

func (f *fakeStore) ApprovePeriod(ctx context.Context, period Period) ([]PaySlip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []PaySlip
	for i, s := range f.slips {
		if s.Period == period.String() && s.Status == StatusPending {
			f.slips[i].Status = StatusPaid
			out = append(out, f.slips[i])
		}
	}
	return out, nil
}

func (f *fakeStore) ListByPeriod(ctx context.Context, period Period) ([]PaySlip, error) {
	var out []PaySlip
	for _, s := range f.slips {
		if s.Period == period.String() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByEmployee(ctx context.Context, employeeID string) ([]PaySlip, error) {
	var out []PaySlip
	for _, s := range f.slips {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Get(ctx context.Context, id string) (PaySlip, error) {
	for _, s := range f.slips {
		if s.ID == id {
			return s, nil
		}
	}
	return PaySlip{}, ErrPaySlipNotFound
}

func (f *fakeStore) GetForEmployeePeriod(ctx context.Context, employeeID string, period Period) (PaySlip, error) {
	for _, s := range f.slips {
		if s.EmployeeID == employeeID && s.Period == period.String() {
			return s, nil
		}
	}
	return PaySlip{}, ErrPaySlipNotFound
}

type staticRates map[string]decimal.Decimal

func (r staticRates) Rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	return r, nil
}

type countingTx struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTx) Within(ctx context.Context, fn func(context.Context) error) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return fn(ctx)
}

var june2024 = Period{Year: 2024, Month: time.June}

func TestProcessCreatesPendingPaySlips(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "500000")
	store.addEmployee("b", "100000")
	tx := &countingTx{}
	svc := NewService(store, staticRates(defaultRates()), tx, 2)

	report, err := svc.Process(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Created) != 2 {
		t.Fatalf("expected 2 payslips, got %d", len(report.Created))
	}
	if report.Created[0].EmployeeID != "a" || report.Created[1].EmployeeID != "b" {
		t.Fatalf("expected load order preserved, got %s then %s", report.Created[0].EmployeeID, report.Created[1].EmployeeID)
	}
	first := report.Created[0]
	if first.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", first.Status)
	}
	if !first.NetSalary.Equal(decimal.NewFromInt(410000)) {
		t.Fatalf("expected net 410000, got %s", first.NetSalary)
	}
	if first.Period != "2024-06" {
		t.Fatalf("expected period 2024-06, got %s", first.Period)
	}
	if tx.calls != 2 {
		t.Fatalf("expected one transaction per employee, got %d", tx.calls)
	}
}

func TestProcessTwiceCreatesNothingNew(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "500000")
	svc := NewService(store, staticRates(defaultRates()), nil, 1)

	if _, err := svc.Process(context.Background(), june2024); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, err := svc.Process(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Created) != 0 {
		t.Fatalf("expected no new payslips, got %d", len(report.Created))
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != ReasonAlreadyProcessed {
		t.Fatalf("expected already processed skip, got %+v", report.Skipped)
	}
	if len(store.slips) != 1 {
		t.Fatalf("expected 1 stored payslip, got %d", len(store.slips))
	}
}

func TestProcessReportsConcurrentDuplicateAsSkip(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "500000")
	store.insertErr["a"] = ErrAlreadyProcessed
	svc := NewService(store, staticRates(defaultRates()), nil, 1)

	report, err := svc.Process(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != ReasonAlreadyProcessed {
		t.Fatalf("expected already processed skip, got %+v", report.Skipped)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("expected no failures, got %+v", report.Failed)
	}
}

func TestProcessSkipsAndIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("no-job", "")
	store.addEmployee("broken", "1000")
	store.addEmployee("ok", "1000")
	store.insertErr["broken"] = errors.New("connection reset")
	svc := NewService(store, staticRates(defaultRates()), nil, 3)

	report, err := svc.Process(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Created) != 1 || report.Created[0].EmployeeID != "ok" {
		t.Fatalf("expected only ok to be created, got %+v", report.Created)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != ReasonNoActiveEmployment {
		t.Fatalf("expected no active employment skip, got %+v", report.Skipped)
	}
	if len(report.Failed) != 1 || report.Failed[0].EmployeeID != "broken" {
		t.Fatalf("expected broken to fail, got %+v", report.Failed)
	}
}

func TestProcessSkipsNegativeNet(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "1000")
	rates := defaultRates()
	rates[deductions.NameEmployeeTax] = decimal.NewFromInt(100)
	rates[deductions.NamePension] = decimal.NewFromInt(50)
	svc := NewService(store, staticRates(rates), nil, 1)

	report, err := svc.Process(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != ReasonNegativeNet {
		t.Fatalf("expected negative net skip, got %+v", report.Skipped)
	}
	if len(store.slips) != 0 {
		t.Fatalf("expected no payslip stored, got %d", len(store.slips))
	}
}

func TestProcessUsesOldestEmployment(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "1000")
	store.employments["a"] = append(store.employments["a"], Employment{ID: "job-newer", EmployeeID: "a", BaseSalary: decimal.NewFromInt(9000), Status: EmploymentStatusActive})
	svc := NewService(store, staticRates(defaultRates()), nil, 1)

	report, err := svc.Process(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Created) != 1 {
		t.Fatalf("expected 1 payslip, got %d", len(report.Created))
	}
	if !report.Created[0].GrossSalary.Equal(decimal.NewFromInt(1280)) {
		t.Fatalf("expected gross from the oldest employment, got %s", report.Created[0].GrossSalary)
	}
}

func TestProcessFailsWithoutDeductions(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "1000")
	rates := defaultRates()
	delete(rates, deductions.NameOther)
	svc := NewService(store, staticRates(rates), nil, 1)

	_, err := svc.Process(context.Background(), june2024)
	if !errors.Is(err, ErrDeductionsNotConfigured) {
		t.Fatalf("expected deductions not configured, got %v", err)
	}
	if len(store.slips) != 0 {
		t.Fatalf("expected no mutation, got %d payslips", len(store.slips))
	}
}

func TestApproveOnlyTouchesPendingOfPeriod(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "1000")
	store.addEmployee("b", "1000")
	svc := NewService(store, staticRates(defaultRates()), nil, 2)
	may := Period{Year: 2024, Month: time.May}
	if _, err := svc.Process(context.Background(), may); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Process(context.Background(), june2024); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	approved, err := svc.Approve(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(approved) != 2 {
		t.Fatalf("expected 2 approved, got %d", len(approved))
	}
	mayslips, _ := svc.ListByPeriod(context.Background(), may)
	for _, s := range mayslips {
		if s.Status != StatusPending {
			t.Fatalf("expected other period untouched, got %s", s.Status)
		}
	}

	again, err := svc.Approve(context.Background(), june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing left to approve, got %d", len(again))
	}
}

func TestOwnPaySlipRequiresCaller(t *testing.T) {
	svc := NewService(newFakeStore(), staticRates(defaultRates()), nil, 1)
	if _, err := svc.OwnPaySlips(context.Background(), ""); !errors.Is(err, ErrMissingEmployee) {
		t.Fatalf("expected missing employee, got %v", err)
	}
	if _, err := svc.OwnPaySlip(context.Background(), "a", june2024); !errors.Is(err, ErrPaySlipNotFound) {
		t.Fatalf("expected payslip not found, got %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	store := newFakeStore()
	store.addEmployee("a", "500000")
	svc := NewService(store, staticRates(defaultRates()), nil, 1)
	if _, err := svc.Process(context.Background(), june2024); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := svc.RenderPDF(context.Background(), "a", june2024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF output, got %q", data[:min(8, len(data))])
	}
}
