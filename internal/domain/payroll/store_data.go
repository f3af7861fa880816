package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"erp/internal/platform/db"
)

func (s *Store) ListActiveEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT id, code, first_name, last_name, email, status
    FROM employees
    WHERE status = $1
    ORDER BY code, id
  `, EmployeeStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &e.Status); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var e Employee
	err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT id, code, first_name, last_name, email, status
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &e.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, err
}

// ListActiveEmployments returns the employee's active employments, oldest
// first.
func (s *Store) ListActiveEmployments(ctx context.Context, employeeID string) ([]Employment, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT id, code, employee_id, department, position, base_salary::text,
           joining_date, status, created_at
    FROM employments
    WHERE employee_id = $1 AND status = $2
    ORDER BY created_at, id
  `, employeeID, EmploymentStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employment
	for rows.Next() {
		var e Employment
		var base string
		if err := rows.Scan(&e.ID, &e.Code, &e.EmployeeID, &e.Department, &e.Position, &base, &e.JoiningDate, &e.Status, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.BaseSalary, err = decimal.NewFromString(base)
		if err != nil {
			return nil, fmt.Errorf("employment %s: parse base salary %q: %w", e.ID, base, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) PaySlipExists(ctx context.Context, employeeID string, period Period) (bool, error) {
	var exists bool
	err := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT EXISTS (
      SELECT 1 FROM pay_slips WHERE employee_id = $1 AND year_month = $2
    )
  `, employeeID, period.String()).Scan(&exists)
	return exists, err
}

const paySlipColumns = `id, employee_id, year_month,
           house_amount::text, transport_amount::text, employee_tax_amount::text,
           pension_amount::text, medical_insurance_amount::text, other_tax_amount::text,
           gross_salary::text, net_salary::text, status, created_at, updated_at`

// InsertPaySlip returns ErrAlreadyProcessed when the (employee, period) pair
// already holds a payslip.
func (s *Store) InsertPaySlip(ctx context.Context, slip PaySlip) (PaySlip, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    INSERT INTO pay_slips (
      employee_id, year_month, house_amount, transport_amount, employee_tax_amount,
      pension_amount, medical_insurance_amount, other_tax_amount, gross_salary,
      net_salary, status
    )
    VALUES ($1,$2,$3::numeric,$4::numeric,$5::numeric,$6::numeric,$7::numeric,$8::numeric,$9::numeric,$10::numeric,$11)
    RETURNING `+paySlipColumns,
		slip.EmployeeID, slip.Period,
		slip.HouseAmount.String(), slip.TransportAmount.String(), slip.EmployeeTaxAmount.String(),
		slip.PensionAmount.String(), slip.MedicalInsuranceAmount.String(), slip.OtherTaxAmount.String(),
		slip.GrossSalary.String(), slip.NetSalary.String(), string(slip.Status))
	created, err := scanPaySlip(row)
	if err != nil {
		if _, ok := db.ConstraintViolated(err, db.UniqueViolation); ok {
			return PaySlip{}, ErrAlreadyProcessed
		}
		return PaySlip{}, err
	}
	return created, nil
}

// ApprovePeriod moves every pending payslip of the period to PAID in one
// statement.
func (s *Store) ApprovePeriod(ctx context.Context, period Period) ([]PaySlip, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    UPDATE pay_slips
    SET status = $1, updated_at = now()
    WHERE year_month = $2 AND status = $3
    RETURNING `+paySlipColumns,
		string(StatusPaid), period.String(), string(StatusPending))
	if err != nil {
		return nil, err
	}
	return collectPaySlips(rows)
}

func (s *Store) ListByPeriod(ctx context.Context, period Period) ([]PaySlip, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT `+paySlipColumns+`
    FROM pay_slips
    WHERE year_month = $1
    ORDER BY created_at, id
  `, period.String())
	if err != nil {
		return nil, err
	}
	return collectPaySlips(rows)
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]PaySlip, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT `+paySlipColumns+`
    FROM pay_slips
    WHERE employee_id = $1
    ORDER BY year_month DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	return collectPaySlips(rows)
}

func (s *Store) Get(ctx context.Context, id string) (PaySlip, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT `+paySlipColumns+`
    FROM pay_slips
    WHERE id = $1
  `, id)
	slip, err := scanPaySlip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaySlip{}, ErrPaySlipNotFound
	}
	return slip, err
}

func (s *Store) GetForEmployeePeriod(ctx context.Context, employeeID string, period Period) (PaySlip, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    SELECT `+paySlipColumns+`
    FROM pay_slips
    WHERE employee_id = $1 AND year_month = $2
  `, employeeID, period.String())
	slip, err := scanPaySlip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PaySlip{}, ErrPaySlipNotFound
	}
	return slip, err
}

func collectPaySlips(rows pgx.Rows) ([]PaySlip, error) {
	defer rows.Close()
	var out []PaySlip
	for rows.Next() {
		slip, err := scanPaySlip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, slip)
	}
	return out, rows.Err()
}

func scanPaySlip(row pgx.Row) (PaySlip, error) {
	var slip PaySlip
	var status string
	var amounts [8]string
	if err := row.Scan(&slip.ID, &slip.EmployeeID, &slip.Period,
		&amounts[0], &amounts[1], &amounts[2], &amounts[3],
		&amounts[4], &amounts[5], &amounts[6], &amounts[7],
		&status, &slip.CreatedAt, &slip.UpdatedAt); err != nil {
		return PaySlip{}, err
	}
	targets := []*decimal.Decimal{
		&slip.HouseAmount, &slip.TransportAmount, &slip.EmployeeTaxAmount,
		&slip.PensionAmount, &slip.MedicalInsuranceAmount, &slip.OtherTaxAmount,
		&slip.GrossSalary, &slip.NetSalary,
	}
	for i, target := range targets {
		value, err := decimal.NewFromString(amounts[i])
		if err != nil {
			return PaySlip{}, fmt.Errorf("payslip %s: parse amount %q: %w", slip.ID, amounts[i], err)
		}
		*target = value
	}
	slip.Status = Status(status)
	return slip, nil
}
