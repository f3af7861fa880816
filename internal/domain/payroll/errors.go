package payroll

import "errors"

var (
	ErrDeductionsNotConfigured = errors.New("payroll deductions are not configured")
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrInvalidBaseSalary       = errors.New("base salary must be positive")
	ErrPaySlipNotFound         = errors.New("payslip not found")
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrAlreadyProcessed        = errors.New("payslip already exists for employee and period")
	ErrMissingEmployee         = errors.New("caller is not linked to an employee")
)
