package payroll

import "context"

type StoreAPI interface {
	ListActiveEmployees(ctx context.Context) ([]Employee, error)
	ListActiveEmployments(ctx context.Context, employeeID string) ([]Employment, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	PaySlipExists(ctx context.Context, employeeID string, period Period) (bool, error)
	InsertPaySlip(ctx context.Context, slip PaySlip) (PaySlip, error)
	ApprovePeriod(ctx context.Context, period Period) ([]PaySlip, error)
	ListByPeriod(ctx context.Context, period Period) ([]PaySlip, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]PaySlip, error)
	Get(ctx context.Context, id string) (PaySlip, error)
	GetForEmployeePeriod(ctx context.Context, employeeID string, period Period) (PaySlip, error)
}
