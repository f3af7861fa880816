package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

type Employment struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	EmployeeID  string          `json:"employeeId"`
	Department  string          `json:"department"`
	Position    string          `json:"position"`
	BaseSalary  decimal.Decimal `json:"baseSalary"`
	JoiningDate time.Time       `json:"joiningDate"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type PaySlip struct {
	ID                     string          `json:"id"`
	EmployeeID             string          `json:"employeeId"`
	Period                 string          `json:"period"`
	HouseAmount            decimal.Decimal `json:"houseAmount"`
	TransportAmount        decimal.Decimal `json:"transportAmount"`
	EmployeeTaxAmount      decimal.Decimal `json:"employeeTaxAmount"`
	PensionAmount          decimal.Decimal `json:"pensionAmount"`
	MedicalInsuranceAmount decimal.Decimal `json:"medicalInsuranceAmount"`
	OtherTaxAmount         decimal.Decimal `json:"otherTaxAmount"`
	GrossSalary            decimal.Decimal `json:"grossSalary"`
	NetSalary              decimal.Decimal `json:"netSalary"`
	Status                 Status          `json:"status"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

// Breakdown holds every amount derived from one base salary.
type Breakdown struct {
	Base             decimal.Decimal `json:"base"`
	House            decimal.Decimal `json:"house"`
	Transport        decimal.Decimal `json:"transport"`
	EmployeeTax      decimal.Decimal `json:"employeeTax"`
	Pension          decimal.Decimal `json:"pension"`
	MedicalInsurance decimal.Decimal `json:"medicalInsurance"`
	OtherTax         decimal.Decimal `json:"otherTax"`
	Gross            decimal.Decimal `json:"gross"`
	TotalDeductions  decimal.Decimal `json:"totalDeductions"`
	Net              decimal.Decimal `json:"net"`
}

func (b Breakdown) PaySlip(employeeID string, period Period) PaySlip {
	return PaySlip{
		EmployeeID:             employeeID,
		Period:                 period.String(),
		HouseAmount:            b.House,
		TransportAmount:        b.Transport,
		EmployeeTaxAmount:      b.EmployeeTax,
		PensionAmount:          b.Pension,
		MedicalInsuranceAmount: b.MedicalInsurance,
		OtherTaxAmount:         b.OtherTax,
		GrossSalary:            b.Gross,
		NetSalary:              b.Net,
		Status:                 StatusPending,
	}
}

type Skip struct {
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
}

type Failure struct {
	EmployeeID string `json:"employeeId"`
	Error      string `json:"error"`
}

// RunReport is the outcome of one Process call. Created keeps the order in
// which active employees were loaded.
type RunReport struct {
	Period  string    `json:"period"`
	Created []PaySlip `json:"created"`
	Skipped []Skip    `json:"skipped"`
	Failed  []Failure `json:"failed"`
}
