package deductions

import "github.com/shopspring/decimal"

const (
	NameEmployeeTax      = "Employee Tax"
	NamePension          = "Pension"
	NameMedicalInsurance = "Medical Insurance"
	NameOther            = "Other"
	NameHousing          = "Housing"
	NameTransport        = "Transport"
)

// RequiredNames lists the rules a payroll run cannot start without.
var RequiredNames = []string{
	NameEmployeeTax,
	NamePension,
	NameMedicalInsurance,
	NameOther,
	NameHousing,
	NameTransport,
}

var Defaults = []Input{
	{Code: "EMP_TAX", Name: NameEmployeeTax, Percentage: decimal.NewFromInt(30)},
	{Code: "PENSION", Name: NamePension, Percentage: decimal.NewFromInt(6)},
	{Code: "MED_INS", Name: NameMedicalInsurance, Percentage: decimal.NewFromInt(5)},
	{Code: "OTHER", Name: NameOther, Percentage: decimal.NewFromInt(5)},
	{Code: "HOUSING", Name: NameHousing, Percentage: decimal.NewFromInt(14)},
	{Code: "TRANSPORT", Name: NameTransport, Percentage: decimal.NewFromInt(14)},
}
