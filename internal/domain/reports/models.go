package reports

import "github.com/shopspring/decimal"

// PeriodSummary aggregates one payroll period across payslips and messages.
type PeriodSummary struct {
	Period          string          `json:"period"`
	PaySlips        int             `json:"paySlips"`
	Pending         int             `json:"pending"`
	Paid            int             `json:"paid"`
	GrossTotal      decimal.Decimal `json:"grossTotal"`
	DeductionsTotal decimal.Decimal `json:"deductionsTotal"`
	NetTotal        decimal.Decimal `json:"netTotal"`
	MessagesSent    int             `json:"messagesSent"`
	MessagesFailed  int             `json:"messagesFailed"`
	MessagesPending int             `json:"messagesPending"`
}
