package notifications

import (
	"time"

	"github.com/shopspring/decimal"
)

type Message struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Period     string     `json:"period"`
	Content    string     `json:"content"`
	Status     Status     `json:"status"`
	Attempts   int        `json:"attempts"`
	LastError  string     `json:"lastError,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	SentAt     *time.Time `json:"sentAt,omitempty"`
}

// Recipient is a PAID payslip that has no message yet.
type Recipient struct {
	EmployeeID   string
	EmployeeCode string
	FirstName    string
	Email        string
	NetSalary    decimal.Decimal
}

// Delivery is a stored message together with the address it goes to.
type Delivery struct {
	Message Message
	Email   string
}

type DispatchReport struct {
	Period   string    `json:"period,omitempty"`
	Sent     int       `json:"sent"`
	Failed   int       `json:"failed"`
	Messages []Message `json:"messages"`
}
