package payroll

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

const (
	EmployeeStatusActive   = "ACTIVE"
	EmploymentStatusActive = "ACTIVE"
)

// Skip reasons reported in a RunReport.
const (
	ReasonAlreadyProcessed   = "already_processed"
	ReasonNoActiveEmployment = "no_active_employment"
	ReasonNegativeNet        = "negative_net"
)

const defaultWorkers = 4
