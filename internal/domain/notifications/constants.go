package notifications

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

const (
	DefaultInstitution = "ERP System"
	DefaultFrom        = "no-reply@example.com"
	defaultWorkers     = 4
)

const (
	subjectFormat = "Payroll Notification - %s"
	bodyFormat    = "Dear %s, your Salary of %s from %s (Amount: %s) has been credited to your %s account successfully."
)
