package notifications

import "errors"

var (
	ErrMessageNotFound = errors.New("message not found")
	// ErrAlreadyNotified means another dispatch already created the message
	// for the employee and period.
	ErrAlreadyNotified = errors.New("employee already notified for period")
)
