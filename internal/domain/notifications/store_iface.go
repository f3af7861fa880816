package notifications

import (
	"context"
	"time"

	"erp/internal/domain/payroll"
)

type StoreAPI interface {
	PendingRecipients(ctx context.Context, period payroll.Period) ([]Recipient, error)
	CreateMessage(ctx context.Context, employeeID string, period payroll.Period, content string, createdAt time.Time) (Message, error)
	ClaimFailed(ctx context.Context, id string, attempts int) (bool, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) (Message, error)
	MarkFailed(ctx context.Context, id, reason string) (Message, error)
	ListFailed(ctx context.Context, maxAttempts int) ([]Delivery, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Message, error)
	ListByPeriod(ctx context.Context, period payroll.Period) ([]Message, error)
}
