package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"erp/internal/domain/payroll"
	"erp/internal/platform/db"
)

type Store struct {
	DB db.Queryer
}

func NewStore(q db.Queryer) *Store {
	return &Store{DB: q}
}

const messageColumns = `m.id, m.employee_id, m.year_month, m.content, m.status, m.attempts,
           COALESCE(m.last_error, ''), m.created_at, m.sent_at`

// PendingRecipients lists PAID payslips of the period whose employee has no
// message for that period yet.
func (s *Store) PendingRecipients(ctx context.Context, period payroll.Period) ([]Recipient, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT p.employee_id, e.code, e.first_name, e.email, p.net_salary::text
    FROM pay_slips p
    JOIN employees e ON e.id = p.employee_id
    WHERE p.year_month = $1 AND p.status = $2
      AND NOT EXISTS (
        SELECT 1 FROM messages m
        WHERE m.employee_id = p.employee_id AND m.year_month = p.year_month
      )
    ORDER BY e.code, p.employee_id
  `, period.String(), string(payroll.StatusPaid))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var r Recipient
		var net string
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeCode, &r.FirstName, &r.Email, &net); err != nil {
			return nil, err
		}
		r.NetSalary, err = decimal.NewFromString(net)
		if err != nil {
			return nil, fmt.Errorf("recipient %s: parse net salary %q: %w", r.EmployeeID, net, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateMessage stores the message of an employee for a period with its first
// delivery attempt already counted. A second message for the same pair is
// rejected by the messages_employee_period_key constraint and reported as
// ErrAlreadyNotified.
func (s *Store) CreateMessage(ctx context.Context, employeeID string, period payroll.Period, content string, createdAt time.Time) (Message, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    INSERT INTO messages AS m (employee_id, year_month, content, status, attempts, created_at)
    VALUES ($1,$2,$3,$4,1,$5)
    RETURNING `+messageColumns,
		employeeID, period.String(), content, string(StatusPending), createdAt)
	msg, err := scanMessage(row)
	if _, ok := db.ConstraintViolated(err, db.UniqueViolation); ok {
		return Message{}, ErrAlreadyNotified
	}
	return msg, err
}

// ClaimFailed takes the next delivery attempt of a FAILED message. It reports
// false when the message is no longer FAILED or another run already took the
// attempt it was listed with.
func (s *Store) ClaimFailed(ctx context.Context, id string, attempts int) (bool, error) {
	tag, err := db.QueryerFromContext(ctx, s.DB).Exec(ctx, `
    UPDATE messages
    SET attempts = attempts + 1
    WHERE id = $1 AND status = $2 AND attempts = $3
  `, id, string(StatusFailed), attempts)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) MarkSent(ctx context.Context, id string, sentAt time.Time) (Message, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    UPDATE messages AS m
    SET status = $1, sent_at = $2, last_error = NULL
    WHERE m.id = $3
    RETURNING `+messageColumns,
		string(StatusSent), sentAt, id)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrMessageNotFound
	}
	return msg, err
}

func (s *Store) MarkFailed(ctx context.Context, id, reason string) (Message, error) {
	row := db.QueryerFromContext(ctx, s.DB).QueryRow(ctx, `
    UPDATE messages AS m
    SET status = $1, last_error = $2
    WHERE m.id = $3
    RETURNING `+messageColumns,
		string(StatusFailed), reason, id)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListFailed returns FAILED messages with their recipient address. A positive
// maxAttempts excludes messages that already reached the limit.
func (s *Store) ListFailed(ctx context.Context, maxAttempts int) ([]Delivery, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT `+messageColumns+`, e.email
    FROM messages m
    JOIN employees e ON e.id = m.employee_id
    WHERE m.status = $1 AND ($2 <= 0 OR m.attempts < $2)
    ORDER BY m.created_at, m.id
  `, string(StatusFailed), maxAttempts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var status string
		m := &d.Message
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.Period, &m.Content, &status, &m.Attempts,
			&m.LastError, &m.CreatedAt, &m.SentAt, &d.Email); err != nil {
			return nil, err
		}
		m.Status = Status(status)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]Message, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT `+messageColumns+`
    FROM messages m
    WHERE m.employee_id = $1
    ORDER BY m.created_at DESC, m.id
  `, employeeID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (s *Store) ListByPeriod(ctx context.Context, period payroll.Period) ([]Message, error) {
	rows, err := db.QueryerFromContext(ctx, s.DB).Query(ctx, `
    SELECT `+messageColumns+`
    FROM messages m
    WHERE m.year_month = $1
    ORDER BY m.created_at, m.id
  `, period.String())
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]Message, error) {
	defer rows.Close()
	var out []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func scanMessage(row pgx.Row) (Message, error) {
	var m Message
	var status string
	if err := row.Scan(&m.ID, &m.EmployeeID, &m.Period, &m.Content, &status, &m.Attempts,
		&m.LastError, &m.CreatedAt, &m.SentAt); err != nil {
		return Message{}, err
	}
	m.Status = Status(status)
	return m, nil
}
