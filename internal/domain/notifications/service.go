package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"erp/internal/domain/payroll"
	"erp/internal/requestctx"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Transactor runs fn inside a transaction that stores join through the
// context.
type Transactor interface {
	Within(ctx context.Context, fn func(context.Context) error) error
}

type Options struct {
	From        string
	Institution string
	// MaxAttempts bounds ResendFailed; zero keeps retrying forever.
	MaxAttempts int
	Workers     int
}

type Service struct {
	store  StoreAPI
	mailer Mailer
	tx     Transactor
	opts   Options
	now    func() time.Time
}

func NewService(store StoreAPI, mailer Mailer, tx Transactor, opts Options) *Service {
	if opts.From == "" {
		opts.From = DefaultFrom
	}
	if opts.Institution == "" {
		opts.Institution = DefaultInstitution
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &Service{store: store, mailer: mailer, tx: tx, opts: opts, now: time.Now}
}

func Subject(period payroll.Period) string {
	return fmt.Sprintf(subjectFormat, period.Label())
}

func Compose(firstName string, period payroll.Period, institution string, net decimal.Decimal, employeeCode string) string {
	return fmt.Sprintf(bodyFormat, firstName, period.Label(), institution, net.StringFixed(2), employeeCode)
}

// NotifyApproved creates and delivers one message per PAID payslip of the
// period that has not been notified yet. Delivery errors are recorded on the
// message and never returned.
func (s *Service) NotifyApproved(ctx context.Context, period payroll.Period) (DispatchReport, error) {
	report := DispatchReport{Period: period.String()}
	if err := period.Validate(); err != nil {
		return report, err
	}
	recipients, err := s.store.PendingRecipients(ctx, period)
	if err != nil {
		return report, fmt.Errorf("list recipients: %w", err)
	}

	subject := Subject(period)
	results := make([]delivered, len(recipients))
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, r := range recipients {
		g.Go(func() error {
			content := Compose(r.FirstName, period, s.opts.Institution, r.NetSalary, r.EmployeeCode)
			var msg Message
			err := s.within(ctx, func(ctx context.Context) error {
				var err error
				msg, err = s.store.CreateMessage(ctx, r.EmployeeID, period, content, s.now())
				return err
			})
			if errors.Is(err, ErrAlreadyNotified) {
				results[i] = delivered{skipped: true}
				return nil
			}
			if err != nil {
				requestctx.Logger(ctx).Warn("notification message create failed", "employeeId", r.EmployeeID, "period", period.String(), "err", err)
				results[i] = delivered{failed: true}
				return nil
			}
			results[i] = s.deliver(ctx, Delivery{Message: msg, Email: r.Email}, subject)
			return nil
		})
	}
	_ = g.Wait()

	report.add(results)
	requestctx.Logger(ctx).Info("payroll notifications dispatched", "period", report.Period, "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

// ResendFailed retries delivery of every FAILED message. SENT and PENDING
// messages are left alone.
func (s *Service) ResendFailed(ctx context.Context) (DispatchReport, error) {
	var report DispatchReport
	failed, err := s.store.ListFailed(ctx, s.opts.MaxAttempts)
	if err != nil {
		return report, fmt.Errorf("list failed messages: %w", err)
	}

	results := make([]delivered, len(failed))
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, d := range failed {
		g.Go(func() error {
			claimed, err := s.store.ClaimFailed(ctx, d.Message.ID, d.Message.Attempts)
			if err != nil {
				requestctx.Logger(ctx).Warn("notification claim failed", "messageId", d.Message.ID, "err", err)
				results[i] = delivered{skipped: true}
				return nil
			}
			if !claimed {
				results[i] = delivered{skipped: true}
				return nil
			}
			d.Message.Attempts++
			subject := ""
			if period, err := payroll.ParsePeriod(d.Message.Period); err == nil {
				subject = Subject(period)
			}
			results[i] = s.deliver(ctx, d, subject)
			return nil
		})
	}
	_ = g.Wait()

	report.add(results)
	requestctx.Logger(ctx).Info("failed notifications resent", "sent", report.Sent, "failed", report.Failed)
	return report, nil
}

func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]Message, error) {
	return s.store.ListByEmployee(ctx, employeeID)
}

func (s *Service) ListByPeriod(ctx context.Context, period payroll.Period) ([]Message, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListByPeriod(ctx, period)
}

type delivered struct {
	msg     *Message
	failed  bool
	skipped bool
}

func (s *Service) deliver(ctx context.Context, d Delivery, subject string) delivered {
	sendErr := s.send(ctx, d.Email, subject, d.Message.Content)

	var updated Message
	var err error
	if sendErr != nil {
		requestctx.Logger(ctx).Warn("notification delivery failed", "messageId", d.Message.ID, "employeeId", d.Message.EmployeeID, "err", sendErr)
		updated, err = s.store.MarkFailed(ctx, d.Message.ID, sendErr.Error())
	} else {
		updated, err = s.store.MarkSent(ctx, d.Message.ID, s.now())
	}
	if err != nil {
		requestctx.Logger(ctx).Warn("notification status update failed", "messageId", d.Message.ID, "err", err)
		msg := d.Message
		return delivered{msg: &msg, failed: true}
	}
	return delivered{msg: &updated, failed: updated.Status != StatusSent}
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	if s.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("recipient has no email address")
	}
	return s.mailer.Send(ctx, s.opts.From, to, subject, body)
}

func (s *Service) within(ctx context.Context, fn func(context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.Within(ctx, fn)
}

func (r *DispatchReport) add(results []delivered) {
	for _, res := range results {
		if res.skipped {
			continue
		}
		if res.failed {
			r.Failed++
		} else {
			r.Sent++
		}
		if res.msg != nil {
			r.Messages = append(r.Messages, *res.msg)
		}
	}
}
