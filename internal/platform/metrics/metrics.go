package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	totalDurationMs uint64

	payslipsCreated uint64
	payslipsSkipped uint64
	payslipsFailed  uint64
	payslipsPaid    uint64
	messagesSent    uint64
	messagesFailed  uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordPayrollRun adds the outcome counts of one processing run.
func (c *Collector) RecordPayrollRun(created, skipped, failed int) {
	atomic.AddUint64(&c.payslipsCreated, uint64(created))
	atomic.AddUint64(&c.payslipsSkipped, uint64(skipped))
	atomic.AddUint64(&c.payslipsFailed, uint64(failed))
}

func (c *Collector) RecordApproved(count int) {
	atomic.AddUint64(&c.payslipsPaid, uint64(count))
}

func (c *Collector) RecordDispatch(sent, failed int) {
	atomic.AddUint64(&c.messagesSent, uint64(sent))
	atomic.AddUint64(&c.messagesFailed, uint64(failed))
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          errs,
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
		"payslipsCreatedTotal": atomic.LoadUint64(&c.payslipsCreated),
		"payslipsSkippedTotal": atomic.LoadUint64(&c.payslipsSkipped),
		"payslipsFailedTotal":  atomic.LoadUint64(&c.payslipsFailed),
		"payslipsPaidTotal":    atomic.LoadUint64(&c.payslipsPaid),
		"messagesSentTotal":    atomic.LoadUint64(&c.messagesSent),
		"messagesFailedTotal":  atomic.LoadUint64(&c.messagesFailed),
	}
}
