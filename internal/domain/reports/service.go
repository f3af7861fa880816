package reports

import (
	"context"

	"erp/internal/domain/payroll"
)

type StoreAPI interface {
	PaySlipTotals(ctx context.Context, period payroll.Period) (PeriodSummary, error)
	MessageCounts(ctx context.Context, period payroll.Period) (int, int, int, error)
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) PeriodSummary(ctx context.Context, period payroll.Period) (PeriodSummary, error) {
	if err := period.Validate(); err != nil {
		return PeriodSummary{}, err
	}
	summary, err := s.store.PaySlipTotals(ctx, period)
	if err != nil {
		return PeriodSummary{}, err
	}
	summary.Period = period.String()
	summary.MessagesSent, summary.MessagesFailed, summary.MessagesPending, err = s.store.MessageCounts(ctx, period)
	if err != nil {
		return PeriodSummary{}, err
	}
	return summary, nil
}
