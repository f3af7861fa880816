package deductions

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"erp/internal/requestctx"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Deduction, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Deduction, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Deduction, error) {
	return s.store.GetByCode(ctx, code)
}

func (s *Service) GetByName(ctx context.Context, name string) (Deduction, error) {
	return s.store.GetByName(ctx, name)
}

// Rates maps every rule name to its percentage.
func (s *Service) Rates(ctx context.Context) (map[string]decimal.Decimal, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	rates := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		rates[item.Name] = item.Percentage
	}
	return rates, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Deduction, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return Deduction{}, err
	}

	exists, err := s.store.ExistsByCode(ctx, in.Code)
	if err != nil {
		return Deduction{}, err
	}
	if exists {
		return Deduction{}, fmt.Errorf("%w: %s", ErrDuplicateCode, in.Code)
	}
	exists, err = s.store.ExistsByName(ctx, in.Name)
	if err != nil {
		return Deduction{}, err
	}
	if exists {
		return Deduction{}, fmt.Errorf("%w: %s", ErrDuplicateName, in.Name)
	}

	created, err := s.store.Create(ctx, in)
	if err != nil {
		return Deduction{}, err
	}
	requestctx.Logger(ctx).Info("deduction created", "id", created.ID, "code", created.Code, "percentage", created.Percentage.String())
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Deduction, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return Deduction{}, err
	}

	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Deduction{}, err
	}

	if in.Code != current.Code {
		exists, err := s.store.ExistsByCode(ctx, in.Code)
		if err != nil {
			return Deduction{}, err
		}
		if exists {
			return Deduction{}, fmt.Errorf("%w: %s", ErrDuplicateCode, in.Code)
		}
	}
	if in.Name != current.Name {
		exists, err := s.store.ExistsByName(ctx, in.Name)
		if err != nil {
			return Deduction{}, err
		}
		if exists {
			return Deduction{}, fmt.Errorf("%w: %s", ErrDuplicateName, in.Name)
		}
	}

	updated, err := s.store.Update(ctx, id, in)
	if err != nil {
		return Deduction{}, err
	}
	requestctx.Logger(ctx).Info("deduction updated", "id", updated.ID, "code", updated.Code, "percentage", updated.Percentage.String())
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	requestctx.Logger(ctx).Info("deduction deleted", "id", id)
	return nil
}

// SeedDefaults installs the default rules that are missing by name and
// returns how many were created. Existing rules are never overwritten.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, def := range Defaults {
		exists, err := s.store.ExistsByName(ctx, def.Name)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		taken, err := s.store.ExistsByCode(ctx, def.Code)
		if err != nil {
			return created, err
		}
		if taken {
			requestctx.Logger(ctx).Warn("default deduction code already used by another rule", "code", def.Code, "name", def.Name)
			continue
		}
		if _, err := s.store.Create(ctx, def); err != nil {
			return created, fmt.Errorf("seed %s: %w", def.Code, err)
		}
		created++
	}
	if created > 0 {
		requestctx.Logger(ctx).Info("default deductions seeded", "count", created)
	}
	return created, nil
}
