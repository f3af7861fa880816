package db

import (
	"context"
	"fmt"
)

type DeductionSeeder interface {
	SeedDefaults(ctx context.Context) (int, error)
}

// Seed installs the reference data payroll runs depend on. It is safe to run
// on every start.
func Seed(ctx context.Context, deductions DeductionSeeder) error {
	if _, err := deductions.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed deductions: %w", err)
	}
	return nil
}
