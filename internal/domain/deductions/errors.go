package deductions

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("deduction not found")
	ErrDuplicateCode     = errors.New("deduction code already exists")
	ErrDuplicateName     = errors.New("deduction name already exists")
	ErrInvalidPercentage = errors.New("deduction percentage must be between 0 and 100")
	ErrInvalidInput      = errors.New("invalid deduction")
)

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

// IsValidation reports whether err should be surfaced as a rejected request.
func IsValidation(err error) bool {
	return errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrInvalidPercentage) ||
		errors.Is(err, ErrInvalidInput)
}
