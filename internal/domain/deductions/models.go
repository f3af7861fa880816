package deductions

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Deduction struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type Input struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Percentage decimal.Decimal `json:"percentage"`
}

var hundred = decimal.NewFromInt(100)

// PercentageScale is the number of fractional digits a percentage is stored
// with.
const PercentageScale = 4

func (in Input) normalized() Input {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	return in
}

func (in Input) Validate() error {
	if in.Code == "" {
		return invalid("code is required")
	}
	if in.Name == "" {
		return invalid("name is required")
	}
	if in.Percentage.IsNegative() || in.Percentage.GreaterThan(hundred) {
		return ErrInvalidPercentage
	}
	if !in.Percentage.Equal(in.Percentage.Round(PercentageScale)) {
		return invalid("percentage allows at most 4 decimal places")
	}
	return nil
}
