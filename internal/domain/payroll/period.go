package payroll

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar month. It is stored as YYYY-MM.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// ParsePeriod reads the YYYY-MM storage form.
func ParsePeriod(value string) (Period, error) {
	yearPart, monthPart, ok := strings.Cut(strings.TrimSpace(value), "-")
	if !ok || len(yearPart) != 4 || len(monthPart) != 2 {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
	return NewPeriod(year, month)
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, int(p.Month))
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	return nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label is the human form used in messages, e.g. "June 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s %04d", p.Month.String(), p.Year)
}
