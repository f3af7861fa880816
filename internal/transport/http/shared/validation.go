package shared

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"erp/internal/domain/payroll"
	"erp/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{issues: make([]ValidationIssue, 0, 4)}
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{
		Field:  field,
		Reason: reason,
	})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// UUID records an issue unless value parses as a UUID.
func (v *Validator) UUID(field, value string) {
	if _, err := uuid.Parse(strings.TrimSpace(value)); err != nil {
		v.Add(field, "must be a valid uuid")
	}
}

// Period parses year and month path values into a payroll period.
func (v *Validator) Period(rawYear, rawMonth string) (payroll.Period, bool) {
	year, yearErr := strconv.Atoi(strings.TrimSpace(rawYear))
	if yearErr != nil || year < 1 || year > 9999 {
		v.Add("year", "must be a year between 1 and 9999")
	}
	month, monthErr := strconv.Atoi(strings.TrimSpace(rawMonth))
	if monthErr != nil || month < 1 || month > 12 {
		v.Add("month", "must be a month between 1 and 12")
	}
	if v.HasIssues() {
		return payroll.Period{}, false
	}
	period, err := payroll.NewPeriod(year, month)
	if err != nil {
		v.Add("period", err.Error())
		return payroll.Period{}, false
	}
	return period, true
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []ValidationIssue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]ValidationIssue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if !v.HasIssues() {
		return false
	}
	FailValidation(w, requestID, v.Issues())
	return true
}

func FailValidation(w http.ResponseWriter, requestID string, issues []ValidationIssue) {
	api.FailWithDetails(
		w,
		http.StatusBadRequest,
		"validation_error",
		"payload validation failed",
		map[string]any{"fields": issues},
		requestID,
	)
}
