package shared

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidatorPeriod(t *testing.T) {
	v := NewValidator()
	period, ok := v.Period("2024", "06")
	if !ok {
		t.Fatalf("expected valid period, got issues %+v", v.Issues())
	}
	if period.Year != 2024 || period.Month != time.June {
		t.Fatalf("expected 2024-06, got %+v", period)
	}
}

func TestValidatorPeriodRejects(t *testing.T) {
	v := NewValidator()
	if _, ok := v.Period("abc", "13"); ok {
		t.Fatal("expected invalid period")
	}
	issues := v.Issues()
	if len(issues) != 2 || issues[0].Field != "month" || issues[1].Field != "year" {
		t.Fatalf("expected month and year issues, got %+v", issues)
	}

	rec := httptest.NewRecorder()
	if !v.Reject(rec, "req-1") {
		t.Fatal("expected reject to write a response")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestValidatorUUID(t *testing.T) {
	v := NewValidator()
	v.UUID("id", "6f1c2c8e-59a4-4f5c-9a0b-1b2c3d4e5f60")
	if v.HasIssues() {
		t.Fatalf("expected valid uuid, got %+v", v.Issues())
	}
	v.UUID("id", "42")
	if !v.HasIssues() {
		t.Fatal("expected invalid uuid issue")
	}
}
