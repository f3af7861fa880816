package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"erp/internal/domain/auth"
	"erp/internal/domain/deductions"
	"erp/internal/platform/config"
	"erp/internal/platform/metrics"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type stubDeductions struct{}

func (stubDeductions) List(context.Context) ([]deductions.Deduction, error) {
	return []deductions.Deduction{{ID: "d1", Name: deductions.NamePension}}, nil
}
func (stubDeductions) Get(context.Context, string) (deductions.Deduction, error) {
	return deductions.Deduction{}, deductions.ErrNotFound
}
func (stubDeductions) GetByCode(context.Context, string) (deductions.Deduction, error) {
	return deductions.Deduction{}, deductions.ErrNotFound
}
func (stubDeductions) GetByName(context.Context, string) (deductions.Deduction, error) {
	return deductions.Deduction{}, deductions.ErrNotFound
}
func (stubDeductions) Create(context.Context, deductions.Input) (deductions.Deduction, error) {
	return deductions.Deduction{}, nil
}
func (stubDeductions) Update(context.Context, string, deductions.Input) (deductions.Deduction, error) {
	return deductions.Deduction{}, nil
}
func (stubDeductions) Delete(context.Context, string) error { return nil }
func (stubDeductions) SeedDefaults(context.Context) (int, error) { return 0, nil }

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		Environment:    "test",
		MaxBodyBytes:   1 << 20,
		MetricsEnabled: true,
	}
}

func TestHealthAndReadiness(t *testing.T) {
	router := NewRouter(testConfig(), Deps{DB: pinger{}, Deductions: stubDeductions{}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from readyz, got %d", rec.Code)
	}

	down := NewRouter(testConfig(), Deps{DB: pinger{err: errors.New("down")}, Deductions: stubDeductions{}})
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when db is down, got %d", rec.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	router := NewRouter(testConfig(), Deps{DB: pinger{}, Deductions: stubDeductions{}})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/deductions/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAPIWithBearerToken(t *testing.T) {
	cfg := testConfig()
	collector := metrics.New()
	router := NewRouter(cfg, Deps{DB: pinger{}, Deductions: stubDeductions{}, Metrics: collector})

	token, err := auth.GenerateToken(cfg.JWTSecret, "user-1", auth.Claims{Role: auth.RoleEmployee}, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/deductions/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers on api responses")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", rec.Code)
	}
	if got := collector.Snapshot()["requestsTotal"].(uint64); got < 1 {
		t.Fatalf("expected recorded requests, got %d", got)
	}
}
