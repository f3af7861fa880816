package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"erp/internal/domain/audit"
	"erp/internal/domain/auth"
	"erp/internal/domain/deductions"
	"erp/internal/domain/notifications"
	"erp/internal/domain/payroll"
	"erp/internal/domain/reports"
	"erp/internal/platform/config"
	"erp/internal/platform/db"
	"erp/internal/platform/email"
	"erp/internal/platform/jobs"
	"erp/internal/platform/metrics"
	"erp/internal/transport/http/api"
	audithandler "erp/internal/transport/http/handlers/audit"
	deductionshandler "erp/internal/transport/http/handlers/deductions"
	notificationshandler "erp/internal/transport/http/handlers/notifications"
	payrollhandler "erp/internal/transport/http/handlers/payroll"
	reportshandler "erp/internal/transport/http/handlers/reports"
	"erp/internal/transport/http/middleware"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the router exposes. Tests build them from fakes.
type Deps struct {
	DB            Pinger
	Deductions    deductionshandler.DeductionService
	Payroll       payrollhandler.PayrollService
	Notifications *notifications.Service
	Jobs          *jobs.Service
	Metrics       *metrics.Collector
	Audit         *audit.Service
	Reports       reportshandler.SummaryService
}

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New connects to Postgres, prepares the schema and reference data and wires
// every domain service behind the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, err
		}
	}

	txm := db.NewTxManager(pool)
	deductionService := deductions.NewService(deductions.NewStore(pool))
	if cfg.RunSeed {
		if err := db.Seed(ctx, deductionService); err != nil {
			pool.Close()
			return nil, err
		}
	}

	payrollService := payroll.NewService(payroll.NewStore(pool), deductionService, txm, cfg.PayrollWorkers)
	notificationService := notifications.NewService(notifications.NewStore(pool), email.New(cfg), txm, notifications.Options{
		From:        cfg.EmailFrom,
		Institution: cfg.Institution,
		MaxAttempts: cfg.NotifyMaxAttempts,
		Workers:     cfg.NotifyWorkers,
	})

	router := NewRouter(cfg, Deps{
		DB:            pool,
		Deductions:    deductionService,
		Payroll:       payrollService,
		Notifications: notificationService,
		Jobs:          jobs.New(pool),
		Metrics:       metrics.New(),
		Audit:         audit.New(pool),
		Reports:       reports.NewService(reports.NewStore(pool)),
	})
	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func (a *App) Close() {
	if a != nil && a.DB != nil {
		a.DB.Close()
	}
}

func NewRouter(cfg config.Config, deps Deps) http.Handler {
	authz := auth.NewAuthorizer(auth.RolePermissions)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if deps.Metrics != nil {
		router.Use(middleware.Logger(deps.Metrics))
	} else {
		router.Use(middleware.Logger(nil))
	}
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.DB == nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := deps.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		deductionshandler.NewHandler(deps.Deductions, deps.Audit, authz).RegisterRoutes(r)

		var notifier payrollhandler.Notifier
		if deps.Notifications != nil {
			notifier = deps.Notifications
			notificationshandler.NewHandler(deps.Notifications, deps.Jobs, metricsOrNil(deps.Metrics), deps.Audit, authz).RegisterRoutes(r)
		}
		payrollhandler.NewHandler(deps.Payroll, notifier, deps.Jobs, metricsOrNil(deps.Metrics), deps.Audit, authz).RegisterRoutes(r)

		if deps.Audit != nil {
			audithandler.NewHandler(deps.Audit, authz).RegisterRoutes(r)
		}
		if deps.Reports != nil && deps.Jobs != nil {
			reportshandler.NewHandler(deps.Reports, deps.Jobs, authz).RegisterRoutes(r)
		}
	})

	return router
}

// metricsOrNil keeps a nil collector from turning into a non-nil interface.
func metricsOrNil(c *metrics.Collector) payrollhandler.Metrics {
	if c == nil {
		return nil
	}
	return c
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("ERP server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func setupLogger(cfg config.Config) {
	level := slog.LevelInfo
	if cfg.Environment == "development" {
		level = slog.LevelDebug
	}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
