package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr              string        `yaml:"addr"`
	DatabaseURL       string        `yaml:"database_url"`
	JWTSecret         string        `yaml:"jwt_secret"`
	Environment       string        `yaml:"environment"`
	RunMigrations     bool          `yaml:"run_migrations"`
	RunSeed           bool          `yaml:"run_seed"`
	EmailFrom         string        `yaml:"email_from"`
	EmailEnabled      bool          `yaml:"email_enabled"`
	SMTPHost          string        `yaml:"smtp_host"`
	SMTPPort          int           `yaml:"smtp_port"`
	SMTPUser          string        `yaml:"smtp_user"`
	SMTPPassword      string        `yaml:"smtp_password"`
	SMTPUseTLS        bool          `yaml:"smtp_use_tls"`
	SMTPImplicitTLS   bool          `yaml:"smtp_implicit_tls"`
	Institution       string        `yaml:"notify_institution"`
	NotifyMaxAttempts int           `yaml:"notify_max_attempts"`
	PayrollWorkers    int           `yaml:"payroll_workers"`
	NotifyWorkers     int           `yaml:"notify_workers"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
	MetricsEnabled    bool          `yaml:"metrics_enabled"`
	ShutdownTimeout   time.Duration `yaml:"-"`
}

func defaults() Config {
	return Config{
		Addr:            ":8080",
		Environment:     "development",
		RunMigrations:   true,
		RunSeed:         true,
		EmailFrom:       "no-reply@example.com",
		SMTPPort:        587,
		SMTPUseTLS:      true,
		Institution:     "ERP System",
		PayrollWorkers:  4,
		NotifyWorkers:   4,
		MaxBodyBytes:    1048576,
		MetricsEnabled:  true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads the optional YAML file named by CONFIG_PATH and then applies
// environment overrides. Values missing from both fall back to defaults.
func Load() (Config, error) {
	base := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		fileCfg, err := LoadFile(path, base)
		if err != nil {
			return Config{}, err
		}
		base = fileCfg
	}
	return fromEnv(base), nil
}

func LoadFile(path string, base Config) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read file %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	return cfg, nil
}

func fromEnv(base Config) Config {
	return Config{
		Addr:              getEnv("APP_ADDR", base.Addr),
		DatabaseURL:       getEnv("DATABASE_URL", base.DatabaseURL),
		JWTSecret:         getEnv("JWT_SECRET", base.JWTSecret),
		Environment:       getEnv("APP_ENV", base.Environment),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", base.RunMigrations),
		RunSeed:           getEnvBool("RUN_SEED", base.RunSeed),
		EmailFrom:         getEnv("EMAIL_FROM", base.EmailFrom),
		EmailEnabled:      getEnvBool("EMAIL_ENABLED", base.EmailEnabled),
		SMTPHost:          getEnv("SMTP_HOST", base.SMTPHost),
		SMTPPort:          getEnvInt("SMTP_PORT", base.SMTPPort),
		SMTPUser:          getEnv("SMTP_USER", base.SMTPUser),
		SMTPPassword:      getEnv("SMTP_PASSWORD", base.SMTPPassword),
		SMTPUseTLS:        getEnvBool("SMTP_USE_TLS", base.SMTPUseTLS),
		SMTPImplicitTLS:   getEnvBool("SMTP_IMPLICIT_TLS", base.SMTPImplicitTLS),
		Institution:       getEnv("NOTIFY_INSTITUTION", base.Institution),
		NotifyMaxAttempts: getEnvInt("NOTIFY_MAX_ATTEMPTS", base.NotifyMaxAttempts),
		PayrollWorkers:    getEnvInt("PAYROLL_WORKERS", base.PayrollWorkers),
		NotifyWorkers:     getEnvInt("NOTIFY_WORKERS", base.NotifyWorkers),
		MaxBodyBytes:      int64(getEnvInt("MAX_BODY_BYTES", int(base.MaxBodyBytes))),
		MetricsEnabled:    getEnvBool("METRICS_ENABLED", base.MetricsEnabled),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", base.ShutdownTimeout),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.PayrollWorkers <= 0 {
		return fmt.Errorf("PAYROLL_WORKERS must be positive")
	}
	if c.NotifyWorkers <= 0 {
		return fmt.Errorf("NOTIFY_WORKERS must be positive")
	}
	if c.NotifyMaxAttempts < 0 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	return nil
}
