package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"erp/internal/platform/config"
	"erp/internal/platform/db"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [up|down|version]\n")
	}
	flag.Parse()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if err := db.RunMigration(action, cfg.DatabaseURL); err != nil {
		slog.Error("migration failed", "action", action, "err", err)
		os.Exit(1)
	}
	slog.Info("migration finished", "action", action)
}
