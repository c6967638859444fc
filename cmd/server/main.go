// Package main is the entry point for the taskboard server.
//
// main stays minimal: read configuration, create the logger, start the
// application. Everything else lives in internal packages.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/taskboard/internal/config"
	"github.com/sakif/taskboard/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to an ini config file (optional)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Precedence: defaults < config file < PORT/DB_PATH/JWT_SECRET env vars.
	// JWT_SECRET is mandatory; generate one with: openssl rand -hex 32
	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the database directory exists before sqlite tries to create the
	// file inside it.
	if dbDir := filepath.Dir(cfg.DBPath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
