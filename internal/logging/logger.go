// Package logging builds the application's structured logger.
package logging

import (
	"log/slog"
	"os"

	"traveldesk-backend/internal/config"
)

// New creates a slog logger at the configured level.
func New(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// NewWithSystem returns a logger scoped to one subsystem (e.g. "recon",
// "import", "api").
func NewWithSystem(cfg config.LoggingConfig, system string) *slog.Logger {
	return New(cfg).With("system", system)
}
