package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger writing to stdout.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
