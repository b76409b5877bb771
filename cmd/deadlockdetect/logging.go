package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// newRunLogger builds a structured logger for one CLI invocation,
// tagged with a run id so warnings from a multi-file analysis can be
// correlated back to the invocation that produced them.
func newRunLogger() (*slog.Logger, string) {
	runID := uuid.NewString()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(viper.GetString("log-level"))})
	return slog.New(handler).With("run_id", runID), runID
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
