package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the process-wide slog default. verbose enables
// debug-level output (also dumped by restyutil's instrumentation).
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
