package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger that stamps trace and span ids on records
// logged with a span in the context.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
