package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. Dev gets debug level so
// the geocode cache and repo layers can narrate; everything else is info.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	// attach trace/span ids when a span is active
	handler = NewTraceHandler(handler)

	return slog.New(handler).With("service", "placeshub")
}
