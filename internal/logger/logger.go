package logger

import (
	"log/slog"
	"os"
)

// Init configures the process-wide slog logger. DEBUG=true lowers the level,
// LOG_FORMAT=json switches to the JSON handler for deployments. Call sites
// log through the slog default directly.
func Init() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
