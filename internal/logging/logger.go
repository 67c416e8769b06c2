package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var stderr io.Writer = os.Stderr

// Setup initializes the global slog logger with JSON output to stdout.
// LOG_LEVEL (debug, info, warn, error) overrides the default info level.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// WithDatabase makes the default logger also persist ERROR+ records via pg.
func WithDatabase(pg *PGHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), pg)))
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFromEnv()})
}

func levelFromEnv() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(os.Getenv("LOG_LEVEL")))); err != nil {
		return slog.LevelInfo
	}
	return level
}
