package config

import (
	"log/slog"
	"strings"
)

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LEVEL" envDefault:"info"`
	// Format is json or text. The CLI defaults to text on stderr.
	Format string `env:"FORMAT" envDefault:"text"`
}

// Sanitize normalises the level and format. Dev mode forces debug.
func (l *LoggingConfig) Sanitize(isDev bool) {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if isDev {
		l.Level = "debug"
	}
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		l.Level = "info"
	}

	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	if l.Format != "json" {
		l.Format = "text"
	}
}

// SlogLevel maps Level onto slog.Level.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch l.Level {
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
