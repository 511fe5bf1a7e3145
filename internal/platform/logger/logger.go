package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/bankcards-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// nopCloser is returned when no log file is configured.
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel converts a configured level name into a slog.Level.
// The second return value is false when the name is unknown.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Setup initializes the application's logging system based on the provided
// configuration. It creates a structured JSON logger writing to stdout and,
// when cfg.LogFile is set, to a size-rotated file as well. The logger is
// installed as the slog default.
//
// The returned io.Closer releases the log file and must be closed on shutdown.
func Setup(cfg config.ServerConfig) (*slog.Logger, io.Closer, error) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		closer = rotator
	}

	logger := New(out, cfg.LogLevel)
	slog.SetDefault(logger)

	return logger, closer, nil
}

// New builds a JSON logger for out at the named level. Unknown level names
// fall back to info and emit a warning through the new logger.
func New(out io.Writer, level string) *slog.Logger {
	parsed, ok := ParseLevel(level)

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parsed}))
	if !ok {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
	}

	return logger
}
