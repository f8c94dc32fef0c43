package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Setup installs the global slog logger and returns it.
//
// Console output goes to stderr through tint so that reports written to
// stdout stay machine-readable. When logOutputDir is set, records are also
// written as JSON to a timestamped file there; the returned close function
// releases that file and is a no-op otherwise.
func Setup(levelStr string, logOutputDir string) (*slog.Logger, func() error, error) {
	level := parseLogLevel(levelStr)
	console := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})

	if logOutputDir == "" {
		logger := slog.New(console)
		slog.SetDefault(logger)
		return logger, func() error { return nil }, nil
	}

	logFile, err := openLogFile(os.ExpandEnv(logOutputDir))
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slogmulti.Fanout(
		console,
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}),
	))
	slog.SetDefault(logger)
	logger.Debug("logging to file", "path", logFile.Name())

	return logger, logFile.Close, nil
}

// Discard returns a logger that drops everything, for tests and library
// callers that do not want output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log output directory: %w", err)
	}

	name := fmt.Sprintf("nitroparse_%s.log", time.Now().Format("20060102_150405"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return f, nil
}

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
