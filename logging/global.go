package logging

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/giygas/patient-dashboard/config"
)

// Options configures InitLoggerWithOptions
type Options struct {
	Dir            string // empty means console only
	RetentionWeeks int
	MaxFileSize    int64
	Env            config.Environment
	Level          string
	Verbose        bool
}

type LoggingService struct {
	Logger *slog.Logger
	rotate *RotatingLogger
}

// Close releases the rotating file, if any
func (s *LoggingService) Close() error {
	if s == nil || s.rotate == nil {
		return nil
	}
	return s.rotate.Close()
}

var DefaultLoggingService *LoggingService

// InitLogger initializes the global logger with defaults, writing files to logDir
func InitLogger(logDir string) {
	_, _ = InitLoggerWithOptions(Options{
		Dir:            logDir,
		RetentionWeeks: 4,
		MaxFileSize:    100 * 1024 * 1024,
		Env:            config.EnvDevelopment,
	})
}

// InitLoggerWithOptions initializes the global logger and installs it as the
// slog default. When the log directory cannot be used it falls back to console.
func InitLoggerWithOptions(opts Options) (*LoggingService, error) {
	consoleLevel := GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose)
	fileLevel := parseLogLevel(opts.Level)

	var (
		rl      *RotatingLogger
		initErr error
	)
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		} else {
			rl = NewRotatingLogger(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
			rl.startCleanup(24 * time.Hour)
		}
	}

	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}

	DefaultLoggingService = &LoggingService{
		Logger: newLogger(rl, consoleLevel, fileLevel),
		rotate: rl,
	}
	slog.SetDefault(DefaultLoggingService.Logger)

	if initErr != nil {
		DefaultLoggingService.Logger.Error("Logging to console only", "error", initErr)
	}
	return DefaultLoggingService, initErr
}

// ResetForTest installs a fresh global logger and closes it when t finishes
func ResetForTest(t testing.TB, logDir string, env config.Environment, level string, retentionWeeks int, maxFileSize int64) {
	t.Helper()
	svc, err := InitLoggerWithOptions(Options{
		Dir:            logDir,
		RetentionWeeks: retentionWeeks,
		MaxFileSize:    maxFileSize,
		Env:            env,
		Level:          level,
	})
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(func() {
		_ = svc.Close()
		DefaultLoggingService = nil
	})
}

func current() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return slog.Default()
	}
	return DefaultLoggingService.Logger
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// With returns the global logger annotated with args
func With(args ...any) *slog.Logger {
	return current().With(args...)
}

// Logger returns the global logger, or slog's default before InitLogger
func Logger() *slog.Logger {
	return current()
}
