// Package logging provides structured logging functionality.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "lng-trader", "logs", "lngtrader.log"),
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     30,
	}
}

// NewLogger creates a new logger with default configuration.
func NewLogger() zerolog.Logger {
	return NewLoggerWithConfig(DefaultLogConfig())
}

// NewLoggerWithConfig creates a new logger with the specified configuration.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	var writers []io.Writer

	if cfg.Console {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	}

	if cfg.File {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err == nil {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			}
			writers = append(writers, fileWriter)
		}
	}

	var writer io.Writer
	if len(writers) == 0 {
		writer = os.Stdout
	} else if len(writers) == 1 {
		writer = writers[0]
	} else {
		writer = zerolog.MultiLevelWriter(writers...)
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	return zerolog.New(writer).
		With().
		Timestamp().
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithMonth adds a delivery month to the logger context.
func WithMonth(logger zerolog.Logger, month string) zerolog.Logger {
	return logger.With().Str("month", month).Logger()
}

// WithComponent adds a component name to the logger context.
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// LogDecision logs a finalized monthly decision.
func LogDecision(logger zerolog.Logger, month, action, destination, counterparty string, netValue float64) {
	logger.Info().
		Str("event", "decision").
		Str("month", month).
		Str("action", action).
		Str("destination", destination).
		Str("counterparty", counterparty).
		Float64("net_value", netValue).
		Msg("Decision selected")
}

// LogViolation logs a non-fatal constraint violation.
func LogViolation(logger zerolog.Logger, month, rule, detail string) {
	logger.Warn().
		Str("event", "violation").
		Str("month", month).
		Str("rule", rule).
		Str("detail", detail).
		Msg("Constraint violation")
}

// LogSimulation logs a completed Monte Carlo run.
func LogSimulation(logger zerolog.Logger, paths int, seed int64, mean, stddev float64, duration time.Duration) {
	logger.Info().
		Str("event", "simulation").
		Int("paths", paths).
		Int64("seed", seed).
		Float64("mean", mean).
		Float64("stddev", stddev).
		Dur("duration", duration).
		Msg("Simulation completed")
}
