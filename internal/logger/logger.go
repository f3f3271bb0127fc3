// Package logger builds the process-wide slog handler.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mturchin/tfjs-converter/internal/env"
)

// Options configures the logger.
type Options struct {
	logToFile bool
	logFile   string
	level     slog.Level
}

// Option mutates logger Options.
type Option func(*Options)

// WithLogToFile enables mirroring log output to a rotated file.
func WithLogToFile(enabled bool) Option {
	return func(o *Options) { o.logToFile = enabled }
}

// WithLogFile sets the log file path used when file logging is enabled.
func WithLogFile(path string) Option {
	return func(o *Options) { o.logFile = path }
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) { o.level = level }
}

// New creates a slog.Logger for the given environment: tinted output on a
// terminal, JSON otherwise, with optional rotated file output.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	options := Options{
		logFile: "logs/tfjsload.log",
		level:   slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(&options)
	}

	var out io.Writer = os.Stderr
	if options.logToFile {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   options.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	var handler slog.Handler
	if environment == env.Development && isTerminal(os.Stderr) {
		handler = tint.NewHandler(out, &tint.Options{
			Level:      options.level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: options.level})
	}

	return slog.New(handler)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
