// Command tfjsload inspects TF.js graph models from URLs, local paths or
// TF-Hub, exercising the same load router applications embed.
//
// Configuration is read from the tfjsload config file when present
// (TFJS_CONFIG_PATH overrides the location).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mturchin/tfjs-converter/graphmodel"
	"github.com/mturchin/tfjs-converter/internal/config"
	"github.com/mturchin/tfjs-converter/internal/env"
	"github.com/mturchin/tfjs-converter/internal/envvar"
	"github.com/mturchin/tfjs-converter/internal/logger"
)

// CLI exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
)

func main() {
	cfg := loadConfig()

	slog.SetDefault(
		logger.New(env.FromEnv(),
			logger.WithLogToFile(cfg.Log.ToFile),
			logger.WithLogFile(cfg.Log.File),
			logger.WithLevel(logLevel(cfg.Log.Level)),
		),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(cfg)
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(exitCodeFromError(err))
	}
}

// loadConfig reads the config file if one exists, falling back to defaults.
func loadConfig() *config.Config {
	path := os.Getenv(envvar.TFJSConfigPath)
	if path == "" {
		path = filepath.Join(config.DefaultConfigPath(), "config.yaml")
	}

	if _, err := os.Stat(path); err != nil {
		return config.Default()
	}

	cfg, err := config.LoadAndValidate(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config %s: %v\n", path, err)
		return config.Default()
	}
	return cfg
}

func logLevel(level string) slog.Level {
	switch level {
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

// exitCodeFromError maps error types to exit codes.
func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, graphmodel.ErrNilLocator):
		return ExitInvalidArgs
	case errors.Is(err, graphmodel.ErrHandlerFromTFHub):
		return ExitInvalidArgs
	default:
		return ExitGeneralError
	}
}
