package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfigPath returns the default path for the tfjsload config
// directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "tfjsload", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "tfjsload")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "tfjsload")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "tfjsload")
		}
		return filepath.Join(home, ".config", "tfjsload")
	}
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Version: "1",
		Log:     LogConfig{File: "logs/tfjsload.log", Level: "info"},
	}
}
