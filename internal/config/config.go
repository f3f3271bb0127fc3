// Package config holds the CLI configuration: transport defaults and logging.
package config

import (
	"github.com/mturchin/tfjs-converter/internal/iohandler"
)

// Config is the top-level CLI configuration.
type Config struct {
	Version string        `json:"version"           yaml:"version"`
	Request RequestConfig `json:"request,omitempty" yaml:"request,omitempty"`
	Log     LogConfig     `json:"log,omitempty"     yaml:"log,omitempty"`
}

// RequestConfig configures the default transport options applied to loads.
type RequestConfig struct {
	Headers         map[string]string `json:"headers,omitempty"          yaml:"headers,omitempty"`
	WithCredentials bool              `json:"with_credentials,omitempty" yaml:"with_credentials,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	ToFile bool   `json:"to_file,omitempty" yaml:"to_file,omitempty"`
	File   string `json:"file,omitempty"    yaml:"file,omitempty"`
	Level  string `json:"level,omitempty"   yaml:"level,omitempty"`
}

// RequestOptions converts the configured transport defaults into the form
// the loader consumes. Returns nil when nothing is configured.
func (c *Config) RequestOptions() *iohandler.RequestOptions {
	if len(c.Request.Headers) == 0 && !c.Request.WithCredentials {
		return nil
	}
	return &iohandler.RequestOptions{
		Headers:         c.Request.Headers,
		WithCredentials: c.Request.WithCredentials,
	}
}
