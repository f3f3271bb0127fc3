package env

import (
	"os"
	"strings"

	"github.com/mturchin/tfjs-converter/internal/envvar"
)

// Environment identifies the runtime environment.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// FromEnv reads the environment from TFJS_ENV, defaulting to development.
func FromEnv() Environment {
	switch strings.ToLower(os.Getenv(envvar.TFJSEnv)) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}
