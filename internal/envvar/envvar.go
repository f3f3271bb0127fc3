package envvar

const (
	// TFJSEnv is the environment variable used to determine the environment
	TFJSEnv = "TFJS_ENV"

	// TFJSConfigPath is the environment variable used to override the config file path
	TFJSConfigPath = "TFJS_CONFIG_PATH"
)
