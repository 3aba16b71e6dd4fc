package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Agent    AgentConfig    `json:"agent"`
	Executor ExecutorConfig `json:"executor"`
	Service  ServiceConfig  `json:"service"`
}

type AgentConfig struct {
	// Model is the generation model name.
	Model string `json:"model"` // Default: "gemini-2.5-flash"

	// MaxRetries bounds self-correction attempts per step.
	MaxRetries int `json:"max_retries"` // Default: 3
}

type ExecutorConfig struct {
	// MaxOutputSize caps captured stdout/stderr per command, in bytes.
	MaxOutputSize int64 `json:"max_output_size"` // Default: 10 * 1024 * 1024 (10MB)

	// CommandTimeoutSeconds bounds a single command's runtime.
	CommandTimeoutSeconds int `json:"command_timeout_seconds"` // Default: 600 (10 minutes)
}

type ServiceConfig struct {
	// CheckIntervalSeconds is how often the background service re-checks
	// policies.
	CheckIntervalSeconds int `json:"check_interval_seconds"` // Default: 300 (5 minutes)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Model:      "gemini-2.5-flash",
			MaxRetries: 3,
		},
		Executor: ExecutorConfig{
			MaxOutputSize:         10 * 1024 * 1024,
			CommandTimeoutSeconds: 600,
		},
		Service: ServiceConfig{
			CheckIntervalSeconds: 300,
		},
	}
}
