package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Agent.Model == "" {
		errs = append(errs, "agent.model must not be empty")
	}
	if c.Agent.MaxRetries < 1 {
		errs = append(errs, "agent.max_retries must be >= 1")
	}

	if c.Executor.MaxOutputSize < 1 {
		errs = append(errs, "executor.max_output_size must be >= 1")
	}
	if c.Executor.CommandTimeoutSeconds < 1 {
		errs = append(errs, "executor.command_timeout_seconds must be >= 1")
	}

	if c.Service.CheckIntervalSeconds < 1 {
		errs = append(errs, "service.check_interval_seconds must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
