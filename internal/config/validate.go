package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	var errs []error

	if c.ServiceName == "" {
		errs = append(errs, fmt.Errorf("service_name is required"))
	}
	if c.ContainerName == "" {
		errs = append(errs, fmt.Errorf("container_name is required"))
	}
	if c.Command == "" {
		errs = append(errs, fmt.Errorf("command is required"))
	}
	if c.MetricsPort < 1 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics_port %d is out of range 1-65535", c.MetricsPort))
	}
	if c.MetricsTimeout <= 0 {
		errs = append(errs, fmt.Errorf("metrics_timeout must be positive"))
	}
	if c.Namespace == "" && c.NamespaceFile == "" {
		errs = append(errs, fmt.Errorf("either namespace or namespace_file is required"))
	}
	if c.FieldManager == "" {
		errs = append(errs, fmt.Errorf("field_manager is required"))
	}
	if c.HookToolTimeout <= 0 {
		errs = append(errs, fmt.Errorf("hook_tool_timeout must be positive"))
	}

	if err := c.Pebble.validate(); err != nil {
		errs = append(errs, fmt.Errorf("pebble: %w", err))
	}
	if err := c.Standalone.validate(); err != nil {
		errs = append(errs, fmt.Errorf("standalone: %w", err))
	}

	return errors.Join(errs...)
}

func (p PebbleConfig) validate() error {
	if p.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be at least 1, got %d", p.RetryAttempts)
	}
	if p.RetryBaseDelay < 0 {
		return fmt.Errorf("retry_base_delay must not be negative")
	}
	if p.ChangeTimeout <= 0 {
		return fmt.Errorf("change_timeout must be positive")
	}
	return nil
}

func (s StandaloneConfig) validate() error {
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if s.UpdateStatusInterval <= 0 {
		return fmt.Errorf("update_status_interval must be positive")
	}
	return nil
}
