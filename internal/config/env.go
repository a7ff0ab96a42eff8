package config

import (
	"os"
	"strconv"
	"time"
)

// ApplyEnv overrides settings from environment variables.
// Unset or unparsable variables leave the current value in place.
//
// Environment Variables:
//   - ARGO_ROLLOUTS_APP_NAME
//   - ARGO_ROLLOUTS_NAMESPACE
//   - ARGO_ROLLOUTS_COMMAND
//   - ARGO_ROLLOUTS_METRICS_PORT (default: 8090)
//   - ARGO_ROLLOUTS_METRICS_TIMEOUT (default: 10s)
//   - ARGO_ROLLOUTS_NAMESPACE_FILE
//   - ARGO_ROLLOUTS_TEMPLATES_DIR
//   - ARGO_ROLLOUTS_KUBECONFIG
//   - ARGO_ROLLOUTS_HOOK_TOOL_TIMEOUT (default: 30s)
//   - ARGO_ROLLOUTS_PEBBLE_SOCKET
//   - ARGO_ROLLOUTS_PEBBLE_RETRY_ATTEMPTS (default: 3)
//   - ARGO_ROLLOUTS_PEBBLE_RETRY_DELAY (default: 2s)
//   - ARGO_ROLLOUTS_REMOVE_ON_EXIT (default: false)
func (c *Config) ApplyEnv() {
	c.AppName = parseString("ARGO_ROLLOUTS_APP_NAME", c.AppName)
	c.Namespace = parseString("ARGO_ROLLOUTS_NAMESPACE", c.Namespace)
	c.Command = parseString("ARGO_ROLLOUTS_COMMAND", c.Command)
	c.MetricsPort = parseInt("ARGO_ROLLOUTS_METRICS_PORT", c.MetricsPort)
	c.MetricsTimeout = parseDuration("ARGO_ROLLOUTS_METRICS_TIMEOUT", c.MetricsTimeout)
	c.NamespaceFile = parseString("ARGO_ROLLOUTS_NAMESPACE_FILE", c.NamespaceFile)
	c.TemplatesDir = parseString("ARGO_ROLLOUTS_TEMPLATES_DIR", c.TemplatesDir)
	c.Kubeconfig = parseString("ARGO_ROLLOUTS_KUBECONFIG", c.Kubeconfig)
	c.HookToolTimeout = parseDuration("ARGO_ROLLOUTS_HOOK_TOOL_TIMEOUT", c.HookToolTimeout)
	c.Pebble.Socket = parseString("ARGO_ROLLOUTS_PEBBLE_SOCKET", c.Pebble.Socket)
	c.Pebble.RetryAttempts = parseInt("ARGO_ROLLOUTS_PEBBLE_RETRY_ATTEMPTS", c.Pebble.RetryAttempts)
	c.Pebble.RetryBaseDelay = parseDuration("ARGO_ROLLOUTS_PEBBLE_RETRY_DELAY", c.Pebble.RetryBaseDelay)
	c.Standalone.RemoveOnExit = parseBool("ARGO_ROLLOUTS_REMOVE_ON_EXIT", c.Standalone.RemoveOnExit)
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

func parseBool(envVar string, defaultVal bool) bool {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}

	return b
}
