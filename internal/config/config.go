package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultServiceName is the Pebble service running the rollouts controller.
	DefaultServiceName = "argo-rollouts"

	// DefaultContainerName is the workload container of the sidecar charm.
	DefaultContainerName = "argo-rollouts"

	// DefaultCommand is the entrypoint of the upstream controller image.
	DefaultCommand = "/bin/rollouts-controller"

	// DefaultMetricsPort is the port the controller serves /metrics on.
	DefaultMetricsPort = 8090

	// DefaultNamespaceFile is the service account namespace projected into every pod.
	DefaultNamespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

	// DefaultFieldManager is the server-side apply field manager.
	DefaultFieldManager = "argo-rollouts-operator-manager"
)

// Config holds the operator settings.
type Config struct {
	// AppName overrides the application name derived from JUJU_UNIT_NAME.
	AppName string `yaml:"app_name"`

	// Namespace overrides the namespace read from NamespaceFile.
	Namespace string `yaml:"namespace"`

	ServiceName   string `yaml:"service_name"`
	ContainerName string `yaml:"container_name"`
	Command       string `yaml:"command"`

	MetricsPort    int           `yaml:"metrics_port"`
	MetricsTimeout time.Duration `yaml:"metrics_timeout"`

	NamespaceFile string `yaml:"namespace_file"`

	// TemplatesDir is a directory of manifest templates. Empty uses the
	// templates compiled into the binary.
	TemplatesDir string `yaml:"templates_dir"`

	FieldManager string `yaml:"field_manager"`

	// Kubeconfig is a kubeconfig path. Empty uses the in-cluster config.
	Kubeconfig string `yaml:"kubeconfig"`

	// HookToolTimeout bounds every hook tool invocation.
	HookToolTimeout time.Duration `yaml:"hook_tool_timeout"`

	Pebble     PebbleConfig     `yaml:"pebble"`
	Standalone StandaloneConfig `yaml:"standalone"`
}

// PebbleConfig configures access to the workload container's supervisor.
type PebbleConfig struct {
	// Socket is the Pebble API socket. Empty derives it from ContainerName.
	Socket string `yaml:"socket"`

	RetryAttempts  int           `yaml:"retry_attempts"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// ChangeTimeout bounds the wait for a replan change to finish.
	ChangeTimeout time.Duration `yaml:"change_timeout"`
}

// StandaloneConfig configures the long-running mode.
type StandaloneConfig struct {
	HealthAddr           string        `yaml:"health_addr"`
	MetricsAddr          string        `yaml:"metrics_addr"`
	PollInterval         time.Duration `yaml:"poll_interval"`
	UpdateStatusInterval time.Duration `yaml:"update_status_interval"`
	RemoveOnExit         bool          `yaml:"remove_on_exit"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		ServiceName:     DefaultServiceName,
		ContainerName:   DefaultContainerName,
		Command:         DefaultCommand,
		MetricsPort:     DefaultMetricsPort,
		MetricsTimeout:  10 * time.Second,
		NamespaceFile:   DefaultNamespaceFile,
		FieldManager:    DefaultFieldManager,
		HookToolTimeout: 30 * time.Second,
		Pebble: PebbleConfig{
			RetryAttempts:  3,
			RetryBaseDelay: 2 * time.Second,
			ChangeTimeout:  30 * time.Second,
		},
		Standalone: StandaloneConfig{
			HealthAddr:           ":8081",
			MetricsAddr:          ":8080",
			PollInterval:         5 * time.Second,
			UpdateStatusInterval: 5 * time.Minute,
		},
	}
}

// LoadFile reads a YAML file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	return cfg, nil
}

// Load builds the effective configuration: defaults, then the optional file
// at path, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// PebbleSocket returns the configured socket or the sidecar default for the
// workload container.
func (c *Config) PebbleSocket() string {
	if c.Pebble.Socket != "" {
		return c.Pebble.Socket
	}
	return filepath.Join("/charm/containers", c.ContainerName, "pebble.socket")
}

// ResolveAppName returns AppName, falling back to the application part of
// JUJU_UNIT_NAME ("argo-rollouts/0" -> "argo-rollouts").
func (c *Config) ResolveAppName() string {
	if c.AppName != "" {
		return c.AppName
	}
	unit := os.Getenv("JUJU_UNIT_NAME")
	if unit == "" {
		return ""
	}
	app, _, _ := strings.Cut(unit, "/")
	return app
}

// MetricsURL is the local metrics endpoint of the workload.
func (c *Config) MetricsURL() string {
	return fmt.Sprintf("http://localhost:%d/metrics", c.MetricsPort)
}
