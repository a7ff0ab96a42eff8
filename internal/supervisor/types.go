package supervisor

import (
	"context"
	"errors"
)

// ErrUnavailable means the supervisor could not be reached.
var ErrUnavailable = errors.New("supervisor unavailable")

// Startup values.
const (
	StartupEnabled  = "enabled"
	StartupDisabled = "disabled"
)

// Service status reported by the supervisor.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBackoff  = "backoff"
	StatusError    = "error"
)

// Service is one service entry of a layer or plan.
type Service struct {
	Override  string `yaml:"override,omitempty"`
	Summary   string `yaml:"summary,omitempty"`
	Command   string `yaml:"command,omitempty"`
	Startup   string `yaml:"startup,omitempty"`
	OnFailure string `yaml:"on-failure,omitempty"`
}

// Layer is a configuration layer added to the plan.
type Layer struct {
	Summary     string              `yaml:"summary,omitempty"`
	Description string              `yaml:"description,omitempty"`
	Services    map[string]*Service `yaml:"services,omitempty"`
}

// Plan is the combined configuration of all layers. Only services are
// decoded.
type Plan struct {
	Services map[string]*Service `yaml:"services,omitempty"`
}

// ServiceInfo is the runtime state of a service.
type ServiceInfo struct {
	Name    string
	Startup string
	Current string
}

// IsRunning reports whether the service is active.
func (s ServiceInfo) IsRunning() bool {
	return s.Current == StatusActive
}

// Supervisor is the process supervisor of the workload container.
type Supervisor interface {
	// CanConnect reports whether the supervisor answers.
	CanConnect(ctx context.Context) bool

	// Plan returns the current combined plan.
	Plan(ctx context.Context) (*Plan, error)

	// AddLayer adds layer under label. With combine, an existing layer of
	// the same label is merged instead of rejected.
	AddLayer(ctx context.Context, label string, layer *Layer, combine bool) error

	// Replan restarts services whose configuration changed and starts
	// enabled services that are not running.
	Replan(ctx context.Context) error

	// Services returns the state of the named services, or all services
	// when no names are given.
	Services(ctx context.Context, names ...string) ([]ServiceInfo, error)
}
