package layer

import (
	"github.com/google/go-cmp/cmp"

	"github.com/imamik/argo-rollouts-operator/internal/config"
	"github.com/imamik/argo-rollouts-operator/internal/supervisor"
)

// State is how the plan relates to the desired layer.
type State int

const (
	NoLayer State = iota
	LayerPresentDifferent
	LayerPresentSame
)

func (s State) String() string {
	switch s {
	case NoLayer:
		return "NoLayer"
	case LayerPresentDifferent:
		return "LayerPresentDifferent"
	case LayerPresentSame:
		return "LayerPresentSame"
	default:
		return "Unknown"
	}
}

// Desired is the layer the operator owns.
type Desired struct {
	Label   string
	Service string
	Layer   *supervisor.Layer
}

// ForConfig builds the rollouts controller layer.
func ForConfig(cfg *config.Config) Desired {
	return Desired{
		Label:   cfg.ServiceName,
		Service: cfg.ServiceName,
		Layer: &supervisor.Layer{
			Summary:     "Argo Rollouts service",
			Description: "pebble config layer for Argo Rollouts",
			Services: map[string]*supervisor.Service{
				cfg.ServiceName: {
					Override:  "replace",
					Summary:   "Argo Rollouts",
					Command:   cfg.Command,
					Startup:   supervisor.StartupEnabled,
					OnFailure: "restart",
				},
			},
		},
	}
}

// Compare classifies the plan against the desired service only, not the
// whole services map. Services added by other layers, such as a sidecar's
// own service, never cause the layer to be added again.
func Compare(plan *supervisor.Plan, desired Desired) State {
	current, ok := plan.Services[desired.Service]
	if !ok || current == nil {
		return NoLayer
	}
	if cmp.Equal(current, desired.Layer.Services[desired.Service]) {
		return LayerPresentSame
	}
	return LayerPresentDifferent
}

// Diff returns a human-readable diff of the desired service against the
// plan, empty when they match.
func Diff(plan *supervisor.Plan, desired Desired) string {
	return cmp.Diff(plan.Services[desired.Service], desired.Layer.Services[desired.Service])
}
