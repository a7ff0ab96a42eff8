package supervisor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/canonical/pebble/client"
	"gopkg.in/yaml.v3"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// pebbleAPI is the subset of *client.Client used by Pebble.
type pebbleAPI interface {
	SysInfo() (*client.SysInfo, error)
	PlanBytes(opts *client.PlanOptions) ([]byte, error)
	AddLayer(opts *client.AddLayerOptions) error
	Replan(opts *client.ServiceOptions) (string, error)
	WaitChange(id string, opts *client.WaitChangeOptions) (*client.Change, error)
	Services(opts *client.ServicesOptions) ([]*client.ServiceInfo, error)
}

// Pebble implements Supervisor over the Pebble API.
type Pebble struct {
	api           pebbleAPI
	changeTimeout time.Duration
}

// NewPebble connects a Pebble client to socket. No request is made until
// the first call.
func NewPebble(socket string, changeTimeout time.Duration) (*Pebble, error) {
	c, err := client.New(&client.Config{Socket: socket})
	if err != nil {
		return nil, fmt.Errorf("failed to create pebble client for %s: %w", socket, err)
	}
	return newPebble(c, changeTimeout), nil
}

func newPebble(api pebbleAPI, changeTimeout time.Duration) *Pebble {
	return &Pebble{api: api, changeTimeout: changeTimeout}
}

// CanConnect reports whether Pebble answers a system-info request.
func (p *Pebble) CanConnect(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, err := p.api.SysInfo(); err != nil {
		log.FromContext(ctx).V(1).Info("pebble not reachable", "error", err.Error())
		return false
	}
	return true
}

// Plan returns the services of the current plan.
func (p *Pebble) Plan(ctx context.Context) (*Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := p.api.PlanBytes(&client.PlanOptions{})
	if err != nil {
		return nil, p.classify(ctx, "get plan", err)
	}

	plan := &Plan{}
	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if plan.Services == nil {
		plan.Services = map[string]*Service{}
	}
	return plan, nil
}

// AddLayer adds a layer to the plan.
func (p *Pebble) AddLayer(ctx context.Context, label string, layer *Layer, combine bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := yaml.Marshal(layer)
	if err != nil {
		return fmt.Errorf("failed to encode layer %s: %w", label, err)
	}

	err = p.api.AddLayer(&client.AddLayerOptions{
		Combine:   combine,
		Label:     label,
		LayerData: data,
	})
	if err != nil {
		return p.classify(ctx, "add layer "+label, err)
	}
	return nil
}

// Replan applies the plan and waits for the resulting change.
func (p *Pebble) Replan(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	changeID, err := p.api.Replan(&client.ServiceOptions{})
	if err != nil {
		return p.classify(ctx, "replan", err)
	}

	change, err := p.api.WaitChange(changeID, &client.WaitChangeOptions{Timeout: p.changeTimeout})
	if err != nil {
		return p.classify(ctx, "wait for replan change "+changeID, err)
	}
	if change.Err != "" {
		return fmt.Errorf("replan change %s failed: %s", changeID, change.Err)
	}
	return nil
}

// Services returns the state of the named services.
func (p *Pebble) Services(ctx context.Context, names ...string) ([]ServiceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := p.api.Services(&client.ServicesOptions{Names: names})
	if err != nil {
		return nil, p.classify(ctx, "get services", err)
	}

	services := make([]ServiceInfo, 0, len(infos))
	for _, info := range infos {
		services = append(services, ServiceInfo{
			Name:    info.Name,
			Startup: string(info.Startup),
			Current: string(info.Current),
		})
	}
	return services, nil
}

// classify wraps err with ErrUnavailable when Pebble stopped answering,
// so callers can retry.
func (p *Pebble) classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if !p.CanConnect(ctx) {
		return fmt.Errorf("failed to %s: %w: %w", op, ErrUnavailable, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
