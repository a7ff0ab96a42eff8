package testing

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/imamik/argo-rollouts-operator/internal/supervisor"
)

// FakeSupervisor is an in-memory supervisor.Supervisor. Replan marks every
// enabled service as running.
type FakeSupervisor struct {
	mu sync.Mutex

	unreachable int
	services    map[string]*supervisor.Service
	running     map[string]bool

	PlanErr     error
	AddLayerErr error
	ReplanErr   error
	ServicesErr error

	CanConnectCalls int
	PlanCalls       int
	AddLayerCalls   int
	ReplanCalls     int
	Labels          []string
}

// NewFakeSupervisor returns a reachable supervisor with an empty plan.
func NewFakeSupervisor() *FakeSupervisor {
	return &FakeSupervisor{
		services: map[string]*supervisor.Service{},
		running:  map[string]bool{},
	}
}

// Unreachable makes the next n CanConnect calls fail.
func (f *FakeSupervisor) Unreachable(n int) *FakeSupervisor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unreachable = n
	return f
}

// WithService seeds the plan with a service, optionally running.
func (f *FakeSupervisor) WithService(name string, svc supervisor.Service, running bool) *FakeSupervisor {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services[name] = &svc
	f.running[name] = running
	return f
}

// SetRunning changes the run state of a service.
func (f *FakeSupervisor) SetRunning(name string, running bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[name] = running
}

func (f *FakeSupervisor) CanConnect(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CanConnectCalls++
	if f.unreachable > 0 {
		f.unreachable--
		return false
	}
	return true
}

func (f *FakeSupervisor) Plan(context.Context) (*supervisor.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PlanCalls++
	if f.PlanErr != nil {
		return nil, f.PlanErr
	}

	plan := &supervisor.Plan{Services: make(map[string]*supervisor.Service, len(f.services))}
	for name, svc := range f.services {
		copied := *svc
		plan.Services[name] = &copied
	}
	return plan, nil
}

func (f *FakeSupervisor) AddLayer(_ context.Context, label string, layer *supervisor.Layer, combine bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AddLayerCalls++
	if f.AddLayerErr != nil {
		return f.AddLayerErr
	}
	if !combine && slices.Contains(f.Labels, label) {
		return fmt.Errorf("layer %q already exists", label)
	}

	if !slices.Contains(f.Labels, label) {
		f.Labels = append(f.Labels, label)
	}
	for name, svc := range layer.Services {
		copied := *svc
		f.services[name] = &copied
	}
	return nil
}

func (f *FakeSupervisor) Replan(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReplanCalls++
	if f.ReplanErr != nil {
		return f.ReplanErr
	}

	for name, svc := range f.services {
		if svc.Startup == supervisor.StartupEnabled {
			f.running[name] = true
		}
	}
	return nil
}

func (f *FakeSupervisor) Services(_ context.Context, names ...string) ([]supervisor.ServiceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ServicesErr != nil {
		return nil, f.ServicesErr
	}

	if len(names) == 0 {
		names = slices.Sorted(maps.Keys(f.services))
	}

	var infos []supervisor.ServiceInfo
	for _, name := range names {
		svc, ok := f.services[name]
		if !ok {
			continue
		}
		current := supervisor.StatusInactive
		if f.running[name] {
			current = supervisor.StatusActive
		}
		infos = append(infos, supervisor.ServiceInfo{Name: name, Startup: svc.Startup, Current: current})
	}
	return infos, nil
}

// Writes returns the number of AddLayer and Replan calls.
func (f *FakeSupervisor) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.AddLayerCalls + f.ReplanCalls
}
