package unit

import (
	"context"
	"slices"
	"sync"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/argo-rollouts-operator/internal/status"
)

// Standalone keeps the published values in memory and logs every change.
type Standalone struct {
	mu      sync.RWMutex
	status  status.Status
	version string
	ports   []int
}

// NewStandalone returns a Standalone with an empty maintenance status.
func NewStandalone() *Standalone {
	return &Standalone{status: status.Maintenance("")}
}

func (s *Standalone) SetStatus(ctx context.Context, st status.Status) error {
	s.mu.Lock()
	changed := s.status != st
	s.status = st
	s.mu.Unlock()

	if changed {
		log.FromContext(ctx).Info("unit status", "status", string(st.Kind), "message", st.Message)
	}
	return nil
}

func (s *Standalone) SetWorkloadVersion(ctx context.Context, version string) error {
	s.mu.Lock()
	changed := s.version != version
	s.version = version
	s.mu.Unlock()

	if changed {
		log.FromContext(ctx).Info("workload version", "version", version)
	}
	return nil
}

func (s *Standalone) OpenPort(ctx context.Context, port int, protocol string) error {
	s.mu.Lock()
	opened := !slices.Contains(s.ports, port)
	if opened {
		s.ports = append(s.ports, port)
	}
	s.mu.Unlock()

	if opened {
		log.FromContext(ctx).Info("opened port", "port", port, "protocol", protocol)
	}
	return nil
}

// Status returns the current status.
func (s *Standalone) Status() status.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Version returns the last published workload version.
func (s *Standalone) Version() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Ports returns the opened ports.
func (s *Standalone) Ports() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ports)
}
