package testing

import (
	"context"
	"sync"

	"github.com/imamik/argo-rollouts-operator/internal/status"
)

// FakeUnit records what the operator publishes.
type FakeUnit struct {
	mu sync.Mutex

	Statuses []status.Status
	Versions []string
	Ports    []int

	StatusErr  error
	VersionErr error
	PortErr    error
}

// NewFakeUnit returns an empty FakeUnit.
func NewFakeUnit() *FakeUnit {
	return &FakeUnit{}
}

func (f *FakeUnit) SetStatus(_ context.Context, s status.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Statuses = append(f.Statuses, s)
	return f.StatusErr
}

func (f *FakeUnit) SetWorkloadVersion(_ context.Context, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Versions = append(f.Versions, version)
	return f.VersionErr
}

func (f *FakeUnit) OpenPort(_ context.Context, port int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Ports = append(f.Ports, port)
	return f.PortErr
}

// LastStatus returns the most recent status, or the zero Status.
func (f *FakeUnit) LastStatus() status.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Statuses) == 0 {
		return status.Status{}
	}
	return f.Statuses[len(f.Statuses)-1]
}

// LastVersion returns the most recent workload version, or "".
func (f *FakeUnit) LastVersion() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Versions) == 0 {
		return ""
	}
	return f.Versions[len(f.Versions)-1]
}
