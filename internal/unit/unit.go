package unit

import (
	"context"

	"github.com/imamik/argo-rollouts-operator/internal/status"
)

// Unit is where status, workload version and ports are published.
type Unit interface {
	SetStatus(ctx context.Context, s status.Status) error
	SetWorkloadVersion(ctx context.Context, version string) error
	OpenPort(ctx context.Context, port int, protocol string) error
}
