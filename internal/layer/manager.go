package layer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/argo-rollouts-operator/internal/supervisor"
	"github.com/imamik/argo-rollouts-operator/internal/util/retry"
)

// Outcome is the result of a reconcile.
type Outcome int

const (
	// Unchanged means the plan already matched.
	Unchanged Outcome = iota
	// Updated means the layer was added and the plan replanned.
	Updated
	// Unavailable means the supervisor stayed unreachable for every attempt.
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Updated:
		return "updated"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// VersionSource reports the running workload version, "" when unknown.
type VersionSource interface {
	Version(ctx context.Context) string
}

// Publisher receives what the operator learns about the workload.
type Publisher interface {
	SetWorkloadVersion(ctx context.Context, version string) error
	OpenPort(ctx context.Context, port int, protocol string) error
}

// Options tunes the retry policy.
type Options struct {
	Attempts  int
	BaseDelay time.Duration
	Clock     clock.Clock

	// OnAttempt is called after every attempt with "ok", "unavailable" or
	// "error".
	OnAttempt func(result string)
}

// Manager reconciles the desired layer.
type Manager struct {
	supervisor supervisor.Supervisor
	versions   VersionSource
	publisher  Publisher
	port       int
	opts       Options
}

// NewManager creates a Manager. port is the metrics port opened after a
// successful reconcile.
func NewManager(sup supervisor.Supervisor, versions VersionSource, publisher Publisher, port int, opts Options) *Manager {
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Manager{
		supervisor: sup,
		versions:   versions,
		publisher:  publisher,
		port:       port,
		opts:       opts,
	}
}

// Reconcile brings the plan to the desired layer. Unavailability is retried
// and reported as the Unavailable outcome with a nil error. Other supervisor
// errors are returned.
func (m *Manager) Reconcile(ctx context.Context, desired Desired) (Outcome, error) {
	logger := log.FromContext(ctx).WithValues("service", desired.Service)

	outcome := Unchanged
	// Carried across attempts so a layer added before the supervisor went
	// away is replanned without being added again.
	pendingReplan := false

	err := retry.Do(ctx, func(attempt int) error {
		err := m.reconcileOnce(ctx, desired, &pendingReplan, &outcome)
		m.recordAttempt(err)
		if err != nil {
			logger.V(1).Info("layer reconcile attempt failed", "attempt", attempt, "error", err.Error())
		}
		return err
	},
		retry.WithMaxAttempts(m.opts.Attempts),
		retry.WithDelay(retry.Linear(m.opts.BaseDelay)),
		retry.WithClock(m.opts.Clock),
		retry.WithRetryable(func(err error) bool { return errors.Is(err, supervisor.ErrUnavailable) }),
		retry.WithOnRetry(func(attempt int, delay time.Duration, _ error) {
			logger.Info("pebble not ready, retrying", "attempt", attempt, "delay", delay.String())
		}),
	)

	switch {
	case err == nil:
	case errors.Is(err, supervisor.ErrUnavailable) && ctx.Err() == nil:
		logger.Info("pebble unavailable, giving up for now", "attempts", m.opts.Attempts)
		return Unavailable, nil
	default:
		return outcome, fmt.Errorf("failed to reconcile layer %s: %w", desired.Label, err)
	}

	m.publish(ctx, desired.Service)
	return outcome, nil
}

func (m *Manager) reconcileOnce(ctx context.Context, desired Desired, pendingReplan *bool, outcome *Outcome) error {
	logger := log.FromContext(ctx)

	if !m.supervisor.CanConnect(ctx) {
		return supervisor.ErrUnavailable
	}

	if !*pendingReplan {
		plan, err := m.supervisor.Plan(ctx)
		if err != nil {
			return err
		}

		state := Compare(plan, desired)
		logger.V(1).Info("compared layer with plan", "state", state.String())
		if state == LayerPresentSame {
			*outcome = Unchanged
			return nil
		}
		if state == LayerPresentDifferent {
			logger.V(1).Info("layer differs from plan", "diff", Diff(plan, desired))
		}

		if err := m.supervisor.AddLayer(ctx, desired.Label, desired.Layer, true); err != nil {
			return err
		}
		logger.Info("added updated layer to pebble plan", "label", desired.Label)
		*pendingReplan = true
	}

	if err := m.supervisor.Replan(ctx); err != nil {
		return err
	}
	*pendingReplan = false
	*outcome = Updated
	logger.Info("replanned service", "service", desired.Service)
	return nil
}

// publish sets the workload version and opens the metrics port. Failures
// are logged.
func (m *Manager) publish(ctx context.Context, service string) {
	logger := log.FromContext(ctx)

	version := ""
	if infos, err := m.supervisor.Services(ctx, service); err == nil && len(infos) > 0 {
		version = m.versions.Version(ctx)
	}
	if err := m.publisher.SetWorkloadVersion(ctx, version); err != nil {
		logger.Error(err, "failed to set workload version")
	}
	if err := m.publisher.OpenPort(ctx, m.port, "tcp"); err != nil {
		logger.Error(err, "failed to open metrics port", "port", m.port)
	}
}

func (m *Manager) recordAttempt(err error) {
	if m.opts.OnAttempt == nil {
		return
	}
	switch {
	case err == nil:
		m.opts.OnAttempt("ok")
	case errors.Is(err, supervisor.ErrUnavailable):
		m.opts.OnAttempt("unavailable")
	default:
		m.opts.OnAttempt("error")
	}
}
