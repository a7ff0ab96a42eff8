package operator

import (
	"context"
	"errors"
	"iter"

	"k8s.io/utils/clock"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/argo-rollouts-operator/internal/k8sclient"
	"github.com/imamik/argo-rollouts-operator/internal/layer"
	"github.com/imamik/argo-rollouts-operator/internal/manifests"
	"github.com/imamik/argo-rollouts-operator/internal/status"
	"github.com/imamik/argo-rollouts-operator/internal/unit"
)

// ResourceSource renders the managed resources.
type ResourceSource interface {
	Resources(ctx context.Context) (iter.Seq2[manifests.Resource, error], error)
}

// ResourceApplier applies or deletes a rendered sequence.
type ResourceApplier interface {
	Apply(ctx context.Context, seq iter.Seq2[manifests.Resource, error]) (int, error)
	Delete(ctx context.Context, seq iter.Seq2[manifests.Resource, error]) (int, error)
}

// LayerReconciler converges the supervisor plan.
type LayerReconciler interface {
	Reconcile(ctx context.Context, desired layer.Desired) (layer.Outcome, error)
}

// StatusEvaluator derives the status from the running workload.
type StatusEvaluator interface {
	Evaluate(ctx context.Context) status.Status
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Source    ResourceSource
	Applier   ResourceApplier
	Layer     LayerReconciler
	Desired   layer.Desired
	Evaluator StatusEvaluator
	Versions  layer.VersionSource
	Unit      unit.Unit
	Store     StateStore
	Clock     clock.PassiveClock
}

// Controller executes planned transitions. It is not safe for concurrent
// use; the long-running mode serializes calls through a Loop.
type Controller struct {
	deps Deps
}

// NewController creates a Controller. The unit is instrumented with metrics.
func NewController(deps Deps) *Controller {
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	if deps.Store == nil {
		deps.Store = NewMemoryStateStore()
	}
	deps.Unit = InstrumentUnit(deps.Unit)
	return &Controller{deps: deps}
}

// Handle runs one trigger to completion and persists the resulting state.
//
// Failures of the cluster API and the supervisor are absorbed into the unit
// status. Any other error, including render errors and context cancellation,
// is returned and leaves the persisted state untouched.
func (c *Controller) Handle(ctx context.Context, trigger Trigger) (State, error) {
	logger := log.FromContext(ctx).WithValues("trigger", string(trigger))
	ctx = log.IntoContext(ctx, logger)
	start := c.deps.Clock.Now()

	current, err := c.deps.Store.Load(ctx)
	if err != nil {
		logger.Error(err, "failed to load lifecycle state, starting over")
		current = StateUninitialized
	}

	next, actions := Plan(current, trigger)
	logger.Info("handling trigger", "state", string(current), "next", string(next), "actions", len(actions))

	final, err := c.execute(ctx, next, actions)
	result := "success"
	switch {
	case err != nil:
		result = "error"
	case final == StateBlocked:
		result = "blocked"
	}
	recordReconcileMetric(trigger, result, c.deps.Clock.Since(start).Seconds())

	if err != nil {
		return current, err
	}
	if err := c.deps.Store.Save(ctx, final); err != nil {
		return final, err
	}
	logger.Info("trigger handled", "state", string(final))
	return final, nil
}

func (c *Controller) execute(ctx context.Context, state State, actions []Action) (State, error) {
	logger := log.FromContext(ctx)

	for _, action := range actions {
		logger.V(1).Info("running action", "action", action.Kind.String())

		switch action.Kind {
		case ActionSetStatus:
			c.setStatus(ctx, action.Status)

		case ActionApplyResources:
			seq, err := c.deps.Source.Resources(ctx)
			if err != nil {
				return state, err
			}
			applied, err := c.deps.Applier.Apply(ctx, seq)
			recordResourcesMetric("apply", applied)
			if err != nil {
				if !k8sclient.IsAPIError(err) {
					return state, err
				}
				c.setStatus(ctx, status.Blocked(status.MsgResourceCreationFailed))
				return StateBlocked, nil
			}

		case ActionReconcileLayer:
			outcome, err := c.deps.Layer.Reconcile(ctx, c.deps.Desired)
			if err != nil {
				if isContextError(err) {
					return state, err
				}
				logger.Error(err, "failed to configure workload process")
				c.setStatus(ctx, status.Blocked(status.MsgLayerFailed))
				return StateBlocked, nil
			}
			if outcome == layer.Unavailable {
				c.setStatus(ctx, status.Waiting(status.MsgWaitingForPebble))
				return StateWaiting, nil
			}

		case ActionEvaluateStatus:
			st := c.deps.Evaluator.Evaluate(ctx)
			c.setStatus(ctx, st)
			if st.IsActive() {
				state = StateActive
			} else {
				state = StateWaiting
			}

		case ActionRefreshVersion:
			// An empty probe result keeps the last published version.
			if version := c.deps.Versions.Version(ctx); version != "" {
				if err := c.deps.Unit.SetWorkloadVersion(ctx, version); err != nil {
					logger.Error(err, "failed to set workload version")
				}
			}

		case ActionDeleteResources:
			seq, err := c.deps.Source.Resources(ctx)
			if err != nil {
				logger.Error(err, "failed to render resources for deletion")
				continue
			}
			deleted, err := c.deps.Applier.Delete(ctx, seq)
			recordResourcesMetric("delete", deleted)
			if err != nil {
				if !k8sclient.IsAPIError(err) {
					return state, err
				}
				logger.Error(err, "failed to delete resources, continuing removal", "deleted", deleted)
			}
		}
	}
	return state, nil
}

func (c *Controller) setStatus(ctx context.Context, s status.Status) {
	if err := c.deps.Unit.SetStatus(ctx, s); err != nil {
		log.FromContext(ctx).Error(err, "failed to set unit status", "status", s.String())
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
