package status

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/argo-rollouts-operator/internal/supervisor"
)

// Evaluator derives the status from the live supervisor state.
type Evaluator struct {
	supervisor supervisor.Supervisor
	service    string
}

// NewEvaluator creates an Evaluator for the named service.
func NewEvaluator(sup supervisor.Supervisor, service string) *Evaluator {
	return &Evaluator{supervisor: sup, service: service}
}

// Evaluate returns Active when the service is running and Waiting otherwise.
// Errors while querying the supervisor are logged and reported as Waiting.
func (e *Evaluator) Evaluate(ctx context.Context) Status {
	if !e.supervisor.CanConnect(ctx) {
		return Derive(false, false)
	}

	infos, err := e.supervisor.Services(ctx, e.service)
	if err != nil {
		log.FromContext(ctx).Info("failed to read service state", "service", e.service, "error", err.Error())
		return Derive(false, false)
	}

	running := false
	for _, info := range infos {
		if info.Name == e.service && info.IsRunning() {
			running = true
			break
		}
	}
	return Derive(true, running)
}
