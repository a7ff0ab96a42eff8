package handlers

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/argo-rollouts-operator/internal/operator"
)

// Dispatch handles a single Juju hook. The lifecycle state is kept in the
// unit state store between hooks.
func Dispatch(ctx context.Context, configPath, hook string) error {
	logger := log.FromContext(ctx).WithValues("hook", hook)

	trigger, ok := operator.TriggerFromHook(hook)
	if !ok {
		logger.V(1).Info("hook not handled")
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	tools := newHookUnit(cfg)
	controller, _, err := buildController(cfg, tools, operator.NewUnitStateStore(tools))
	if err != nil {
		return err
	}

	state, err := controller.Handle(log.IntoContext(ctx, logger), trigger)
	if err != nil {
		return fmt.Errorf("hook %s failed: %w", hook, err)
	}

	logger.Info("hook handled", "state", string(state))
	return nil
}
