// Package handlers implements the argo-rollouts-operator commands.
package handlers

import (
	"errors"
	"fmt"

	"github.com/imamik/argo-rollouts-operator/internal/config"
	"github.com/imamik/argo-rollouts-operator/internal/k8sclient"
	"github.com/imamik/argo-rollouts-operator/internal/layer"
	"github.com/imamik/argo-rollouts-operator/internal/manifests"
	"github.com/imamik/argo-rollouts-operator/internal/operator"
	"github.com/imamik/argo-rollouts-operator/internal/resources"
	"github.com/imamik/argo-rollouts-operator/internal/status"
	"github.com/imamik/argo-rollouts-operator/internal/supervisor"
	"github.com/imamik/argo-rollouts-operator/internal/unit"
	"github.com/imamik/argo-rollouts-operator/internal/version"
)

// hookUnit is the unit surface available inside a Juju hook.
type hookUnit interface {
	unit.Unit
	operator.KeyValue
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	loadConfig = config.Load

	newClusterClient = func(cfg *config.Config) (k8sclient.Client, error) {
		restConfig, err := k8sclient.LoadRESTConfig(cfg.Kubeconfig)
		if err != nil {
			return nil, err
		}
		return k8sclient.NewForConfig(restConfig, cfg.FieldManager)
	}

	newSupervisor = func(cfg *config.Config) (supervisor.Supervisor, error) {
		return supervisor.NewPebble(cfg.PebbleSocket(), cfg.Pebble.ChangeTimeout)
	}

	newVersionSource = func(cfg *config.Config) layer.VersionSource {
		return version.NewProbe(cfg.MetricsURL(), cfg.MetricsTimeout)
	}

	newHookUnit = func(cfg *config.Config) hookUnit {
		return unit.NewHookTools(unit.ExecRunner{}, cfg.HookToolTimeout)
	}

	newStandaloneUnit = func() *unit.Standalone {
		return unit.NewStandalone()
	}
)

var errNoAppName = errors.New("application name is unknown: set app_name, ARGO_ROLLOUTS_APP_NAME or JUJU_UNIT_NAME")

// resourceSource returns the manifest source for cfg.
func resourceSource(cfg *config.Config) (manifests.Source, error) {
	appName := cfg.ResolveAppName()
	if appName == "" {
		return manifests.Source{}, errNoAppName
	}
	return manifests.Source{
		FS:            manifests.FS(cfg.TemplatesDir),
		Namespace:     cfg.Namespace,
		NamespaceFile: cfg.NamespaceFile,
		AppName:       appName,
	}, nil
}

// buildController wires the lifecycle controller for cfg around u.
func buildController(cfg *config.Config, u unit.Unit, store operator.StateStore) (*operator.Controller, supervisor.Supervisor, error) {
	source, err := resourceSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	cluster, err := newClusterClient(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	sup, err := newSupervisor(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pebble client: %w", err)
	}

	versions := newVersionSource(cfg)
	u = operator.InstrumentUnit(u)

	manager := layer.NewManager(sup, versions, u, cfg.MetricsPort, layer.Options{
		Attempts:  cfg.Pebble.RetryAttempts,
		BaseDelay: cfg.Pebble.RetryBaseDelay,
		OnAttempt: operator.RecordSupervisorAttempt,
	})

	controller := operator.NewController(operator.Deps{
		Source:    source,
		Applier:   resources.NewApplier(cluster),
		Layer:     manager,
		Desired:   layer.ForConfig(cfg),
		Evaluator: status.NewEvaluator(sup, cfg.ServiceName),
		Versions:  versions,
		Unit:      u,
		Store:     store,
	})
	return controller, sup, nil
}
