// Package resources applies and deletes rendered manifests in order.
package resources

import (
	"context"
	"iter"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/imamik/argo-rollouts-operator/internal/k8sclient"
	"github.com/imamik/argo-rollouts-operator/internal/manifests"
)

// Applier walks a resource sequence and applies or deletes each object.
type Applier struct {
	client k8sclient.Client
}

// NewApplier creates an Applier backed by client.
func NewApplier(client k8sclient.Client) *Applier {
	return &Applier{client: client}
}

// Apply applies every resource of seq. It stops at the first render or
// cluster API error and returns the number of resources applied before it.
func (a *Applier) Apply(ctx context.Context, seq iter.Seq2[manifests.Resource, error]) (int, error) {
	logger := log.FromContext(ctx)

	applied := 0
	for res, err := range seq {
		if err != nil {
			return applied, err
		}
		if err := ctx.Err(); err != nil {
			return applied, err
		}

		if err := a.client.Apply(ctx, res.Object); err != nil {
			logger.Error(err, "failed to create resource",
				"kind", res.Kind(), "namespace", res.Namespace(), "name", res.Name(), "template", res.Source)
			return applied, err
		}
		applied++
	}

	logger.Info("applied kubernetes resources", "count", applied)
	return applied, nil
}

// Delete deletes every resource of seq, namespaced when the resource
// declares a namespace and cluster-scoped otherwise. Missing resources count
// as deleted. Like Apply it stops at the first render or cluster API error,
// leaving the remaining resources untouched.
func (a *Applier) Delete(ctx context.Context, seq iter.Seq2[manifests.Resource, error]) (int, error) {
	logger := log.FromContext(ctx)

	deleted := 0
	for res, err := range seq {
		if err != nil {
			return deleted, err
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}

		if err := a.client.Delete(ctx, res.Object); err != nil {
			logger.Error(err, "failed to delete resource",
				"kind", res.Kind(), "namespace", res.Namespace(), "name", res.Name(), "template", res.Source)
			return deleted, err
		}
		deleted++
	}

	logger.Info("deleted kubernetes resources", "count", deleted)
	return deleted, nil
}
