package k8sclient

import (
	"context"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Delete removes a single object. NotFound and an unknown kind (for example
// a custom resource whose CRD is already gone) count as deleted.
func (c *client) Delete(ctx context.Context, obj *unstructured.Unstructured) error {
	logger := log.FromContext(ctx).WithValues(
		"kind", obj.GetKind(), "namespace", obj.GetNamespace(), "name", obj.GetName())

	resource, err := c.resourceFor(obj)
	if err != nil {
		if meta.IsNoMatchError(err) {
			logger.V(1).Info("kind no longer served, skipping delete")
			return nil
		}
		return newAPIError("delete", obj, err)
	}

	policy := metav1.DeletePropagationBackground
	err = resource.Delete(ctx, obj.GetName(), metav1.DeleteOptions{PropagationPolicy: &policy})
	switch {
	case err == nil:
		logger.V(1).Info("deleted resource")
		return nil
	case apierrors.IsNotFound(err):
		logger.V(1).Info("resource already absent")
		return nil
	default:
		return newAPIError("delete", obj, err)
	}
}
