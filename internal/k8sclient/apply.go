package k8sclient

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Apply applies a single unstructured object using Server-Side Apply.
// Conflicts with other field managers are forced.
func (c *client) Apply(ctx context.Context, obj *unstructured.Unstructured) error {
	resource, err := c.resourceFor(obj)
	if err != nil {
		return newAPIError("apply", obj, err)
	}

	// Convert object to JSON for the patch
	data, err := obj.MarshalJSON()
	if err != nil {
		return newAPIError("apply", obj, fmt.Errorf("failed to marshal object to JSON: %w", err))
	}

	opts := metav1.PatchOptions{
		FieldManager: c.fieldManager,
		Force:        ptr.To(true),
	}

	if _, err := resource.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts); err != nil {
		return newAPIError("apply", obj, fmt.Errorf("server-side apply failed: %w", err))
	}

	log.FromContext(ctx).V(1).Info("applied resource",
		"kind", obj.GetKind(), "namespace", obj.GetNamespace(), "name", obj.GetName())
	return nil
}
