package k8sclient

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Client applies and deletes single cluster objects.
type Client interface {
	// Apply creates or updates obj with Server-Side Apply.
	Apply(ctx context.Context, obj *unstructured.Unstructured) error

	// Delete removes obj. A missing object is not an error.
	Delete(ctx context.Context, obj *unstructured.Unstructured) error
}

// client implements the Client interface using k8s.io/client-go.
type client struct {
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	fieldManager  string
}

// LoadRESTConfig returns the in-cluster config when kubeconfigPath is empty,
// otherwise the config of the kubeconfig file's current context.
func LoadRESTConfig(kubeconfigPath string) (*rest.Config, error) {
	if kubeconfigPath == "" {
		cfg, err := rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load in-cluster config: %w", err)
		}
		return cfg, nil
	}

	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfigPath, err)
	}
	return cfg, nil
}

// NewForConfig creates a Client from a REST config.
func NewForConfig(restConfig *rest.Config, fieldManager string) (Client, error) {
	// Create dynamic client for applying arbitrary manifests
	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	// Create discovery client for REST mapping
	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	// The deferred mapper resets its cache on a miss, which picks up CRDs
	// installed earlier in the same pass.
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(discoveryClient))

	return NewFromClients(dynamicClient, mapper, fieldManager), nil
}

// NewFromClients creates a Client from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(dynamicClient dynamic.Interface, mapper meta.RESTMapper, fieldManager string) Client {
	return &client{
		dynamicClient: dynamicClient,
		mapper:        mapper,
		fieldManager:  fieldManager,
	}
}

// resourceFor resolves the dynamic resource interface for obj. The declared
// namespace is used when present. Namespaced kinds without one fall back to
// "default".
func (c *client) resourceFor(obj *unstructured.Unstructured) (dynamic.ResourceInterface, error) {
	gvk := obj.GroupVersionKind()
	if gvk.Kind == "" {
		return nil, fmt.Errorf("object has no kind set")
	}

	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to get REST mapping for %v: %w", gvk, err)
	}

	resource := c.dynamicClient.Resource(mapping.Resource)

	namespace := obj.GetNamespace()
	if namespace == "" && mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		namespace = "default"
	}
	if namespace != "" {
		return resource.Namespace(namespace), nil
	}
	return resource, nil
}
