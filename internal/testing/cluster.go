package testing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/imamik/argo-rollouts-operator/internal/k8sclient"
)

// FakeClusterClient is a k8sclient.Client that records applied and deleted
// objects by key. Injected errors are returned as *k8sclient.APIError, the
// way the real client reports them.
type FakeClusterClient struct {
	mu sync.Mutex

	failApplyAt int
	applyErr    error
	deleteErrs  map[string]error

	ApplyCalls  int
	DeleteCalls int
	Applied     []string
	Deleted     []string
}

// NewFakeClusterClient returns a client that accepts every call.
func NewFakeClusterClient() *FakeClusterClient {
	return &FakeClusterClient{deleteErrs: map[string]error{}}
}

// FailOnApply makes the nth Apply call (1-based) return err.
func (f *FakeClusterClient) FailOnApply(n int, err error) *FakeClusterClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failApplyAt = n
	f.applyErr = err
	return f
}

// FailDelete makes deleting the object with key return err.
func (f *FakeClusterClient) FailDelete(key string, err error) *FakeClusterClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErrs[key] = err
	return f
}

func (f *FakeClusterClient) Apply(_ context.Context, obj *unstructured.Unstructured) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ApplyCalls++
	if f.ApplyCalls == f.failApplyAt {
		return asAPIError("apply", obj, f.applyErr)
	}
	f.Applied = append(f.Applied, ObjectKey(obj))
	return nil
}

func (f *FakeClusterClient) Delete(_ context.Context, obj *unstructured.Unstructured) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	key := ObjectKey(obj)
	if err, ok := f.deleteErrs[key]; ok {
		return asAPIError("delete", obj, err)
	}
	f.Deleted = append(f.Deleted, key)
	return nil
}

func asAPIError(op string, obj *unstructured.Unstructured, err error) error {
	var apiErr *k8sclient.APIError
	if errors.As(err, &apiErr) {
		return err
	}
	return &k8sclient.APIError{Op: op, Kind: obj.GetKind(), Namespace: obj.GetNamespace(), Name: obj.GetName(), Err: err}
}

// ObjectKey formats kind/namespace/name, omitting an empty namespace.
func ObjectKey(obj *unstructured.Unstructured) string {
	if ns := obj.GetNamespace(); ns != "" {
		return fmt.Sprintf("%s/%s/%s", obj.GetKind(), ns, obj.GetName())
	}
	return fmt.Sprintf("%s/%s", obj.GetKind(), obj.GetName())
}
