package k8sclient

import (
	"errors"
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// APIError is a failed cluster API call for one object.
type APIError struct {
	Op        string
	Kind      string
	Namespace string
	Name      string
	Err       error
}

func newAPIError(op string, obj *unstructured.Unstructured, err error) *APIError {
	return &APIError{
		Op:        op,
		Kind:      obj.GetKind(),
		Namespace: obj.GetNamespace(),
		Name:      obj.GetName(),
		Err:       err,
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("failed to %s %s %s/%s: %v", e.Op, e.Kind, e.Namespace, e.Name, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAPIError reports whether err is or wraps an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
