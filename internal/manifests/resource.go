package manifests

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Resource is one rendered cluster object.
type Resource struct {
	Object *unstructured.Unstructured

	// Source is the template path the object was rendered from.
	Source string
	// Document is the 1-based document index within Source.
	Document int
}

// Kind returns the object kind.
func (r Resource) Kind() string { return r.Object.GetKind() }

// Name returns metadata.name.
func (r Resource) Name() string { return r.Object.GetName() }

// Namespace returns metadata.namespace, empty for cluster-scoped objects.
func (r Resource) Namespace() string { return r.Object.GetNamespace() }

// Key identifies the resource for apply and delete.
func (r Resource) Key() string {
	if ns := r.Namespace(); ns != "" {
		return fmt.Sprintf("%s/%s/%s", r.Kind(), ns, r.Name())
	}
	return fmt.Sprintf("%s/%s", r.Kind(), r.Name())
}

// Source produces the resource sequence for one pass: templates are loaded
// and the namespace is read each time Resources is called.
type Source struct {
	FS fs.FS

	// Namespace, when set, is used instead of reading NamespaceFile.
	Namespace     string
	NamespaceFile string
	AppName       string
}

// Resources loads templates and builds the render context, returning the
// lazy resource sequence.
func (s Source) Resources(_ context.Context) (iter.Seq2[Resource, error], error) {
	templates, err := LoadTemplates(s.FS)
	if err != nil {
		return nil, err
	}

	namespace, err := s.namespace()
	if err != nil {
		return nil, err
	}

	return Render(templates, NewContext(namespace, s.AppName)), nil
}

func (s Source) namespace() (string, error) {
	if s.Namespace != "" {
		return s.Namespace, nil
	}

	// #nosec G304
	data, err := os.ReadFile(s.NamespaceFile)
	if err != nil {
		return "", fmt.Errorf("failed to read namespace file: %w", err)
	}

	namespace := strings.TrimSpace(string(data))
	if namespace == "" {
		return "", fmt.Errorf("namespace file %s is empty", s.NamespaceFile)
	}
	return namespace, nil
}

// Collect drains a sequence, stopping at the first error.
func Collect(seq iter.Seq2[Resource, error]) ([]Resource, error) {
	var resources []Resource
	for res, err := range seq {
		if err != nil {
			return resources, err
		}
		resources = append(resources, res)
	}
	return resources, nil
}
