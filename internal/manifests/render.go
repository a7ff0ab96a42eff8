package manifests

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

// Context keys available to templates as {{ .namespace }} and {{ .app_name }}.
const (
	KeyNamespace = "namespace"
	KeyAppName   = "app_name"
)

// Context holds the values substituted into templates. Referencing a key
// that is not present is an error.
type Context map[string]string

// NewContext builds the context for one render pass.
func NewContext(namespace, appName string) Context {
	return Context{
		KeyNamespace: namespace,
		KeyAppName:   appName,
	}
}

// TemplateError reports a template that could not be rendered or decoded.
type TemplateError struct {
	Template string
	// Document is the 1-based document index within the template, or 0 when
	// the whole template failed.
	Document int
	Err      error
}

func (e *TemplateError) Error() string {
	if e.Document > 0 {
		return fmt.Sprintf("template %s document %d: %v", e.Template, e.Document, e.Err)
	}
	return fmt.Sprintf("template %s: %v", e.Template, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}

// IsTemplateError reports whether err is or wraps a TemplateError.
func IsTemplateError(err error) bool {
	var tErr *TemplateError
	return errors.As(err, &tErr)
}

// Render returns a lazy sequence over the resources of all templates, in
// template order and document order within each template. Empty documents
// are skipped. The first failure is yielded as a *TemplateError and ends the
// sequence; resources yielded before it stay valid.
func Render(templates []Template, ctx Context) iter.Seq2[Resource, error] {
	return func(yield func(Resource, error) bool) {
		for _, tpl := range templates {
			processed, err := processTemplate(tpl, ctx)
			if err != nil {
				yield(Resource{}, &TemplateError{Template: tpl.Path, Err: err})
				return
			}

			reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(processed)))
			document := 0
			for {
				raw, err := reader.Read()
				if errors.Is(err, io.EOF) {
					break
				}
				document++
				if err != nil {
					yield(Resource{}, &TemplateError{Template: tpl.Path, Document: document, Err: err})
					return
				}

				obj, err := decodeDocument(raw)
				if err != nil {
					yield(Resource{}, &TemplateError{Template: tpl.Path, Document: document, Err: err})
					return
				}
				if obj == nil {
					continue
				}

				if !yield(Resource{Object: obj, Source: tpl.Path, Document: document}, nil) {
					return
				}
			}
		}
	}
}

// processTemplate executes a template with the sprig function map.
func processTemplate(tpl Template, ctx Context) ([]byte, error) {
	tmpl, err := template.New(tpl.Path).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(string(tpl.Content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]string(ctx)); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.Bytes(), nil
}

// decodeDocument converts one YAML document into an unstructured object.
// A document with no content yields nil.
func decodeDocument(raw []byte) (*unstructured.Unstructured, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	data, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}
	if trimmed := bytes.TrimSpace(data); bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, nil
	}

	obj := &unstructured.Unstructured{}
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	if obj.GetName() == "" {
		return nil, fmt.Errorf("%s has no metadata.name", obj.GetKind())
	}

	return obj, nil
}
