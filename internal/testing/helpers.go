package testing

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"
	"time"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// ConfigMapTemplates returns a template filesystem with one file holding n
// namespaced ConfigMaps named <app_name>-0 .. <app_name>-(n-1).
func ConfigMapTemplates(n int) fstest.MapFS {
	var content string
	for i := range n {
		if i > 0 {
			content += "---\n"
		}
		content += fmt.Sprintf(`apiVersion: v1
kind: ConfigMap
metadata:
  name: {{ .app_name }}-%d
  namespace: {{ .namespace }}
`, i)
	}
	return fstest.MapFS{"resources.yaml": {Data: []byte(content)}}
}
