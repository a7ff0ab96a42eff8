package manifests

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates/*.yaml
var templatesFS embed.FS

// Template is one multi-document manifest template.
type Template struct {
	Path    string
	Content []byte
}

// Embedded returns the templates compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

// FS returns the template filesystem for dir, or the embedded templates when
// dir is empty.
func FS(dir string) fs.FS {
	if dir == "" {
		return Embedded()
	}
	return os.DirFS(dir)
}

// LoadTemplates reads every YAML file at the root of fsys in lexical order.
func LoadTemplates(fsys fs.FS) ([]Template, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	var templates []Template
	for _, entry := range entries {
		if entry.IsDir() || !isManifestFile(entry.Name()) {
			continue
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", entry.Name(), err)
		}
		templates = append(templates, Template{Path: entry.Name(), Content: content})
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("no YAML templates found")
	}

	return templates, nil
}

// isManifestFile checks if a filename is a YAML manifest file.
func isManifestFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
