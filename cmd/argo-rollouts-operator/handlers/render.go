package handlers

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"sigs.k8s.io/yaml"

	"github.com/imamik/argo-rollouts-operator/internal/manifests"
)

// RenderOptions override the configuration for a render.
type RenderOptions struct {
	Namespace    string
	AppName      string
	TemplatesDir string
	Summary      bool
}

var (
	renderColorBlue = lipgloss.Color("#3b82f6")
	renderColorDim  = lipgloss.Color("#6b7280")

	renderHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(renderColorBlue)

	renderDimStyle = lipgloss.NewStyle().
			Foreground(renderColorDim)
)

// Render writes the rendered resources to out, as a YAML stream or as a
// summary table.
func Render(ctx context.Context, configPath string, opts RenderOptions, out io.Writer) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if opts.Namespace != "" {
		cfg.Namespace = opts.Namespace
	}
	if opts.AppName != "" {
		cfg.AppName = opts.AppName
	}
	if opts.TemplatesDir != "" {
		cfg.TemplatesDir = opts.TemplatesDir
	}

	source, err := resourceSource(cfg)
	if err != nil {
		return err
	}
	seq, err := source.Resources(ctx)
	if err != nil {
		return err
	}
	resources, err := manifests.Collect(seq)
	if err != nil {
		return err
	}

	if opts.Summary {
		_, err := io.WriteString(out, renderSummary(resources))
		return err
	}
	return writeYAML(out, resources)
}

func writeYAML(out io.Writer, resources []manifests.Resource) error {
	for _, res := range resources {
		data, err := yaml.Marshal(res.Object.Object)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", res.Key(), err)
		}
		if _, err := fmt.Fprintf(out, "---\n# Source: %s\n%s", res.Source, data); err != nil {
			return err
		}
	}
	return nil
}

// renderSummary produces a lipgloss-styled table of the resources.
func renderSummary(resources []manifests.Resource) string {
	kindWidth, nsWidth := len("KIND"), len("NAMESPACE")
	for _, res := range resources {
		kindWidth = max(kindWidth, len(res.Kind()))
		nsWidth = max(nsWidth, len(res.Namespace()))
	}
	row := fmt.Sprintf("  %%-%ds  %%-%ds  %%s", kindWidth, nsWidth)

	var b strings.Builder
	b.WriteString(renderHeaderStyle.Render(fmt.Sprintf(row, "KIND", "NAMESPACE", "NAME")))
	b.WriteString("\n")
	for _, res := range resources {
		ns := res.Namespace()
		if ns == "" {
			ns = "-"
		}
		b.WriteString(fmt.Sprintf(row, res.Kind(), ns, res.Name()))
		b.WriteString("\n")
	}
	b.WriteString(renderDimStyle.Render(fmt.Sprintf("  %d resources", len(resources))))
	b.WriteString("\n")
	return b.String()
}
