package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/imamik/argo-rollouts-operator/cmd/argo-rollouts-operator/handlers"
)

// Render returns the command that prints the rendered manifests.
//
// Optional flags:
//
//	--namespace, -n: Namespace to render for (default: from configuration)
//	--app-name: Application name (default: from configuration)
//	--summary: Print a resource table instead of YAML
func Render(configPath *string) *cobra.Command {
	var opts handlers.RenderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the cluster resources without applying them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Render(cmd.Context(), *configPath, opts, cmd.OutOrStdout())
		},
	}

	addRenderFlags(cmd.Flags(), &opts)

	return cmd
}

func addRenderFlags(fs *pflag.FlagSet, opts *handlers.RenderOptions) {
	fs.StringVarP(&opts.Namespace, "namespace", "n", "", "Namespace to render for")
	fs.StringVar(&opts.AppName, "app-name", "", "Application name")
	fs.StringVar(&opts.TemplatesDir, "templates", "", "Directory with templates (default: embedded)")
	fs.BoolVar(&opts.Summary, "summary", false, "Print a resource table instead of YAML")
}
