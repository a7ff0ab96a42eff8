package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/argo-rollouts-operator/cmd/argo-rollouts-operator/handlers"
)

// Run returns the command for the long-running mode.
func Run(configPath *string) *cobra.Command {
	var removeOnExit bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Install and supervise the workload until interrupted",
		Long: `Install the cluster resources, configure the workload process and keep
it configured. The operator reacts when the workload container becomes
reachable and re-evaluates the status periodically.

On SIGINT or SIGTERM the unit is stopped; with --remove-on-exit the
cluster resources are deleted as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var opts handlers.RunOptions
			if cmd.Flags().Changed("remove-on-exit") {
				opts.RemoveOnExit = &removeOnExit
			}
			return handlers.Run(cmd.Context(), *configPath, opts)
		},
	}

	cmd.Flags().BoolVar(&removeOnExit, "remove-on-exit", false, "Delete the cluster resources on shutdown")

	return cmd
}
