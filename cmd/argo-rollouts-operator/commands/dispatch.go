package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/imamik/argo-rollouts-operator/cmd/argo-rollouts-operator/handlers"
)

// Dispatch returns the command that handles one Juju hook.
//
// The hook is taken from the optional argument, falling back to
// JUJU_DISPATCH_PATH. Hooks the operator does not act on exit cleanly.
func Dispatch(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch [hook]",
		Short: "Handle a single Juju hook",
		Long: `Handle a single Juju hook and exit.

Examples:
  # Called by the charm dispatch script
  JUJU_DISPATCH_PATH=hooks/install argo-rollouts-operator dispatch

  # Explicit hook
  argo-rollouts-operator dispatch hooks/update-status`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hook := os.Getenv("JUJU_DISPATCH_PATH")
			if len(args) == 1 {
				hook = args[0]
			}
			return handlers.Dispatch(cmd.Context(), *configPath, hook)
		},
	}
}
