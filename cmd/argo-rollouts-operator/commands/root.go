// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"flag"
	"os"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Root returns the root command for the argo-rollouts-operator CLI.
func Root() *cobra.Command {
	var configPath string

	opts := zap.Options{
		Development: os.Getenv("DEBUG") == "true" || isatty.IsTerminal(os.Stderr.Fd()),
		TimeEncoder: zapcore.ISO8601TimeEncoder,
		ZapOpts:     []uberzap.Option{uberzap.AddCaller()},
	}
	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	opts.BindFlags(goFlags)

	cmd := &cobra.Command{
		Use:           "argo-rollouts-operator",
		Short:         "Operate the Argo Rollouts controller as a sidecar workload",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			ctrl.SetLogger(newLogger(&opts))
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (optional)")
	cmd.PersistentFlags().AddGoFlagSet(goFlags)

	cmd.AddCommand(Dispatch(&configPath))
	cmd.AddCommand(Run(&configPath))
	cmd.AddCommand(Render(&configPath))
	cmd.AddCommand(Version())

	return cmd
}

// newLogger writes to stderr, which Juju forwards to the debug log.
func newLogger(opts *zap.Options) logr.Logger {
	return zap.New(zap.UseFlagOptions(opts), zap.WriteTo(os.Stderr)).WithName("argo-rollouts-operator")
}
