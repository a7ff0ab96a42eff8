// Package main is the entry point for the argo-rollouts-operator.
//
// The operator installs the Argo Rollouts controller into a Kubernetes
// namespace and keeps its process configured in the workload container.
// Under Juju the charm's dispatch script runs this binary once per hook
// with JUJU_DISPATCH_PATH set; without Juju, "run" keeps it in the
// foreground and reacts to the container on its own.
//
// For detailed usage information, run:
//
//	argo-rollouts-operator --help
package main

import (
	"fmt"
	"os"

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/imamik/argo-rollouts-operator/cmd/argo-rollouts-operator/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	root := commands.Root()
	// Juju invokes the dispatch script without arguments.
	if len(os.Args) == 1 && os.Getenv("JUJU_DISPATCH_PATH") != "" {
		root.SetArgs([]string{"dispatch"})
	}

	if err := root.ExecuteContext(ctrl.SetupSignalHandler()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
