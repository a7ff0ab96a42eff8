package unit

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Runner runs an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args. Standard error is included in the returned
// error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	log.FromContext(ctx).V(1).Info("executing hook tool", "command", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...)

	var outBuilder, errBuilder strings.Builder
	cmd.Stdout = &outBuilder
	cmd.Stderr = &errBuilder

	if err := cmd.Run(); err != nil {
		return outBuilder.String(), fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(errBuilder.String()))
	}
	return outBuilder.String(), nil
}
