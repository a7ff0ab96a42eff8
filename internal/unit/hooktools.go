package unit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/imamik/argo-rollouts-operator/internal/status"
)

// HookTools publishes through the Juju hook tools.
type HookTools struct {
	runner  Runner
	timeout time.Duration
}

// NewHookTools creates HookTools. Each tool call is bounded by timeout.
func NewHookTools(runner Runner, timeout time.Duration) *HookTools {
	return &HookTools{runner: runner, timeout: timeout}
}

func (h *HookTools) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.runner.Run(ctx, name, args...)
}

// SetStatus runs status-set.
func (h *HookTools) SetStatus(ctx context.Context, s status.Status) error {
	args := []string{string(s.Kind)}
	if s.Message != "" {
		args = append(args, s.Message)
	}
	if _, err := h.run(ctx, "status-set", args...); err != nil {
		return fmt.Errorf("failed to set status %s: %w", s, err)
	}
	return nil
}

// SetWorkloadVersion runs application-version-set.
func (h *HookTools) SetWorkloadVersion(ctx context.Context, version string) error {
	if _, err := h.run(ctx, "application-version-set", version); err != nil {
		return fmt.Errorf("failed to set workload version: %w", err)
	}
	return nil
}

// OpenPort runs open-port for port/protocol.
func (h *HookTools) OpenPort(ctx context.Context, port int, protocol string) error {
	if _, err := h.run(ctx, "open-port", fmt.Sprintf("%d/%s", port, protocol)); err != nil {
		return fmt.Errorf("failed to open port %d/%s: %w", port, protocol, err)
	}
	return nil
}

// GetState reads a value from the charm state store, "" when unset.
func (h *HookTools) GetState(ctx context.Context, key string) (string, error) {
	out, err := h.run(ctx, "state-get", "--format=json", key)
	if err != nil {
		return "", fmt.Errorf("failed to get state %s: %w", key, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", nil
	}

	var value *string
	if err := json.Unmarshal([]byte(out), &value); err != nil {
		return "", fmt.Errorf("failed to decode state %s: %w", key, err)
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// SetState writes a value to the charm state store.
func (h *HookTools) SetState(ctx context.Context, key, value string) error {
	if _, err := h.run(ctx, "state-set", fmt.Sprintf("%s=%s", key, value)); err != nil {
		return fmt.Errorf("failed to set state %s: %w", key, err)
	}
	return nil
}
