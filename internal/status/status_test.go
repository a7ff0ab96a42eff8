package status_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/argo-rollouts-operator/internal/status"
	"github.com/imamik/argo-rollouts-operator/internal/supervisor"
	testutil "github.com/imamik/argo-rollouts-operator/internal/testing"
)

func TestDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		reachable bool
		running   bool
		want      status.Kind
	}{
		{name: "unreachable and stopped", reachable: false, running: false, want: status.KindWaiting},
		{name: "unreachable ignores running", reachable: false, running: true, want: status.KindWaiting},
		{name: "reachable but not running", reachable: true, running: false, want: status.KindWaiting},
		{name: "reachable and running", reachable: true, running: true, want: status.KindActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := status.Derive(tt.reachable, tt.running)
			assert.Equal(t, tt.want, got.Kind)
			if tt.want == status.KindWaiting {
				assert.Equal(t, status.MsgWaitingForService, got.Message)
			}
		})
	}
}

func TestStatus_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "active", status.Active().String())
	assert.Equal(t, "blocked: kubernetes resource creation failed", status.Blocked(status.MsgResourceCreationFailed).String())
	assert.True(t, status.Active().IsActive())
	assert.False(t, status.Maintenance("x").IsActive())
}

func TestEvaluator(t *testing.T) {
	t.Parallel()

	service := supervisor.Service{Override: "replace", Command: "/bin/rollouts-controller", Startup: supervisor.StartupEnabled}

	tests := []struct {
		name string
		sup  func() *testutil.FakeSupervisor
		want status.Status
	}{
		{
			name: "unreachable",
			sup:  func() *testutil.FakeSupervisor { return testutil.NewFakeSupervisor().Unreachable(1) },
			want: status.Waiting(status.MsgWaitingForService),
		},
		{
			name: "service absent",
			sup:  testutil.NewFakeSupervisor,
			want: status.Waiting(status.MsgWaitingForService),
		},
		{
			name: "service stopped",
			sup: func() *testutil.FakeSupervisor {
				return testutil.NewFakeSupervisor().WithService("argo-rollouts", service, false)
			},
			want: status.Waiting(status.MsgWaitingForService),
		},
		{
			name: "service running",
			sup: func() *testutil.FakeSupervisor {
				return testutil.NewFakeSupervisor().WithService("argo-rollouts", service, true)
			},
			want: status.Active(),
		},
		{
			name: "other service running",
			sup: func() *testutil.FakeSupervisor {
				return testutil.NewFakeSupervisor().WithService("other", service, true)
			},
			want: status.Waiting(status.MsgWaitingForService),
		},
		{
			name: "services query fails",
			sup: func() *testutil.FakeSupervisor {
				sup := testutil.NewFakeSupervisor().WithService("argo-rollouts", service, true)
				sup.ServicesErr = errors.New("connection reset")
				return sup
			},
			want: status.Waiting(status.MsgWaitingForService),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			evaluator := status.NewEvaluator(tt.sup(), "argo-rollouts")
			assert.Equal(t, tt.want, evaluator.Evaluate(testutil.TestContext(t)))
		})
	}
}
