package layer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/imamik/argo-rollouts-operator/internal/config"
	"github.com/imamik/argo-rollouts-operator/internal/layer"
	"github.com/imamik/argo-rollouts-operator/internal/supervisor"
	testutil "github.com/imamik/argo-rollouts-operator/internal/testing"
)

func desiredLayer() layer.Desired {
	return layer.ForConfig(config.Default())
}

func desiredService() supervisor.Service {
	return *desiredLayer().Layer.Services["argo-rollouts"]
}

func desiredServicePtr() *supervisor.Service {
	svc := desiredService()
	return &svc
}

type fixture struct {
	sup      *testutil.FakeSupervisor
	unit     *testutil.FakeUnit
	versions *testutil.MockVersionSource
	clock    *clocktesting.FakeClock
	attempts []string
	manager  *layer.Manager
}

func newFixture(sup supervisor.Supervisor, fake *testutil.FakeSupervisor) *fixture {
	f := &fixture{
		sup:      fake,
		unit:     testutil.NewFakeUnit(),
		versions: testutil.NewMockVersionSource().WithVersion("v1.6.6+737ca89"),
		clock:    clocktesting.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	f.manager = layer.NewManager(sup, f.versions, f.unit, 8090, layer.Options{
		Attempts:  3,
		BaseDelay: 2 * time.Second,
		Clock:     f.clock,
		OnAttempt: func(result string) { f.attempts = append(f.attempts, result) },
	})
	return f
}

func newFakeFixture(sup *testutil.FakeSupervisor) *fixture {
	return newFixture(sup, sup)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	desired := desiredLayer()
	changed := desiredService()
	changed.Command = "/bin/rollouts-controller --loglevel debug"

	tests := []struct {
		name     string
		services map[string]*supervisor.Service
		want     layer.State
	}{
		{name: "empty plan", services: map[string]*supervisor.Service{}, want: layer.NoLayer},
		{
			name:     "unrelated service only",
			services: map[string]*supervisor.Service{"other": {Command: "sleep"}},
			want:     layer.NoLayer,
		},
		{
			name:     "different command",
			services: map[string]*supervisor.Service{"argo-rollouts": &changed},
			want:     layer.LayerPresentDifferent,
		},
		{
			name: "same service next to others",
			services: map[string]*supervisor.Service{
				"argo-rollouts": desiredServicePtr(),
				"other":         {Command: "sleep"},
			},
			want: layer.LayerPresentSame,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := layer.Compare(&supervisor.Plan{Services: tt.services}, desired)
			assert.Equal(t, tt.want, got, got.String())
		})
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	desired := desiredLayer()
	assert.Empty(t, layer.Diff(&supervisor.Plan{Services: desired.Layer.Services}, desired))

	changed := desiredService()
	changed.Command = "/bin/other"
	assert.Contains(t, layer.Diff(&supervisor.Plan{Services: map[string]*supervisor.Service{"argo-rollouts": &changed}}, desired), "/bin/other")
}

func TestForConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Command = "/usr/local/bin/rollouts"

	desired := layer.ForConfig(cfg)
	assert.Equal(t, "argo-rollouts", desired.Label)
	require.Contains(t, desired.Layer.Services, "argo-rollouts")

	svc := desired.Layer.Services["argo-rollouts"]
	assert.Equal(t, "replace", svc.Override)
	assert.Equal(t, "/usr/local/bin/rollouts", svc.Command)
	assert.Equal(t, supervisor.StartupEnabled, svc.Startup)
	assert.Equal(t, "restart", svc.OnFailure)
}

func TestReconcile_NoWritesWhenEqual(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor().WithService("argo-rollouts", desiredService(), true)
	f := newFakeFixture(sup)

	outcome, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
	require.NoError(t, err)

	assert.Equal(t, layer.Unchanged, outcome)
	assert.Equal(t, 0, sup.Writes())
	assert.Equal(t, []string{"v1.6.6+737ca89"}, f.unit.Versions)
	assert.Equal(t, []int{8090}, f.unit.Ports)
}

func TestReconcile_OtherServicesDoNotTriggerWrites(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor().
		WithService("argo-rollouts", desiredService(), true).
		WithService("log-forwarder", supervisor.Service{Override: "replace", Command: "/bin/forward"}, true)
	f := newFakeFixture(sup)

	outcome, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
	require.NoError(t, err)

	assert.Equal(t, layer.Unchanged, outcome)
	assert.Equal(t, 0, sup.Writes())
}

func TestReconcile_OneAddAndReplanWhenDifferent(t *testing.T) {
	t.Parallel()

	stale := desiredService()
	stale.Command = "/bin/old-controller"

	tests := []struct {
		name string
		sup  *testutil.FakeSupervisor
	}{
		{name: "no layer", sup: testutil.NewFakeSupervisor()},
		{name: "different layer", sup: testutil.NewFakeSupervisor().WithService("argo-rollouts", stale, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFakeFixture(tt.sup)

			outcome, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
			require.NoError(t, err)

			assert.Equal(t, layer.Updated, outcome)
			assert.Equal(t, 1, tt.sup.AddLayerCalls)
			assert.Equal(t, 1, tt.sup.ReplanCalls)
			assert.Equal(t, []string{"argo-rollouts"}, tt.sup.Labels)

			plan, err := tt.sup.Plan(context.Background())
			require.NoError(t, err)
			assert.Equal(t, layer.LayerPresentSame, layer.Compare(plan, desiredLayer()))
		})
	}
}

func TestReconcile_RepeatedReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor()
	f := newFakeFixture(sup)
	ctx := testutil.TestContext(t)

	first, err := f.manager.Reconcile(ctx, desiredLayer())
	require.NoError(t, err)
	second, err := f.manager.Reconcile(ctx, desiredLayer())
	require.NoError(t, err)

	assert.Equal(t, layer.Updated, first)
	assert.Equal(t, layer.Unchanged, second)
	assert.Equal(t, 2, sup.Writes())
}

func TestReconcile_ExhaustedRetriesReportUnavailable(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor().Unreachable(10)
	f := newFakeFixture(sup)
	start := f.clock.Now()

	outcome, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
	require.NoError(t, err)

	assert.Equal(t, layer.Unavailable, outcome)
	assert.Equal(t, 3, sup.CanConnectCalls, "exactly three attempts")
	assert.Equal(t, []string{"unavailable", "unavailable", "unavailable"}, f.attempts)
	// Linear delays of 2s and 4s between the three attempts.
	assert.Equal(t, 6*time.Second, f.clock.Since(start))

	assert.Equal(t, 0, sup.Writes())
	assert.Empty(t, f.unit.Versions, "nothing is published without a reconciled layer")
	assert.Empty(t, f.unit.Ports)
	f.versions.AssertNotCalled(t, "Version")
}

func TestReconcile_ReachableOnSecondAttempt(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor().Unreachable(1)
	f := newFakeFixture(sup)
	start := f.clock.Now()

	outcome, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
	require.NoError(t, err)

	assert.Equal(t, layer.Updated, outcome)
	assert.Equal(t, []string{"unavailable", "ok"}, f.attempts)
	assert.Equal(t, 2*time.Second, f.clock.Since(start))
	assert.Equal(t, "v1.6.6+737ca89", f.unit.LastVersion())
	assert.Equal(t, []int{8090}, f.unit.Ports)
}

// replanOnceUnavailable loses the supervisor during the first replan.
type replanOnceUnavailable struct {
	*testutil.FakeSupervisor
	failed bool
}

func (r *replanOnceUnavailable) Replan(ctx context.Context) error {
	if !r.failed {
		r.failed = true
		r.FakeSupervisor.ReplanCalls++
		return supervisor.ErrUnavailable
	}
	return r.FakeSupervisor.Replan(ctx)
}

func TestReconcile_ReplanRetriedWithoutReAddingLayer(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeSupervisor()
	f := newFixture(&replanOnceUnavailable{FakeSupervisor: fake}, fake)

	outcome, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
	require.NoError(t, err)

	assert.Equal(t, layer.Updated, outcome)
	assert.Equal(t, 1, fake.AddLayerCalls)
	assert.Equal(t, 2, fake.ReplanCalls)
	assert.Equal(t, 1, fake.PlanCalls)
}

func TestReconcile_PermanentErrorIsReturned(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor()
	sup.AddLayerErr = errors.New("invalid layer")
	f := newFakeFixture(sup)

	_, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
	require.Error(t, err)

	assert.Contains(t, err.Error(), "invalid layer")
	assert.NotErrorIs(t, err, supervisor.ErrUnavailable)
	assert.Equal(t, []string{"error"}, f.attempts, "permanent errors are not retried")
	assert.Empty(t, f.unit.Ports)
}

func TestReconcile_CancelledContext(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor()
	f := newFakeFixture(sup)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.manager.Reconcile(ctx, desiredLayer())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReconcile_PublishFailuresAreNotFatal(t *testing.T) {
	t.Parallel()

	sup := testutil.NewFakeSupervisor()
	f := newFakeFixture(sup)
	f.unit.VersionErr = errors.New("application-version-set failed")
	f.unit.PortErr = errors.New("open-port failed")

	outcome, err := f.manager.Reconcile(testutil.TestContext(t), desiredLayer())
	require.NoError(t, err)
	assert.Equal(t, layer.Updated, outcome)
}

func TestOutcome_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unchanged", layer.Unchanged.String())
	assert.Equal(t, "updated", layer.Updated.String())
	assert.Equal(t, "unavailable", layer.Unavailable.String())
}
