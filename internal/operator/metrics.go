package operator

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/imamik/argo-rollouts-operator/internal/status"
	"github.com/imamik/argo-rollouts-operator/internal/unit"
)

var (
	reconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "argo_rollouts_operator",
			Subsystem: "lifecycle",
			Name:      "reconcile_total",
			Help:      "Total number of handled triggers by result",
		},
		[]string{"trigger", "result"},
	)

	reconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "argo_rollouts_operator",
			Subsystem: "lifecycle",
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of trigger handling in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"trigger"},
	)

	resourcesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "argo_rollouts_operator",
			Subsystem: "kubernetes",
			Name:      "resources_total",
			Help:      "Total number of applied or deleted kubernetes resources",
		},
		[]string{"operation"},
	)

	supervisorAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "argo_rollouts_operator",
			Subsystem: "pebble",
			Name:      "attempts_total",
			Help:      "Total number of layer reconcile attempts by result",
		},
		[]string{"result"},
	)

	unitStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "argo_rollouts_operator",
			Subsystem: "unit",
			Name:      "status",
			Help:      "Current unit status (1 for the active kind, 0 otherwise)",
		},
		[]string{"kind"},
	)

	workloadInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "argo_rollouts_operator",
			Subsystem: "workload",
			Name:      "info",
			Help:      "Version of the running Argo Rollouts controller",
		},
		[]string{"version"},
	)
)

func init() {
	metrics.Registry.MustRegister(
		reconcileTotal,
		reconcileDuration,
		resourcesTotal,
		supervisorAttemptsTotal,
		unitStatus,
		workloadInfo,
	)
}

var statusKinds = []status.Kind{status.KindMaintenance, status.KindWaiting, status.KindActive, status.KindBlocked}

func recordReconcileMetric(trigger Trigger, result string, duration float64) {
	reconcileTotal.WithLabelValues(string(trigger), result).Inc()
	reconcileDuration.WithLabelValues(string(trigger)).Observe(duration)
}

func recordResourcesMetric(operation string, count int) {
	resourcesTotal.WithLabelValues(operation).Add(float64(count))
}

// RecordSupervisorAttempt counts one layer reconcile attempt. It matches
// layer.Options.OnAttempt.
func RecordSupervisorAttempt(result string) {
	supervisorAttemptsTotal.WithLabelValues(result).Inc()
}

func recordStatusMetric(s status.Status) {
	for _, kind := range statusKinds {
		if kind == s.Kind {
			unitStatus.WithLabelValues(string(kind)).Set(1)
		} else {
			unitStatus.WithLabelValues(string(kind)).Set(0)
		}
	}
}

func recordWorkloadVersionMetric(version string) {
	workloadInfo.Reset()
	if version != "" {
		workloadInfo.WithLabelValues(version).Set(1)
	}
}

// instrumentedUnit mirrors what is published to the unit into gauges.
type instrumentedUnit struct {
	unit.Unit
}

// InstrumentUnit wraps u so status and workload version changes are
// exported as metrics.
func InstrumentUnit(u unit.Unit) unit.Unit {
	if _, ok := u.(*instrumentedUnit); ok {
		return u
	}
	return &instrumentedUnit{Unit: u}
}

func (u *instrumentedUnit) SetStatus(ctx context.Context, s status.Status) error {
	recordStatusMetric(s)
	return u.Unit.SetStatus(ctx, s)
}

func (u *instrumentedUnit) SetWorkloadVersion(ctx context.Context, version string) error {
	recordWorkloadVersionMetric(version)
	return u.Unit.SetWorkloadVersion(ctx, version)
}
