// Package version reads the workload version from the controller's metrics
// endpoint.
package version

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	infoMetric   = "argo_rollouts_controller_info"
	versionLabel = "version"
)

// versionPattern accepts v<major>.<minor>.<patch> with optional build metadata,
// e.g. v1.6.6+737ca89.
var versionPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+(?:\+[0-9A-Za-z-]+)?$`)

// maxBodySize bounds the metrics response that is parsed.
const maxBodySize = 8 << 20

// Probe fetches the version from a metrics URL.
type Probe struct {
	url    string
	client *http.Client
}

// NewProbe creates a Probe for url. Every request is bounded by timeout.
func NewProbe(url string, timeout time.Duration) *Probe {
	return &Probe{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Version returns the workload version, or "" when the endpoint cannot be
// read or carries no version. It never fails.
func (p *Probe) Version(ctx context.Context) string {
	logger := log.FromContext(ctx)

	version, err := p.fetch(ctx)
	if err != nil {
		logger.Info("unable to get version from metrics endpoint", "url", p.url, "error", err.Error())
		return ""
	}

	logger.Info("application version", "version", version)
	return version
}

func (p *Probe) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get metrics: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	version, ok := Extract(resp.Body)
	if !ok {
		return "", fmt.Errorf("no argo_rollouts_controller_info version in response")
	}
	return version, nil
}

// Extract parses Prometheus text exposition and returns the version label
// of argo_rollouts_controller_info. Families parsed before a malformed line
// are still searched.
func Extract(r io.Reader) (string, bool) {
	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, _ := parser.TextToMetricFamilies(io.LimitReader(r, maxBodySize))

	family, ok := families[infoMetric]
	if !ok {
		return "", false
	}
	for _, metric := range family.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == versionLabel && versionPattern.MatchString(label.GetValue()) {
				return label.GetValue(), true
			}
		}
	}
	return "", false
}
