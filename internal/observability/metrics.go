// Package observability wires the Prometheus registry for the region editor.
package observability

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/tphakala/regionedit/internal/logger"
	"github.com/tphakala/regionedit/internal/observability/metrics"
)

var log = logger.Global().Module("metrics")

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Edit     *metrics.EditMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	editMetrics, err := metrics.NewEditMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create edit metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Edit:     editMetrics,
	}, nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteText gathers every registered family and writes it to w in the
// Prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric family %s: %w", mf.GetName(), err)
		}
	}

	log.Debug("metrics written", logger.Int("families", len(families)))
	return nil
}
