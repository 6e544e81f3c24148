package observability

import (
	"bytes"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/regionedit/internal/observability/metrics"
)

func TestNewMetricsWriteText(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m.Edit)
	require.NotNil(t, m.Registry())

	m.Edit.RecordOperation(metrics.OpSplit, metrics.StatusSuccess)
	m.Edit.SetRegions(3)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, `regionedit_operations_total{operation="split",status="success"} 1`)
	assert.Contains(t, out, "regionedit_regions 3")
}

func TestNewMetricsIndependentRegistries(t *testing.T) {
	t.Parallel()

	a, err := NewMetrics()
	require.NoError(t, err)
	b, err := NewMetrics()
	require.NoError(t, err)

	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestNewMetricsGatherTypes(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	m.Edit.RecordOperation(metrics.OpSplit, metrics.StatusSuccess)
	m.Edit.RecordDuration(metrics.OpSplit, 0.002)
	m.Edit.SetCrossfadeZones(2)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	types := make(map[string]dto.MetricType, len(families))
	for _, mf := range families {
		types[mf.GetName()] = mf.GetType()
	}
	assert.Equal(t, dto.MetricType_COUNTER, types["regionedit_operations_total"])
	assert.Equal(t, dto.MetricType_HISTOGRAM, types["regionedit_operation_duration_seconds"])
	assert.Equal(t, dto.MetricType_GAUGE, types["regionedit_crossfade_zones"])
}
