package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestPass_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPass(reg)
	require.NoError(t, err)

	p.VertexResolved(OutcomePreset)
	p.VertexResolved(OutcomeConcrete)
	p.VertexResolved(OutcomeConcrete)
	p.Combined()
	p.ExternalMerged(2)
	p.ExternalMerged(0)
	p.Pruned(1)
	p.ObserveCanon(5, 3)
	p.ObserveDuration(2 * time.Millisecond)

	fams := gather(t, reg)

	byOutcome := map[string]float64{}
	for _, m := range fams["hdlorder_domain_vertices_total"].GetMetric() {
		byOutcome[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{OutcomePreset: 1, OutcomeConcrete: 2}, byOutcome)

	counter := func(name string) float64 {
		return fams[name].GetMetric()[0].GetCounter().GetValue()
	}
	assert.Equal(t, 1.0, counter("hdlorder_domain_combines_total"))
	assert.Equal(t, 2.0, counter("hdlorder_domain_external_sets_total"))
	assert.Equal(t, 1.0, counter("hdlorder_logic_pruned_total"))
	assert.Equal(t, 5.0, fams["hdlorder_canon_sets"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 3.0, fams["hdlorder_canon_hits"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, uint64(1), fams["hdlorder_domain_pass_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestPass_Nil(t *testing.T) {
	var p *Pass
	assert.NotPanics(t, func() {
		p.VertexResolved(OutcomeDeleted)
		p.Combined()
		p.ExternalMerged(1)
		p.Pruned(1)
		p.ObserveCanon(1, 1)
		p.ObserveDuration(time.Second)
	})
}

func TestNewPass_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPass(reg)
	require.NoError(t, err)

	_, err = NewPass(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register metrics")
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPass(reg)
	require.NoError(t, err)
	p.Pruned(4)

	path := filepath.Join(t.TempDir(), "hdlorder.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hdlorder_logic_pruned_total 4")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	reg := prometheus.NewRegistry()
	err := WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), reg)
	require.Error(t, err)
}
