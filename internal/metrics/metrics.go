// Package metrics exposes Prometheus instrumentation for the scheduling
// passes. Each Pass registers its collectors on a caller-supplied registry so
// that one compilation (or one test) never shares counters with another.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Vertex outcomes recorded by VertexResolved.
const (
	OutcomePreset   = "preset"
	OutcomeConcrete = "concrete"
	OutcomeDeleted  = "deleted"
)

// Pass holds the collectors of one domain pass. A nil *Pass is valid and
// records nothing.
type Pass struct {
	vertices     *prometheus.CounterVec
	combines     prometheus.Counter
	externalSets prometheus.Counter
	pruned       prometheus.Counter
	canonSets    prometheus.Gauge
	canonHits    prometheus.Gauge
	duration     prometheus.Histogram
}

// NewPass creates the collectors and registers them on reg.
func NewPass(reg prometheus.Registerer) (*Pass, error) {
	p := &Pass{
		vertices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hdlorder_domain_vertices_total",
				Help: "Vertices visited by the domain pass, by outcome",
			},
			[]string{"outcome"},
		),
		combines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hdlorder_domain_combines_total",
			Help: "Trigger-set merges performed",
		}),
		externalSets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hdlorder_domain_external_sets_total",
			Help: "External trigger sets merged into variable domains",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hdlorder_logic_pruned_total",
			Help: "Logic blocks removed because nothing triggers them",
		}),
		canonSets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hdlorder_canon_sets",
			Help: "Distinct trigger sets interned",
		}),
		canonHits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hdlorder_canon_hits",
			Help: "Intern requests answered by an existing trigger set",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hdlorder_domain_pass_duration_seconds",
			Help:    "Wall time of the domain pass",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	for _, c := range []prometheus.Collector{
		p.vertices, p.combines, p.externalSets, p.pruned, p.canonSets, p.canonHits, p.duration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return p, nil
}

// VertexResolved counts one vertex with the given outcome.
func (p *Pass) VertexResolved(outcome string) {
	if p == nil {
		return
	}
	p.vertices.WithLabelValues(outcome).Inc()
}

// Combined counts one trigger-set merge.
func (p *Pass) Combined() {
	if p == nil {
		return
	}
	p.combines.Inc()
}

// ExternalMerged counts n external trigger sets.
func (p *Pass) ExternalMerged(n int) {
	if p == nil || n == 0 {
		return
	}
	p.externalSets.Add(float64(n))
}

// Pruned counts n removed logic blocks.
func (p *Pass) Pruned(n int) {
	if p == nil || n == 0 {
		return
	}
	p.pruned.Add(float64(n))
}

// ObserveCanon records the size and hit count of the trigger-set table.
func (p *Pass) ObserveCanon(sets, hits int) {
	if p == nil {
		return
	}
	p.canonSets.Set(float64(sets))
	p.canonHits.Set(float64(hits))
}

// ObserveDuration records the pass wall time.
func (p *Pass) ObserveDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.duration.Observe(d.Seconds())
}

// WriteTextfile writes everything gathered by g in the Prometheus text format,
// for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
