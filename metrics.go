package mutationtree

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an optional Prometheus-backed counter set a Tracker can be
// given via WithMetrics, mirroring the teacher's own plain-struct
// maintenance counters but wired to real collectors instead.
type Metrics struct {
	recordsTotal   prometheus.Counter
	promisesPlaced prometheus.Gauge
	reversions     prometheus.Counter
}

// NewMetrics constructs a Metrics set and registers it with reg. Pass
// prometheus.DefaultRegisterer to use the global registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		recordsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mutationtree_records_total",
			Help: "Number of handle entries reported in record_children removed and added lists.",
		}),
		promisesPlaced: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mutationtree_promises_placed",
			Help: "Number of sibling-promises currently outstanding in the engine.",
		}),
		reversions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mutationtree_reversions_total",
			Help: "Number of nodes that have reverted to their original position.",
		}),
	}
	for _, c := range []prometheus.Collector{m.recordsTotal, m.promisesPlaced, m.reversions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
