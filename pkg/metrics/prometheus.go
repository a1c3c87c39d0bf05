package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var oneTimeRegister sync.Once

type prometheusSink struct {
	nodeCount    *prometheus.GaugeVec
	shardCount   *prometheus.GaugeVec
	generation   *prometheus.GaugeVec
	reconciles   *prometheus.CounterVec
	lookupErrors *prometheus.CounterVec
}

var promMetrics *prometheusSink

// NewPrometheusSink creates a metrics sink for Prometheus. All sinks created
// by this function will write to the same metrics.
func NewPrometheusSink(clientID string) Sink {
	// This registers the metrics for the first time but not for subsequent
	// calls. Since this is a one-time operation it will also work for unit
	// tests but the registration might be stale or incorrect.
	oneTimeRegister.Do(func() {
		promMetrics = &prometheusSink{
			// nodeCount reports the number of routable nodes in the
			// published routing state.
			nodeCount: prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "mt",
					Subsystem: "routing",
					Name:      "nodeCount",
					Help:      "Nodes in the current routing state",
					ConstLabels: prometheus.Labels{
						"client": clientID,
					},
				},
				[]string{}),
			// shardCount is zero for hash ring topologies.
			shardCount: prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "mt",
					Subsystem: "routing",
					Name:      "shardCount",
					Help:      "Shards in the current routing state",
					ConstLabels: prometheus.Labels{
						"client": clientID,
					},
				},
				[]string{}),
			generation: prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "mt",
					Subsystem: "routing",
					Name:      "generation",
					Help:      "Topology generation counter",
					ConstLabels: prometheus.Labels{
						"client": clientID,
					},
				},
				[]string{}),
			reconciles: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "mt",
					Subsystem: "routing",
					Name:      "reconciles",
					Help:      "Topology documents processed",
					ConstLabels: prometheus.Labels{
						"client": clientID,
					},
				},
				[]string{"outcome"}),
			lookupErrors: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "mt",
					Subsystem: "routing",
					Name:      "lookupErrors",
					Help:      "Failed key lookups",
					ConstLabels: prometheus.Labels{
						"client": clientID,
					},
				},
				[]string{"kind"}),
		}
		prometheus.MustRegister(promMetrics.nodeCount)
		prometheus.MustRegister(promMetrics.shardCount)
		prometheus.MustRegister(promMetrics.generation)
		prometheus.MustRegister(promMetrics.reconciles)
		prometheus.MustRegister(promMetrics.lookupErrors)
	})
	return promMetrics
}

func (p *prometheusSink) SetNodeCount(nodes int) {
	p.nodeCount.With(prometheus.Labels{}).Set(float64(nodes))
}

func (p *prometheusSink) SetShardCount(shards int) {
	p.shardCount.With(prometheus.Labels{}).Set(float64(shards))
}

func (p *prometheusSink) SetGeneration(generation uint64) {
	p.generation.With(prometheus.Labels{}).Set(float64(generation))
}

func (p *prometheusSink) Reconcile(outcome string) {
	p.reconciles.With(prometheus.Labels{"outcome": outcome}).Inc()
}

func (p *prometheusSink) LookupError(kind string) {
	p.lookupErrors.With(prometheus.Labels{"kind": kind}).Inc()
}
