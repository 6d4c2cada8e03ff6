package treatshttp

import (
	"github.com/prometheus/client_golang/prometheus"

	treats "github.com/weegigs/pearls-treats"
)

type pageMetrics struct {
	rendersTotal   *prometheus.CounterVec
	fallbacksTotal prometheus.Counter
}

func newPageMetrics(registerer prometheus.Registerer) *pageMetrics {
	rendersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "treats",
			Subsystem: "page",
			Name:      "renders_total",
			Help:      "Order pages rendered, by deployment topology.",
		},
		[]string{"topology"},
	)
	registerer.MustRegister(rendersTotal)

	fallbacksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "treats", Subsystem: "counter", Name: "fallbacks_total",
		Help: "Pages rendered with the unavailable notice because the counter store failed.",
	})
	registerer.MustRegister(fallbacksTotal)

	return &pageMetrics{
		rendersTotal:   rendersTotal,
		fallbacksTotal: fallbacksTotal,
	}
}

func (m *pageMetrics) observe(document *treats.Document) {
	m.rendersTotal.WithLabelValues(document.Topology.String()).Inc()
	if !document.Counter.Available {
		m.fallbacksTotal.Inc()
	}
}
