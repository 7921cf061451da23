package analyst

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timberlens",
		Name:      "turns_total",
		Help:      "Question turns by outcome.",
	}, []string{"outcome"})

	metricRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timberlens",
		Name:      "refreshes_total",
		Help:      "Canonical table refreshes by outcome.",
	}, []string{"outcome"})

	metricTableRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "timberlens",
		Name:      "table_rows",
		Help:      "Rows in the current canonical table.",
	})
)
