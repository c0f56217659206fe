// Package metrics holds the Prometheus collectors shared by the drug API client
// and the interaction controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes used as the "outcome" label of FetchTotal.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeServer    = "server_error"
	OutcomeNetwork   = "network_error"
	OutcomeMalformed = "malformed"
)

var (
	// FetchTotal counts drug lookups against the remote API by outcome.
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "druggraph_fetch_total",
			Help: "Total number of drug lookups issued to the interaction API",
		},
		[]string{"outcome"},
	)

	// FetchDuration tracks how long drug lookups take to settle.
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "druggraph_fetch_duration_seconds",
			Help:    "Latency of drug lookups against the interaction API",
			Buckets: prometheus.DefBuckets,
		},
	)

	// GraphNodes is the number of drugs currently in the explored graph.
	GraphNodes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "druggraph_graph_nodes",
			Help: "Number of drug nodes in the explored graph",
		},
	)

	// GraphEdges is the number of interactions currently in the explored graph.
	GraphEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "druggraph_graph_edges",
			Help: "Number of interaction edges in the explored graph",
		},
	)

	// Expansions counts node expansions by result ("ok" or "failed").
	Expansions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "druggraph_expansions_total",
			Help: "Total number of node expansions attempted",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(GraphNodes)
	prometheus.MustRegister(GraphEdges)
	prometheus.MustRegister(Expansions)
}
