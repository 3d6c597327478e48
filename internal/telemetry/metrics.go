// Package telemetry collects protocol counters on a private prometheus
// registry. Metrics are informational only; nothing in the protocol
// reads them back.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	PacketsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swarm",
		Name:      "packets_received_total",
		Help:      "Datagrams received from the multicast group.",
	})

	PacketsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swarm",
		Name:      "packets_dropped_total",
		Help:      "Datagrams discarded as malformed records.",
	})

	Broadcasts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swarm",
		Name:      "broadcasts_total",
		Help:      "Records broadcast in this node's TDMA slot.",
	})

	Elections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swarm",
		Name:      "elections_total",
		Help:      "Election passes that flipped local leadership.",
	})

	Evictions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swarm",
		Name:      "evictions_total",
		Help:      "Devices removed by the membership timeout sweep.",
	})

	Resets = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "swarm",
		Name:      "resets_total",
		Help:      "Reset records received.",
	})

	Members = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "swarm",
		Name:      "members",
		Help:      "Devices currently in the membership table.",
	})

	IsMaster = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "swarm",
		Name:      "is_master",
		Help:      "1 while this node believes it is the leader.",
	})
)

func init() {
	Registry.MustRegister(
		PacketsReceived, PacketsDropped, Broadcasts,
		Elections, Evictions, Resets,
		Members, IsMaster,
	)
}

// Handler exposes the registry for mounting at /metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
