// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WSConnections tracks currently open WebSocket connections.
	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "teamdocs",
		Name:      "ws_connections",
		Help:      "Number of open WebSocket connections.",
	})

	// MessagesPersisted counts chat messages successfully appended to the store.
	MessagesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamdocs",
		Name:      "chat_messages_persisted_total",
		Help:      "Total chat messages persisted.",
	})

	// MessagesBroadcast counts messageReceived broadcasts dispatched to rooms.
	MessagesBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamdocs",
		Name:      "chat_messages_broadcast_total",
		Help:      "Total chat message broadcasts dispatched.",
	})

	// SendFailures counts sends rejected before broadcast.
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamdocs",
		Name:      "chat_send_failures_total",
		Help:      "Total chat sends that failed validation or persistence.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
