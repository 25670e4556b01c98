package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planning_events_total",
		Help: "Inbound client events by type.",
	}, []string{"type"})

	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planning_rooms_created_total",
		Help: "Rooms created.",
	})

	RoomsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planning_rooms_deleted_total",
		Help: "Rooms deleted after emptying.",
	})

	BroadcastsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planning_broadcast_frames_total",
		Help: "Frames delivered to room broadcast groups.",
	})

	BroadcastsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "planning_broadcast_dropped_total",
		Help: "Frames dropped due to backpressure or closed connections.",
	})

	OpenConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "planning_open_connections",
		Help: "Currently open client connections.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
