// Package telemetry holds the process-wide Prometheus instruments.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MaterializedTasks counts tasks created from due routines.
	MaterializedTasks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daybook_materialized_tasks_total",
		Help: "Tasks created by the routine materializer.",
	})

	// MaterializerSkips counts due routines skipped because a task for
	// them already existed today.
	MaterializerSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daybook_materializer_skips_total",
		Help: "Due routines skipped as already materialized.",
	})

	// StreamBroadcasts counts snapshot pushes to live stream clients.
	StreamBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "daybook_stream_broadcasts_total",
		Help: "Snapshots pushed over live stream connections.",
	})

	// HTTPRequests counts served requests by method and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "daybook_http_requests_total",
		Help: "HTTP requests served.",
	}, []string{"method", "status"})
)

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
