package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"route", "method", "status"},
	)
	ReqDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request duration seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_in_flight_requests", Help: "In-flight HTTP requests"},
	)

	SweepTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_sweep_transitions_total",
			Help: "Links flipped by the schedule sweep, by direction",
		},
		[]string{"direction"}, // "activated" | "deactivated"
	)
	SweepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_sweep_failures_total",
			Help: "Failed sweep bulk updates, by direction",
		},
		[]string{"direction"},
	)
	ClicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "link_clicks_total", Help: "Recorded link clicks"},
	)
)

func MustRegister() {
	prometheus.MustRegister(RequestsTotal, ReqDuration, InFlight,
		SweepTransitions, SweepFailures, ClicksTotal)
}
