package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/dosepilot/reminder-service/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scheduling metrics

	JobsLive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "reminder",
		Name:      "jobs_live",
		Help:      "Number of armed reminder jobs across all users.",
	})

	JobsScheduledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reminder",
		Name:      "jobs_scheduled_total",
		Help:      "Total reminder jobs created by schedule passes.",
	})

	SchedulePassesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reminder",
		Name:      "schedule_passes_total",
		Help:      "Total replace-all scheduling passes.",
	})

	// Delivery metrics

	DeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reminder",
		Name:      "deliveries_total",
		Help:      "Total notification deliveries, by channel and result.",
	}, []string{"channel", "result"})

	DeliveryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reminder",
		Name:      "delivery_duration_seconds",
		Help:      "Duration of a single delivery attempt.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"channel"})

	// Sweeper metrics

	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reminder",
		Name:      "sweep_duration_seconds",
		Help:      "Time taken for one resync sweep.",
		Buckets:   prometheus.DefBuckets,
	})

	SweepUsersResyncedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reminder",
		Name:      "sweep_users_resynced_total",
		Help:      "Total users rescheduled from the store by the sweeper.",
	})

	SweepDevicesPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reminder",
		Name:      "sweep_devices_pruned_total",
		Help:      "Total stale device tokens removed by the sweeper.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reminder",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reminder",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		JobsLive,
		JobsScheduledTotal,
		SchedulePassesTotal,
		DeliveriesTotal,
		DeliveryDuration,
		SweepDuration,
		SweepUsersResyncedTotal,
		SweepDevicesPrunedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()), http.StatusOK)
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		result := checker.Readiness(r.Context())
		status := http.StatusOK
		if result.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeHealth(w, result, status)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
