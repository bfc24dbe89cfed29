package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	BookingsTotal      *prometheus.CounterVec
	AttendancesTotal   prometheus.Counter
	CancellationsTotal prometheus.Counter

	AvailabilityCacheHits   prometheus.Counter
	AvailabilityCacheMisses prometheus.Counter

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		BookingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome (scheduled, conflict).",
		}, []string{"outcome"}),

		AttendancesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "attendances_total",
			Help:      "Appointments transitioned to attended.",
		}),

		CancellationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "cancellations_total",
			Help:      "Appointments cancelled (hard deleted).",
		}),

		AvailabilityCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "availability_cache_hits_total",
			Help:      "Availability responses served from the redis cache.",
		}),

		AvailabilityCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "scheduling",
			Name:      "availability_cache_misses_total",
			Help:      "Availability responses computed from the database.",
		}),

		AuditEntriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
