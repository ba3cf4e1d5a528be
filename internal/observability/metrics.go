package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pdeg_bridge"

var (
	registerOnce sync.Once

	connections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tcp",
			Name:      "connections_total",
			Help:      "Accepted controller connections.",
		},
	)
	connectionResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tcp",
			Name:      "connection_results_total",
			Help:      "Closed controller connections by result and last stage reached.",
		},
		[]string{"result", "stage"},
	)
	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "frames_total",
			Help:      "Inbound frames by handling result.",
		},
		[]string{"result"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "protocol",
			Name:      "commands_total",
			Help:      "Parsed controller commands by action.",
		},
		[]string{"action"},
	)
	hubCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "calls_total",
			Help:      "Hub service calls by outcome.",
		},
		[]string{"domain", "service", "outcome"},
	)
	hubDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "call_duration_seconds",
			Help:      "Hub service call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"domain", "service", "outcome"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Admin HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			connections,
			connectionResults,
			frames,
			commands,
			hubCalls,
			hubDuration,
			httpRequests,
			httpDuration,
		)
	})
}

func RecordConnection() {
	RegisterMetrics()
	connections.Inc()
}

func RecordConnectionResult(result, stage string) {
	RegisterMetrics()
	connectionResults.WithLabelValues(result, stage).Inc()
}

func RecordFrame(result string) {
	RegisterMetrics()
	frames.WithLabelValues(result).Inc()
}

func RecordCommand(action string) {
	RegisterMetrics()
	commands.WithLabelValues(action).Inc()
}

func RecordHubCall(domain, service, outcome string, duration time.Duration) {
	RegisterMetrics()
	hubCalls.WithLabelValues(domain, service, outcome).Inc()
	hubDuration.WithLabelValues(domain, service, outcome).Observe(duration.Seconds())
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
