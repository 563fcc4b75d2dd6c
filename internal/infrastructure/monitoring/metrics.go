package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the host.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge metrics
	BridgeCalls      *prometheus.CounterVec
	BridgeErrors     *prometheus.CounterVec
	Transfers        *prometheus.CounterVec
	TransfersPending prometheus.Gauge
	BytesWritten     prometheus.Counter
	SharesDelivered  *prometheus.CounterVec

	// Worker metrics
	TaskDuration *prometheus.HistogramVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
}

// NewMetrics registers the host metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datash_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		BridgeCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datash_bridge_calls_total",
				Help: "Inbound bridge calls by method and status",
			},
			[]string{"method", "status"},
		),
		BridgeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datash_bridge_errors_total",
				Help: "Bridge errors by kind",
			},
			[]string{"kind"},
		),
		Transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datash_transfers_total",
				Help: "Inbound transfers by outcome",
			},
			[]string{"outcome"},
		),
		TransfersPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "datash_transfers_pending",
				Help: "Announced transfers awaiting completion",
			},
		),
		BytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "datash_download_bytes_written_total",
				Help: "Bytes persisted to the downloads directory",
			},
		),
		SharesDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datash_share_items_delivered_total",
				Help: "Share items delivered to the web surface by kind",
			},
			[]string{"kind"},
		),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datash_worker_task_duration_seconds",
				Help:    "Worker pool task duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"task", "status"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "datash_ws_connections",
				Help: "Number of active bridge WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datash_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordBridgeCall records an inbound bridge call
func (m *Metrics) RecordBridgeCall(method, status string) {
	if m == nil {
		return
	}
	m.BridgeCalls.WithLabelValues(method, status).Inc()
}

// RecordBridgeError counts a bridge error of the given kind
func (m *Metrics) RecordBridgeError(kind string) {
	if m == nil {
		return
	}
	m.BridgeErrors.WithLabelValues(kind).Inc()
}

// RecordTransfer counts a finished transfer and the bytes it wrote
func (m *Metrics) RecordTransfer(outcome string, bytes int) {
	if m == nil {
		return
	}
	m.Transfers.WithLabelValues(outcome).Inc()
	if bytes > 0 {
		m.BytesWritten.Add(float64(bytes))
	}
}

// SetTransfersPending sets the pending transfer gauge
func (m *Metrics) SetTransfersPending(n int) {
	if m == nil {
		return
	}
	m.TransfersPending.Set(float64(n))
}

// RecordShareDelivered counts a delivered share item
func (m *Metrics) RecordShareDelivered(kind string) {
	if m == nil {
		return
	}
	m.SharesDelivered.WithLabelValues(kind).Inc()
}

// ObserveTask records a worker task duration. Matches workers.Observer.
func (m *Metrics) ObserveTask(name string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.TaskDuration.WithLabelValues(name, status).Observe(elapsed.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}
