package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/pnsctl/internal/pns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels for exchange metrics.
const (
	ResultOK        = "ok"
	ResultNak       = "nak"
	ResultMalformed = "malformed"
	ResultTransport = "transport"
	ResultError     = "error"
)

// Metrics collects PNS exchange and device state series on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	exchanges    *prometheus.CounterVec
	exchangeTime *prometheus.HistogramVec
	ledPattern   *prometheus.GaugeVec
	buzzerMode   prometheus.Gauge
	connected    prometheus.Gauge
	reconnects   prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pnsctl",
				Subsystem: "exchange",
				Name:      "total",
				Help:      "PNS command exchanges by command and result.",
			},
			[]string{"command", "result"},
		),
		exchangeTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pnsctl",
				Subsystem: "exchange",
				Name:      "duration_seconds",
				Help:      "PNS write-then-read round trip in seconds.",
				Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"command"},
		),
		ledPattern: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "pnsctl",
				Subsystem: "device",
				Name:      "led_pattern",
				Help:      "Last reported LED pattern code per unit.",
			},
			[]string{"channel"},
		),
		buzzerMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pnsctl",
			Subsystem: "device",
			Name:      "buzzer_mode",
			Help:      "Last reported buzzer mode code.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pnsctl",
			Subsystem: "device",
			Name:      "connected",
			Help:      "1 while a connection to the device is open.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pnsctl",
			Subsystem: "device",
			Name:      "connect_attempts_total",
			Help:      "Connection attempts made by the monitor.",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pnsctl",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pnsctl",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
	m.registry.MustRegister(
		m.exchanges, m.exchangeTime, m.ledPattern, m.buzzerMode,
		m.connected, m.reconnects, m.httpRequests, m.httpDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveExchange implements client.Observer.
func (m *Metrics) ObserveExchange(cmd pns.Command, elapsed time.Duration, err error) {
	m.exchanges.WithLabelValues(cmd.String(), Result(err)).Inc()
	m.exchangeTime.WithLabelValues(cmd.String()).Observe(elapsed.Seconds())
}

// ObserveStatus implements monitor.Sink.
func (m *Metrics) ObserveStatus(s pns.Status) {
	for i, p := range s.LED {
		m.ledPattern.WithLabelValues(pns.Channels[i].String()).Set(float64(p))
	}
	m.buzzerMode.Set(float64(s.Buzzer))
}

func (m *Metrics) ObserveConnect(err error) {
	m.reconnects.Inc()
	if err == nil {
		m.connected.Set(1)
	}
}

func (m *Metrics) ObserveDisconnect() {
	m.connected.Set(0)
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	m.httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// Result maps an exchange error onto a metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, pns.ErrNak):
		return ResultNak
	case errors.Is(err, pns.ErrMalformedResponse):
		return ResultMalformed
	case errors.Is(err, pns.ErrTransport):
		return ResultTransport
	default:
		return ResultError
	}
}
