// Package telemetry wires a replay run's structured logging and Prometheus
// metrics together, trimmed from teacher's pkg/rtp/metrics.go full
// production-monitoring surface (jitter/RTT percentiles, DTLS counters,
// quality scoring) down to what a one-directional scripted sender needs:
// counts and a send-offset histogram.
package telemetry

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arzzra/rtpreplay/internal/script"
)

// Telemetry bundles the logger and metric collectors for one replay run.
// RunID tags every log line and every metric label, so concurrent replay
// processes stay distinguishable on a shared dashboard, the same reason
// teacher's pkg/manager_media/manager.go stamps sessions with a uuid.
type Telemetry struct {
	Logger *slog.Logger
	RunID  string

	registry *prometheus.Registry

	packetsSent  *prometheus.CounterVec
	sendErrors   *prometheus.CounterVec
	clockAnomaly prometheus.Counter
	sendOffset   prometheus.Histogram
}

// Config controls verbosity and the metrics HTTP exporter.
type Config struct {
	Verbose     bool
	MetricsAddr string // empty disables the HTTP exporter
}

// New builds a Telemetry instance with a fresh run ID and registers its
// collectors on a private Prometheus registry (teacher's
// metrics/prom.go-style isolated registry, not the global default one).
func New(cfg Config) *Telemetry {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	registry := prometheus.NewRegistry()

	t := &Telemetry{
		Logger:   logger,
		RunID:    runID,
		registry: registry,
		packetsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rtpreplay_packets_sent_total",
			Help: "Packets successfully sent, by sink.",
		}, []string{"sink", "run_id"}),
		sendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rtpreplay_send_errors_total",
			Help: "Send failures, by sink.",
		}, []string{"sink", "run_id"}),
		clockAnomaly: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "rtpreplay_clock_anomalies_total",
			Help:        "Times a scheduled deadline had already passed and was clamped to now.",
			ConstLabels: prometheus.Labels{"run_id": runID},
		}),
		sendOffset: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "rtpreplay_send_offset_seconds",
			Help:        "Difference between a packet's scheduled send time and its actual send time.",
			Buckets:     []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			ConstLabels: prometheus.Labels{"run_id": runID},
		}),
	}

	registry.MustRegister(t.packetsSent, t.sendErrors, t.clockAnomaly, t.sendOffset)
	return t
}

// ServeMetrics starts the Prometheus HTTP exporter on addr, returning the
// *http.Server so the caller can shut it down. Mirrors teacher's
// MetricsCollector.StartHTTPServer pattern but exports only the registry
// built in New, not the global default one.
func (t *Telemetry) ServeMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

// RecordSend increments the per-sink sent counter and observes how late (or
// early) the actual send happened relative to its scheduled time.
func (t *Telemetry) RecordSend(sink script.Sink, scheduled, actual time.Time) {
	t.packetsSent.WithLabelValues(sinkLabel(sink), t.RunID).Inc()
	t.sendOffset.Observe(actual.Sub(scheduled).Seconds())
}

// RecordSendError increments the per-sink send-error counter.
func (t *Telemetry) RecordSendError(sink script.Sink) {
	t.sendErrors.WithLabelValues(sinkLabel(sink), t.RunID).Inc()
}

// RecordClockAnomaly increments the clock-anomaly counter, used when the
// scheduler clamps a deadline that had already passed.
func (t *Telemetry) RecordClockAnomaly() {
	t.clockAnomaly.Inc()
}

func sinkLabel(s script.Sink) string {
	if s == script.SinkRTCP {
		return "rtcp"
	}
	return "rtp"
}
