// Package metrics provides Prometheus metrics for gesture recognition and scoring.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the Prometheus collectors for one registry.
type Manager struct {
	namespace    string
	subsystem    string
	pointBuckets []float64
	registry     *prometheus.Registry

	gesturesProcessed *prometheus.CounterVec
	combosDetected    *prometheus.CounterVec
	combosCompleted   *prometheus.CounterVec
	combosFailed      *prometheus.CounterVec
	rewardPoints      prometheus.Histogram
	activeSessions    prometheus.Gauge
	frameLatency      prometheus.Histogram
	eventsDropped     prometheus.Counter
	effectRuns        *prometheus.CounterVec
	trackingFallbacks prometheus.Counter
}

var globalManager = NewManager() //nolint:gochecknoglobals // process-wide metrics

// NewManager creates a manager with its own registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "mudra",
		subsystem:    "game",
		pointBuckets: []float64{25, 50, 100, 150, 200, 300, 500, 800},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.gesturesProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "gestures_processed_total",
		Help:      "Gesture events pushed into session windows, by symbol",
	}, []string{"symbol"})

	m.combosDetected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combos_detected_total",
		Help:      "Combo attempts that entered tracking, by combo id",
	}, []string{"combo"})

	m.combosCompleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combos_completed_total",
		Help:      "Combos completed, by combo id",
	}, []string{"combo"})

	m.combosFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "combos_failed_total",
		Help:      "Combo attempts broken before completion, by combo id",
	}, []string{"combo"})

	m.rewardPoints = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reward_points",
		Help:      "Total points awarded per completed combo",
		Buckets:   m.pointBuckets,
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Sessions currently running",
	})

	m.frameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "frame_latency_milliseconds",
		Help:      "Time from frame read to classified gesture",
		Buckets:   []float64{5, 10, 20, 35, 50, 75, 100, 150, 250, 500},
	})

	m.eventsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_dropped_total",
		Help:      "Session events dropped because a subscriber was too slow",
	})

	m.effectRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "effects",
		Name:      "plugin_runs_total",
		Help:      "Effect plugin executions, by effect tag and outcome",
	}, []string{"effect", "outcome"})

	m.trackingFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "pipeline",
		Name:      "tracking_fallbacks_total",
		Help:      "Switches from camera tracking to manual input",
	})
}

// Registry returns the registry the manager's collectors live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordGesture counts a gesture pushed into a session.
func RecordGesture(symbol string) { globalManager.gesturesProcessed.WithLabelValues(symbol).Inc() }

// RecordComboDetected counts a combo entering tracking.
func RecordComboDetected(comboID string) { globalManager.combosDetected.WithLabelValues(comboID).Inc() }

// RecordComboCompleted counts a completed combo and observes its points.
func RecordComboCompleted(comboID string, points int) {
	globalManager.combosCompleted.WithLabelValues(comboID).Inc()
	globalManager.rewardPoints.Observe(float64(points))
}

// RecordComboFailed counts a broken combo attempt.
func RecordComboFailed(comboID string) { globalManager.combosFailed.WithLabelValues(comboID).Inc() }

// UpdateActiveSessions sets the number of running sessions.
func UpdateActiveSessions(n int) { globalManager.activeSessions.Set(float64(n)) }

// RecordFrameLatency observes per-frame processing latency in milliseconds.
func RecordFrameLatency(ms float64) { globalManager.frameLatency.Observe(ms) }

// RecordEventDropped counts an event a subscriber did not receive.
func RecordEventDropped() { globalManager.eventsDropped.Inc() }

// RecordEffectRun counts an effect plugin execution.
func RecordEffectRun(effect, outcome string) {
	globalManager.effectRuns.WithLabelValues(effect, outcome).Inc()
}

// RecordTrackingFallback counts a switch to manual tracking.
func RecordTrackingFallback() { globalManager.trackingFallbacks.Inc() }

// GetRegistry returns the registry used by the package-level helpers.
func GetRegistry() *prometheus.Registry { return globalManager.registry }

// Handler serves the package-level registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}
