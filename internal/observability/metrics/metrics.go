// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clinical_dictation"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsTotal   prometheus.Counter
	SessionsActive  prometheus.Gauge
	SessionsFailed  *prometheus.CounterVec
	SessionDuration prometheus.Histogram

	// Audio feed metrics
	FramesQueued        prometheus.Counter
	FramesDroppedClosed prometheus.Counter
	AudioBytesReceived  prometheus.Counter
	FrameRMS            prometheus.Histogram
	FramesClipped       prometheus.Counter

	// Recognition metrics
	EventsPartial  prometheus.Counter
	EventsFinal    prometheus.Counter
	SpeakerChanges prometheus.Counter
	ProviderErrors *prometheus.CounterVec

	// Pipeline metrics
	TurnsSealed         prometheus.Counter
	TurnsMerged         prometheus.Counter
	FillersRemoved      prometheus.Counter
	RepetitionsRemoved  prometheus.Counter
	EmptyTurnsDropped   prometheus.Counter
	NarrativesRendered  *prometheus.CounterVec
	PipelineDuration    prometheus.Histogram
	InvalidProfileTotal prometheus.Counter

	// Archival publish metrics
	PublishTotal   *prometheus.CounterVec
	PublishErrors  *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of streaming sessions started",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active streaming sessions",
		}),
		SessionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_failed_total",
			Help:      "Total number of sessions that ended in FAILED",
		}, []string{"kind"}),
		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Duration of streaming sessions in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),

		FramesQueued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_queued_total",
			Help:      "Total audio frames accepted by feed queues",
		}),
		FramesDroppedClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_dropped_closed_total",
			Help:      "Total audio frames dropped because the queue was closed",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),
		FrameRMS: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "audio_frame_rms",
			Help:      "Per-frame RMS amplitude of received PCM audio",
			Buckets:   []float64{50, 200, 500, 1000, 2000, 5000, 10000, 20000},
		}),
		FramesClipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_frames_clipped_total",
			Help:      "Total frames containing clipped samples",
		}),

		EventsPartial: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_events_partial_total",
			Help:      "Total partial recognition events received",
		}),
		EventsFinal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_events_final_total",
			Help:      "Total final recognition events received",
		}),
		SpeakerChanges: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speaker_changes_total",
			Help:      "Total speaker label transitions observed during ingest",
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Total provider errors by taxonomy kind",
		}, []string{"provider", "kind"}),

		TurnsSealed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_sealed_total",
			Help:      "Total turns sealed by ingest",
		}),
		TurnsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_merged_total",
			Help:      "Total adjacent same-speaker turns coalesced",
		}),
		FillersRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fillers_removed_total",
			Help:      "Total filler tokens removed by cleanup",
		}),
		RepetitionsRemoved: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repetitions_removed_total",
			Help:      "Total repeated tokens collapsed by cleanup",
		}),
		EmptyTurnsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_turns_dropped_total",
			Help:      "Total turns dropped after cleanup left them empty",
		}),
		NarrativesRendered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narratives_rendered_total",
			Help:      "Total narrative artifacts rendered",
		}, []string{"format"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Duration of pipeline invocations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		InvalidProfileTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_profile_total",
			Help:      "Total pipeline invocations rejected for an invalid cleanup profile",
		}),

		PublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_publish_total",
			Help:      "Total archival messages published",
		}, []string{"topic", "event_type"}),
		PublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "archive_publish_errors_total",
			Help:      "Total archival publish errors",
		}, []string{"topic", "event_type"}),
		PublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "archive_publish_latency_seconds",
			Help:      "Archival publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionStart records a new session starting.
func (m *Metrics) RecordSessionStart() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a session ending.
func (m *Metrics) RecordSessionEnd(durationSeconds float64) {
	m.SessionsActive.Dec()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordSessionFailed records a session reaching FAILED.
func (m *Metrics) RecordSessionFailed(kind string) {
	m.SessionsFailed.WithLabelValues(kind).Inc()
}

// RecordFrameQueued records an accepted audio frame.
func (m *Metrics) RecordFrameQueued(bytes int) {
	m.FramesQueued.Inc()
	m.AudioBytesReceived.Add(float64(bytes))
}

// RecordFrameDropped records a frame dropped after close.
func (m *Metrics) RecordFrameDropped() {
	m.FramesDroppedClosed.Inc()
}

// RecordFrameStats records amplitude diagnostics for one frame.
func (m *Metrics) RecordFrameStats(rms float64, clipped bool) {
	m.FrameRMS.Observe(rms)
	if clipped {
		m.FramesClipped.Inc()
	}
}

// RecordEvent records a recognition event by finality.
func (m *Metrics) RecordEvent(isPartial bool) {
	if isPartial {
		m.EventsPartial.Inc()
	} else {
		m.EventsFinal.Inc()
	}
}

// RecordProviderError records a classified provider error.
func (m *Metrics) RecordProviderError(provider, kind string) {
	m.ProviderErrors.WithLabelValues(provider, kind).Inc()
}

// RecordCleanup records cleanup counters for one invocation.
func (m *Metrics) RecordCleanup(fillers, repetitions, dropped int) {
	m.FillersRemoved.Add(float64(fillers))
	m.RepetitionsRemoved.Add(float64(repetitions))
	m.EmptyTurnsDropped.Add(float64(dropped))
}

// RecordNarrative records a rendered artifact.
func (m *Metrics) RecordNarrative(format string, durationSeconds float64) {
	m.NarrativesRendered.WithLabelValues(format).Inc()
	m.PipelineDuration.Observe(durationSeconds)
}

// RecordPublish records an archival publish attempt.
func (m *Metrics) RecordPublish(topic, eventType string, err error, latencySeconds float64) {
	m.PublishTotal.WithLabelValues(topic, eventType).Inc()
	m.PublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.PublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
