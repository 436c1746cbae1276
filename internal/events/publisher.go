// Package events publishes transcript and narrative archival events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"clinical-dictation-service/internal/models"
	"clinical-dictation-service/internal/observability/metrics"
	"clinical-dictation-service/internal/pipeline"
)

// Publisher publishes archival events to separate Kafka topics for
// final transcripts and rendered narratives. Archival is best-effort:
// failures are logged and counted, never escalated into the session.
type Publisher struct {
	writerTranscripts *kafka.Writer
	writerNarratives  *kafka.Writer
	principal         string
	topicTranscripts  string
	topicNarratives   string
	enabled           bool
	metrics           *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers          []string
	TopicTranscripts string
	TopicNarratives  string
	Principal        string
	Enabled          bool
}

// New creates a Kafka archival publisher. With Kafka disabled or no
// brokers configured it runs in log-only mode.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, archival in log-only mode")
		p := &Publisher{enabled: false, metrics: m}
		if cfg != nil {
			p.principal = cfg.Principal
			p.topicTranscripts = cfg.TopicTranscripts
			p.topicNarratives = cfg.TopicNarratives
		}
		return p
	}

	// Longer dial timeouts for DNS resolution in Kubernetes.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicTranscripts", cfg.TopicTranscripts).
		Str("topicNarratives", cfg.TopicNarratives).
		Str("principal", cfg.Principal).
		Msg("Kafka archival publisher initialized")

	return &Publisher{
		writerTranscripts: newWriter(cfg.TopicTranscripts),
		writerNarratives:  newWriter(cfg.TopicNarratives),
		principal:         cfg.Principal,
		topicTranscripts:  cfg.TopicTranscripts,
		topicNarratives:   cfg.TopicNarratives,
		enabled:           true,
		metrics:           m,
	}
}

// PublishTranscript archives a final transcript event.
func (p *Publisher) PublishTranscript(ctx context.Context, sessionID string, ev models.TranscriptEvent) error {
	payload := models.TranscriptArchival{
		EventType:       "dictation.transcript.final",
		SessionID:       sessionID,
		Timestamp:       time.Now().UnixMilli(),
		TranscriptEvent: ev,
	}
	return p.publish(ctx, p.writerTranscripts, p.topicTranscripts, "transcript", sessionID, payload)
}

// PublishNarrative archives a rendered narrative artifact.
func (p *Publisher) PublishNarrative(ctx context.Context, sessionID string, a pipeline.Artifact) error {
	counts := make(map[string]int, len(a.Metadata.PerRoleTurnCounts))
	for role, n := range a.Metadata.PerRoleTurnCounts {
		counts[string(role)] = n
	}
	payload := models.NarrativeArchival{
		EventType:         "dictation.narrative",
		SessionID:         sessionID,
		Timestamp:         time.Now().UnixMilli(),
		Format:            string(a.Format),
		Content:           a.Content,
		TotalSpeakers:     a.Metadata.TotalSpeakers,
		TotalTurns:        a.Metadata.TotalTurns,
		PerRoleTurnCounts: counts,
	}
	return p.publish(ctx, p.writerNarratives, p.topicNarratives, "narrative", sessionID, payload)
}

func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, key string, event any) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return err
	}

	log.Debug().
		Str("principal", p.principal).
		Str("topic", topic).
		Str("key", key).
		RawJSON("payload", payload).
		Msg("Publishing archival event")

	if !p.enabled || writer == nil {
		p.metrics.RecordPublish(topic, eventType, nil, time.Since(start).Seconds())
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Msg("Failed to write to Kafka")
		p.metrics.RecordPublish(topic, eventType, err, time.Since(start).Seconds())
		return err
	}

	p.metrics.RecordPublish(topic, eventType, nil, time.Since(start).Seconds())
	return nil
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerTranscripts != nil {
		if e := p.writerTranscripts.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing transcripts writer")
			err = e
		}
	}
	if p.writerNarratives != nil {
		if e := p.writerNarratives.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing narratives writer")
			err = e
		}
	}
	return err
}
