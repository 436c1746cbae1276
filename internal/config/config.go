// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig holds service identity and listen addresses.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	MetricsPort string
}

// STTConfig holds streaming recognition settings.
type STTConfig struct {
	Provider          string // "mock" or "google"
	LanguageCode      string
	SampleRateHz      int
	EnableDiarization bool
	StabilizePartials bool
	VocabularyName    string
}

// CleanupConfig holds transcript cleanup settings.
type CleanupConfig struct {
	DefaultProfile string
}

// QueueConfig holds audio feed queue settings.
type QueueConfig struct {
	PollInterval time.Duration
}

// KafkaConfig holds archival publisher settings.
type KafkaConfig struct {
	Enabled          bool
	Brokers          []string
	TopicTranscripts string
	TopicNarratives  string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig
	STT           STTConfig
	Cleanup       CleanupConfig
	Queue         QueueConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Principal:   envOrDefault("SERVICE_PRINCIPAL", "svc-clinical-dictation"),
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		STT: STTConfig{
			Provider:          envOrDefault("STT_PROVIDER", "mock"),
			LanguageCode:      envOrDefault("STT_LANGUAGE_CODE", "fr-CA"),
			SampleRateHz:      envInt("STT_SAMPLE_RATE_HZ", 16000),
			EnableDiarization: envBool("STT_ENABLE_DIARIZATION", true),
			StabilizePartials: envBool("STT_STABILIZE_PARTIALS", true),
			VocabularyName:    os.Getenv("STT_VOCABULARY_NAME"),
		},
		Cleanup: CleanupConfig{
			DefaultProfile: envOrDefault("CLEANUP_DEFAULT_PROFILE", "default"),
		},
		Queue: QueueConfig{
			PollInterval: envDuration("QUEUE_POLL_INTERVAL", 20*time.Millisecond),
		},
		Kafka: KafkaConfig{
			Enabled:          envBool("KAFKA_ENABLED", false),
			Brokers:          envList("KAFKA_BROKERS"),
			TopicTranscripts: envOrDefault("KAFKA_TOPIC_TRANSCRIPTS", "dictation.transcript.final"),
			TopicNarratives:  envOrDefault("KAFKA_TOPIC_NARRATIVES", "dictation.narrative"),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
