package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear relevant env vars
	envVars := []string{
		"SERVICE_PRINCIPAL", "HTTP_PORT", "METRICS_PORT", "LOG_LEVEL", "LOG_FORMAT",
		"STT_PROVIDER", "STT_LANGUAGE_CODE", "STT_SAMPLE_RATE_HZ",
		"STT_ENABLE_DIARIZATION", "STT_STABILIZE_PARTIALS", "STT_VOCABULARY_NAME",
		"CLEANUP_DEFAULT_PROFILE", "QUEUE_POLL_INTERVAL",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_TRANSCRIPTS", "KAFKA_TOPIC_NARRATIVES",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg := Load()

	// Service defaults
	if cfg.Service.Principal != "svc-clinical-dictation" {
		t.Errorf("expected default principal 'svc-clinical-dictation', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "8080" {
		t.Errorf("expected default HTTP port '8080', got %s", cfg.Service.HTTPPort)
	}
	if cfg.Service.MetricsPort != "9090" {
		t.Errorf("expected default metrics port '9090', got %s", cfg.Service.MetricsPort)
	}

	// STT defaults
	if cfg.STT.Provider != "mock" {
		t.Errorf("expected default STT provider 'mock', got %s", cfg.STT.Provider)
	}
	if cfg.STT.LanguageCode != "fr-CA" {
		t.Errorf("expected default language 'fr-CA', got %s", cfg.STT.LanguageCode)
	}
	if cfg.STT.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.STT.SampleRateHz)
	}
	if cfg.STT.EnableDiarization != true {
		t.Errorf("expected default diarization true, got %v", cfg.STT.EnableDiarization)
	}
	if cfg.STT.StabilizePartials != true {
		t.Errorf("expected default partial stabilization true, got %v", cfg.STT.StabilizePartials)
	}

	// Cleanup and queue defaults
	if cfg.Cleanup.DefaultProfile != "default" {
		t.Errorf("expected default cleanup profile 'default', got %s", cfg.Cleanup.DefaultProfile)
	}
	if cfg.Queue.PollInterval != 20*time.Millisecond {
		t.Errorf("expected default poll interval 20ms, got %v", cfg.Queue.PollInterval)
	}

	// Kafka defaults
	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicTranscripts != "dictation.transcript.final" {
		t.Errorf("expected default transcript topic, got %s", cfg.Kafka.TopicTranscripts)
	}
	if cfg.Kafka.TopicNarratives != "dictation.narrative" {
		t.Errorf("expected default narrative topic, got %s", cfg.Kafka.TopicNarratives)
	}

	// Observability defaults
	if cfg.Observability.LogLevel != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogFormat != "json" {
		t.Errorf("expected default log format 'json', got %s", cfg.Observability.LogFormat)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("SERVICE_PRINCIPAL", "custom-principal")
	os.Setenv("HTTP_PORT", "9999")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("STT_PROVIDER", "google")
	os.Setenv("STT_LANGUAGE_CODE", "fr-FR")
	os.Setenv("STT_SAMPLE_RATE_HZ", "8000")
	os.Setenv("STT_ENABLE_DIARIZATION", "false")
	os.Setenv("STT_VOCABULARY_NAME", "cardiology-terms")
	os.Setenv("CLEANUP_DEFAULT_PROFILE", "clinical_light")
	os.Setenv("QUEUE_POLL_INTERVAL", "5ms")
	os.Setenv("KAFKA_ENABLED", "true")
	os.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	defer func() {
		os.Unsetenv("SERVICE_PRINCIPAL")
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("STT_PROVIDER")
		os.Unsetenv("STT_LANGUAGE_CODE")
		os.Unsetenv("STT_SAMPLE_RATE_HZ")
		os.Unsetenv("STT_ENABLE_DIARIZATION")
		os.Unsetenv("STT_VOCABULARY_NAME")
		os.Unsetenv("CLEANUP_DEFAULT_PROFILE")
		os.Unsetenv("QUEUE_POLL_INTERVAL")
		os.Unsetenv("KAFKA_ENABLED")
		os.Unsetenv("KAFKA_BROKERS")
	}()

	cfg := Load()

	if cfg.Service.Principal != "custom-principal" {
		t.Errorf("expected principal 'custom-principal', got %s", cfg.Service.Principal)
	}
	if cfg.Service.HTTPPort != "9999" {
		t.Errorf("expected HTTP port '9999', got %s", cfg.Service.HTTPPort)
	}
	if cfg.STT.Provider != "google" {
		t.Errorf("expected STT provider 'google', got %s", cfg.STT.Provider)
	}
	if cfg.STT.LanguageCode != "fr-FR" {
		t.Errorf("expected language 'fr-FR', got %s", cfg.STT.LanguageCode)
	}
	if cfg.STT.SampleRateHz != 8000 {
		t.Errorf("expected sample rate 8000, got %d", cfg.STT.SampleRateHz)
	}
	if cfg.STT.EnableDiarization != false {
		t.Errorf("expected diarization false, got %v", cfg.STT.EnableDiarization)
	}
	if cfg.STT.VocabularyName != "cardiology-terms" {
		t.Errorf("expected vocabulary 'cardiology-terms', got %s", cfg.STT.VocabularyName)
	}
	if cfg.Cleanup.DefaultProfile != "clinical_light" {
		t.Errorf("expected profile 'clinical_light', got %s", cfg.Cleanup.DefaultProfile)
	}
	if cfg.Queue.PollInterval != 5*time.Millisecond {
		t.Errorf("expected poll interval 5ms, got %v", cfg.Queue.PollInterval)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("expected trimmed broker list, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Observability.LogLevel)
	}
}

func TestLoad_InvalidValues_FallbackToDefaults(t *testing.T) {
	os.Setenv("STT_SAMPLE_RATE_HZ", "not-a-number")
	os.Setenv("STT_ENABLE_DIARIZATION", "invalid")
	os.Setenv("QUEUE_POLL_INTERVAL", "invalid")

	defer func() {
		os.Unsetenv("STT_SAMPLE_RATE_HZ")
		os.Unsetenv("STT_ENABLE_DIARIZATION")
		os.Unsetenv("QUEUE_POLL_INTERVAL")
	}()

	cfg := Load()

	// Should fall back to defaults on parse errors
	if cfg.STT.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate on invalid input, got %d", cfg.STT.SampleRateHz)
	}
	if cfg.STT.EnableDiarization != true {
		t.Errorf("expected default diarization on invalid input, got %v", cfg.STT.EnableDiarization)
	}
	if cfg.Queue.PollInterval != 20*time.Millisecond {
		t.Errorf("expected default poll interval on invalid input, got %v", cfg.Queue.PollInterval)
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		def      bool
		expected bool
	}{
		{"true string", "true", false, true},
		{"false string", "false", true, false},
		{"1", "1", false, true},
		{"0", "0", true, false},
		{"TRUE uppercase", "TRUE", false, true},
		{"invalid", "invalid", true, true},
		{"empty", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				os.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}
			defer os.Unsetenv(key)

			got := envBool(key, tt.def)
			if got != tt.expected {
				t.Errorf("envBool(%s, %v) = %v, want %v", tt.envValue, tt.def, got, tt.expected)
			}
		})
	}
}

func TestEnvList(t *testing.T) {
	os.Setenv("TEST_LIST_VAR", "a, b ,, c")
	defer os.Unsetenv("TEST_LIST_VAR")

	got := envList("TEST_LIST_VAR")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("expected [a b c], got %v", got)
	}
	if envList("TEST_LIST_VAR_MISSING") != nil {
		t.Error("expected nil for unset list")
	}
}
