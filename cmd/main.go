package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"clinical-dictation-service/internal/api/ws"
	"clinical-dictation-service/internal/config"
	"clinical-dictation-service/internal/events"
	"clinical-dictation-service/internal/observability"
	"clinical-dictation-service/internal/observability/logging"
	"clinical-dictation-service/internal/recognizer"
	googlestt "clinical-dictation-service/internal/recognizer/google"
	"clinical-dictation-service/internal/recognizer/mock"
	"clinical-dictation-service/internal/session"
)

func main() {
	cfg := config.Load()

	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     cfg.Observability.LogFormat,
		TimeFormat: time.RFC3339,
	})

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build recognizer provider")
	}
	log.Info().Str("provider", provider.Name()).Msg("recognizer provider ready")

	publisher := events.New(&events.Config{
		Enabled:          cfg.Kafka.Enabled,
		Brokers:          cfg.Kafka.Brokers,
		TopicTranscripts: cfg.Kafka.TopicTranscripts,
		TopicNarratives:  cfg.Kafka.TopicNarratives,
		Principal:        cfg.Service.Principal,
	})
	defer publisher.Close()

	registry := session.NewRegistry(provider)
	defer registry.StopAll()

	obs := observability.NewServer(":" + cfg.Service.MetricsPort)
	obs.Start()

	ingress := ws.NewServer(registry, publisher, cfg)
	httpServer := &http.Server{
		Addr:        ":" + cfg.Service.HTTPPort,
		Handler:     ingress.Router(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("dictation ingress listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ingress serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("ingress shutdown failed")
	}
	if err := obs.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("observability shutdown failed")
	}
}

func buildProvider(cfg *config.Config) (recognizer.Provider, error) {
	switch cfg.STT.Provider {
	case "google":
		return googlestt.New(context.Background())
	default:
		return mock.New(), nil
	}
}
