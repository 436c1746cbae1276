// Package ws provides the websocket audio ingress: binary messages in
// are audio frames, JSON messages out are transcript events and the
// final narrative.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"clinical-dictation-service/internal/config"
	"clinical-dictation-service/internal/events"
	"clinical-dictation-service/internal/models"
	"clinical-dictation-service/internal/observability"
	"clinical-dictation-service/internal/pipeline"
	"clinical-dictation-service/internal/recognizer"
	"clinical-dictation-service/internal/session"
)

// drainTimeout bounds how long the handler waits for the provider to
// flush final results after the socket stops sending audio.
const drainTimeout = 30 * time.Second

// Message is the JSON envelope sent to the client.
type Message struct {
	Type       string                  `json:"type"` // transcript | narrative | error
	Transcript *models.TranscriptEvent `json:"transcript,omitempty"`
	Narrative  *pipeline.Artifact      `json:"narrative,omitempty"`
	Cleanup    *pipeline.CleanupStats  `json:"cleanup,omitempty"`
	ErrorKind  string                  `json:"errorKind,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// Server handles websocket dictation sessions.
type Server struct {
	registry  *session.Registry
	publisher *events.Publisher
	cfg       *config.Config
	upgrader  websocket.Upgrader
}

// NewServer creates the ingress server.
func NewServer(registry *session.Registry, publisher *events.Publisher, cfg *config.Config) *Server {
	return &Server{
		registry:  registry,
		publisher: publisher,
		cfg:       cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 * 1024,
			WriteBufferSize: 32 * 1024,
		},
	}
}

// Router builds the ingress HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(observability.RequestLogger())
		r.Get("/v1/sessions/{sessionID}", s.handleStatus)
		r.Delete("/v1/sessions/{sessionID}", s.handleStop)
	})

	// No logging middleware on the stream route: the response writer
	// must stay hijackable for the websocket upgrade.
	r.Get("/v1/sessions/{sessionID}/stream", s.handleStream)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	stats := sess.AudioStats()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sessionId":  sess.ID(),
		"state":      sess.State().String(),
		"metadata":   sess.Metadata(),
		"audioStats": stats,
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Stop(chi.URLParam(r, "sessionID")); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	out := &socketWriter{conn: conn}

	profile := r.URL.Query().Get("profile")
	if profile == "" {
		profile = s.cfg.Cleanup.DefaultProfile
	}
	lang := r.URL.Query().Get("language")
	if lang == "" {
		lang = s.cfg.STT.LanguageCode
	}

	cfg := session.Config{
		SessionID: sessionID,
		Recognizer: recognizer.Config{
			LanguageCode:      lang,
			SampleRateHz:      s.cfg.STT.SampleRateHz,
			EnableDiarization: s.cfg.STT.EnableDiarization,
			StabilizePartials: s.cfg.STT.StabilizePartials,
			VocabularyName:    s.cfg.STT.VocabularyName,
		},
		CleanupProfile: profile,
		PollInterval:   s.cfg.Queue.PollInterval,
	}

	var finalEvent models.TranscriptEvent
	var finalMu sync.Mutex

	// The session must outlive an abrupt client disconnect so the
	// provider can still flush final results.
	sess, err := s.registry.Start(context.WithoutCancel(r.Context()), cfg, session.Callbacks{
		OnTranscript: func(ev models.TranscriptEvent) {
			if ev.IsFinalSentinel() {
				finalMu.Lock()
				finalEvent = ev
				finalMu.Unlock()
			}
			out.send(Message{Type: "transcript", Transcript: &ev})
		},
		OnError: func(err error) {
			out.send(Message{
				Type:      "error",
				ErrorKind: string(recognizer.KindOf(err)),
				Error:     err.Error(),
			})
		},
	})
	if err != nil {
		out.send(Message{Type: "error", ErrorKind: string(recognizer.KindBadRequest), Error: err.Error()})
		return
	}
	defer s.registry.Stop(sess.ID())

	// Read loop: binary frames feed audio, a text "end" or the socket
	// closing ends the audio side.
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		switch msgType {
		case websocket.BinaryMessage:
			sess.PushAudio(data)
		case websocket.TextMessage:
			if string(data) == "end" {
				sess.EndAudio()
			}
		}
	}
	sess.EndAudio()

	select {
	case <-sess.Done():
	case <-time.After(drainTimeout):
		log.Warn().Str("sessionId", sess.ID()).Msg("drain timeout, stopping session")
		sess.Stop()
		return
	}

	res, ok := sess.Result()
	if !ok {
		return
	}
	out.send(Message{Type: "narrative", Narrative: &res.Artifact, Cleanup: &res.Cleanup})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	finalMu.Lock()
	ev := finalEvent
	finalMu.Unlock()
	if err := s.publisher.PublishTranscript(ctx, sess.ID(), ev); err != nil {
		log.Warn().Err(err).Msg("transcript archival failed")
	}
	if err := s.publisher.PublishNarrative(ctx, sess.ID(), res.Artifact); err != nil {
		log.Warn().Err(err).Msg("narrative archival failed")
	}
}

// socketWriter serializes writes; gorilla connections do not allow
// concurrent writers.
type socketWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *socketWriter) send(msg Message) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Msg("websocket write failed")
	}
}
