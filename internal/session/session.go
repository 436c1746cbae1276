package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clinical-dictation-service/internal/audiostats"
	"clinical-dictation-service/internal/models"
	"clinical-dictation-service/internal/observability/logging"
	"clinical-dictation-service/internal/observability/metrics"
	"clinical-dictation-service/internal/pipeline"
	"clinical-dictation-service/internal/recognizer"
	"clinical-dictation-service/internal/schema"
)

// Callbacks receive transcript events and classified errors. They are
// invoked from the session's internal workers, never from the caller's
// audio-feeding path.
type Callbacks struct {
	OnTranscript func(models.TranscriptEvent)
	OnError      func(err error)
}

// Config describes one streaming session.
type Config struct {
	SessionID      string
	Recognizer     recognizer.Config
	CleanupProfile string
	PollInterval   time.Duration
}

// Session owns exactly one provider connection and one inbound event
// stream. The feeder (PushAudio/EndAudio) is usable immediately after
// Start, while the handshake and event loop run in the background: the
// caller's audio source is never made to wait on a network round trip.
type Session struct {
	id        string
	provider  recognizer.Provider
	queue     *FeedQueue
	stats     *audiostats.Collector
	lc        *lifecycle
	cb        Callbacks
	metrics   *metrics.Metrics
	log       zerolog.Logger
	profileID string
	validator *schema.Validator

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu     sync.Mutex
	meta   Metadata
	ingest *pipeline.Ingestor
	result *pipeline.Result
}

// Start constructs a session and returns it synchronously: the queue
// and feeder exist before the provider handshake begins. Handshake
// completion or failure is communicated solely through the callbacks.
func Start(ctx context.Context, provider recognizer.Provider, cfg Config, cb Callbacks) *Session {
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if cfg.CleanupProfile == "" {
		cfg.CleanupProfile = pipeline.ProfileDefault
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Session{
		id:        cfg.SessionID,
		provider:  provider,
		stats:     audiostats.NewCollector(),
		lc:        newLifecycle(),
		cb:        cb,
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithStream(cfg.SessionID, provider.Name()),
		profileID: cfg.CleanupProfile,
		validator: schema.New(),
		cancel:    cancel,
		done:      make(chan struct{}),
		ingest:    pipeline.NewIngestor(),
		meta: Metadata{
			SessionID: cfg.SessionID,
			StartTime: time.Now().UTC(),
		},
	}
	s.queue = NewFeedQueue(cfg.PollInterval, s.stats)

	s.metrics.RecordSessionStart()
	s.lc.advance(StateHandshaking)
	s.log.Info().Msg("session starting")

	go s.run(runCtx, cfg.Recognizer)
	return s
}

// PushAudio appends a frame to the feed queue. Non-blocking; reports
// whether the frame was accepted (frames are dropped once audio has
// ended).
func (s *Session) PushAudio(frame []byte) bool {
	return s.queue.Push(frame)
}

// EndAudio is the cooperative cancellation signal for the outbound
// side. The queue stops accepting pushes; buffered frames drain and
// inbound events continue until the provider signals end of stream.
func (s *Session) EndAudio() {
	s.queue.Close()
	s.lc.advance(StateDraining)
}

// Stop tears the session down. Idempotent and safe after natural
// completion; releases the queue, the event subscription and metadata.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.queue.Close()
		s.cancel()
		s.lc.forceClose()
		s.log.Info().Msg("session stopped")
	})
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.lc.State() }

// Done closes once the session's workers have exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Metadata returns a snapshot of the session metadata.
func (s *Session) Metadata() Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// AudioStats returns the diagnostic amplitude aggregate.
func (s *Session) AudioStats() audiostats.SessionStats {
	return s.stats.Summary()
}

// Result returns the pipeline result once the session closed
// gracefully.
func (s *Session) Result() (pipeline.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return pipeline.Result{}, false
	}
	return *s.result, true
}

// RunPipeline re-runs S2-S5 over the sealed turns with another cleanup
// profile. The sealed sequence is never mutated, so an invalid profile
// fails this invocation only.
func (s *Session) RunPipeline(profileID string) (pipeline.Result, error) {
	s.mu.Lock()
	turns := s.ingest.Sealed()
	s.mu.Unlock()
	return pipeline.Run(turns, profileID)
}

func (s *Session) run(ctx context.Context, rc recognizer.Config) {
	start := time.Now()
	defer func() {
		s.metrics.RecordSessionEnd(time.Since(start).Seconds())
		close(s.done)
	}()

	rc.SessionID = s.id
	stream, hs, err := s.provider.Start(ctx, rc)
	if err != nil {
		if ctx.Err() != nil {
			s.lc.forceClose()
			return
		}
		s.fail(recognizer.Classify(err, "provider handshake rejected"))
		return
	}
	defer stream.Close()

	s.mu.Lock()
	s.meta.ProviderRequestID = hs.RequestID
	s.meta.ProviderSessionID = hs.ProviderSessionID
	s.mu.Unlock()

	if !s.lc.advance(StateStreaming) {
		// Stopped during handshake.
		return
	}
	s.log.Info().
		Str("providerRequestId", hs.RequestID).
		Msg("provider handshake complete")

	go s.pump(ctx, stream)

	for {
		ev, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				s.lc.forceClose()
				return
			}
			s.fail(recognizer.Classify(err, "provider stream error"))
			return
		}
		s.handleEvent(ev)
	}

	s.lc.advance(StateDraining)
	s.finalize()
	s.lc.advance(StateClosed)
	s.log.Info().Msg("session closed")
}

// pump drains the feed queue into the outbound provider stream. Queue
// closure propagates as CloseSend so the provider can flush its final
// results.
func (s *Session) pump(ctx context.Context, stream recognizer.Stream) {
	for {
		frame, err := s.queue.Next(ctx)
		if errors.Is(err, ErrQueueClosed) {
			if err := stream.CloseSend(); err != nil {
				s.log.Warn().Err(err).Msg("close send failed")
			}
			return
		}
		if err != nil {
			return // cancelled
		}
		if err := stream.Send(ctx, frame); err != nil {
			if ctx.Err() == nil {
				s.fail(recognizer.Classify(err, "send audio to provider"))
			}
			return
		}
	}
}

func (s *Session) handleEvent(ev recognizer.Event) {
	s.metrics.RecordEvent(ev.IsPartial)

	s.mu.Lock()
	prevSealed := len(s.ingest.Sealed())
	prevChanges := len(s.ingest.SpeakerChanges())
	s.ingest.AddEvent(ev)
	sealedDelta := len(s.ingest.Sealed()) - prevSealed
	changes := s.ingest.SpeakerChanges()[prevChanges:]
	s.mu.Unlock()

	for _, ch := range changes {
		s.metrics.SpeakerChanges.Inc()
		s.log.Debug().
			Int("ordinal", ch.Ordinal).
			Str("from", ch.From).
			Str("to", ch.To).
			Float64("at", ch.At).
			Str("snippet", ch.Snippet).
			Msg("speaker change")
	}
	if sealedDelta > 0 {
		s.metrics.TurnsSealed.Add(float64(sealedDelta))
	}

	text := ev.Transcript()
	if text == "" {
		return
	}
	startT, endT := ev.TimeRange()
	s.emit(models.TranscriptEvent{
		Transcript:      text,
		IsPartial:       ev.IsPartial,
		ConfidenceScore: ev.AverageConfidence(),
		Timestamp:       time.Now().UnixMilli(),
		ResultID:        ev.ResultID,
		StartTime:       startT,
		EndTime:         endT,
		Speaker:         firstSpeaker(ev),
	})
}

// finalize seals the last turn, emits the synthetic "stream ended"
// sentinel with the consolidated raw transcript, and runs the
// post-processing pipeline synchronously.
func (s *Session) finalize() {
	s.mu.Lock()
	turns := s.ingest.Finalize()
	s.mu.Unlock()

	raw := make([]string, 0, len(turns))
	var startT, endT float64
	for i, t := range turns {
		raw = append(raw, t.Text)
		if i == 0 {
			startT = t.StartTime
		}
		endT = t.EndTime
	}
	s.emit(models.TranscriptEvent{
		Transcript: strings.Join(raw, " "),
		IsPartial:  false,
		Timestamp:  time.Now().UnixMilli(),
		ResultID:   models.FinalResultID,
		StartTime:  startT,
		EndTime:    endT,
	})

	pipeStart := time.Now()
	res, err := pipeline.Run(turns, s.profileID)
	if err != nil {
		if recognizer.KindOf(err) == recognizer.KindInvalidProfile {
			s.metrics.InvalidProfileTotal.Inc()
		}
		s.log.Error().Err(err).Msg("pipeline failed")
		if s.cb.OnError != nil {
			s.cb.OnError(err)
		}
		return
	}
	if err := s.validator.ValidateArtifact(res.Artifact); err != nil {
		s.log.Error().Err(err).Msg("artifact validation failed")
		if s.cb.OnError != nil {
			s.cb.OnError(err)
		}
		return
	}

	s.mu.Lock()
	s.result = &res
	s.mu.Unlock()

	if coalesced := len(turns) - res.Cleanup.OriginalTurnCount; coalesced > 0 {
		s.metrics.TurnsMerged.Add(float64(coalesced))
	}
	s.metrics.RecordCleanup(
		res.Cleanup.RemovedFillers,
		res.Cleanup.RemovedRepetitions,
		res.Cleanup.OriginalTurnCount-res.Cleanup.CleanedTurnCount,
	)
	s.metrics.RecordNarrative(string(res.Artifact.Format), time.Since(pipeStart).Seconds())

	stats := s.stats.Summary()
	s.log.Info().
		Int("turns", res.Cleanup.CleanedTurnCount).
		Int("speakers", res.Roles.DistinctSpeakers()).
		Str("format", string(res.Artifact.Format)).
		Int("audioFrames", stats.Frames).
		Float64("audioRMS", stats.RMS).
		Msg("narrative rendered")
}

// fail classifies the error, surfaces it once through OnError, and
// tears the session down. Sessions never retry; retry policy belongs
// to the caller at the session-creation boundary.
func (s *Session) fail(err *recognizer.Error) {
	if !s.lc.fail() {
		return
	}
	s.queue.Close()
	s.metrics.RecordSessionFailed(string(err.Kind))
	s.metrics.RecordProviderError(s.provider.Name(), string(err.Kind))
	s.log.Error().Err(err).Str("kind", string(err.Kind)).Msg("session failed")
	if s.cb.OnError != nil {
		s.cb.OnError(err)
	}
}

func (s *Session) emit(ev models.TranscriptEvent) {
	if s.cb.OnTranscript != nil {
		s.cb.OnTranscript(ev)
	}
}

func firstSpeaker(ev recognizer.Event) string {
	for _, it := range ev.Items {
		if it.SpeakerLabel != "" {
			return it.SpeakerLabel
		}
	}
	return ""
}
