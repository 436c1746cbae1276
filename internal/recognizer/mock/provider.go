// Package mock provides a scripted recognizer for testing without
// cloud credentials. It simulates realistic diarized speech-to-text
// behavior: progressive partial events followed by exactly one final
// event per utterance, with stable anonymous speaker labels.
package mock

import (
	"context"
	"fmt"
	"io"
	"sync"

	"clinical-dictation-service/internal/recognizer"
)

// ScriptedUtterance is one utterance the mock will replay.
type ScriptedUtterance struct {
	SpeakerLabel string
	Partials     []string // progressive interim transcripts
	Words        []string // final word items, in time order
	Punctuation  string   // trailing punctuation item, "" for none
	Confidence   float64
}

// DefaultScript models a short two-party consult: the patient speaks
// first, the clinician answers.
var DefaultScript = []ScriptedUtterance{
	{
		SpeakerLabel: "spk_0",
		Partials:     []string{"Bonjour", "Bonjour docteur"},
		Words:        []string{"Bonjour", "docteur"},
		Confidence:   0.94,
	},
	{
		SpeakerLabel: "spk_1",
		Partials:     []string{"Comment", "Comment allez-vous"},
		Words:        []string{"Comment", "allez-vous"},
		Punctuation:  "?",
		Confidence:   0.91,
	},
}

// Provider implements recognizer.Provider with scripted responses.
type Provider struct {
	Script   []ScriptedUtterance
	FailWith error // when set, Start fails with this error

	mu       sync.Mutex
	sessions int
}

// New creates a mock provider replaying the default script.
func New() *Provider {
	return &Provider{Script: DefaultScript}
}

func (p *Provider) Name() string { return "mock" }

// Sessions returns how many streams this provider has started.
func (p *Provider) Sessions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions
}

// Start opens a scripted stream. Each audio frame sent advances the
// script by one event, mimicking a provider that answers at its own
// pace; CloseSend flushes whatever remains before end of stream.
func (p *Provider) Start(ctx context.Context, cfg recognizer.Config) (recognizer.Stream, recognizer.Handshake, error) {
	if p.FailWith != nil {
		return nil, recognizer.Handshake{}, p.FailWith
	}

	p.mu.Lock()
	p.sessions++
	n := p.sessions
	p.mu.Unlock()

	s := &stream{
		events: make(chan recognizer.Event, 64),
		script: buildEvents(p.Script),
	}
	hs := recognizer.Handshake{
		RequestID:         fmt.Sprintf("mock-req-%d", n),
		ProviderSessionID: fmt.Sprintf("mock-session-%d", n),
	}
	return s, hs, nil
}

type stream struct {
	mu        sync.Mutex
	script    []recognizer.Event
	nextEvent int
	events    chan recognizer.Event
	sendDone  bool
	closed    bool
}

func (s *stream) Send(ctx context.Context, audio []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendDone || s.closed {
		return io.ErrClosedPipe
	}
	if s.nextEvent < len(s.script) {
		s.events <- s.script[s.nextEvent]
		s.nextEvent++
	}
	return nil
}

func (s *stream) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendDone {
		return nil
	}
	s.sendDone = true
	// Flush the rest of the script so short audio still yields finals.
	for ; s.nextEvent < len(s.script); s.nextEvent++ {
		s.events <- s.script[s.nextEvent]
	}
	close(s.events)
	return nil
}

func (s *stream) Next(ctx context.Context) (recognizer.Event, error) {
	select {
	case <-ctx.Done():
		return recognizer.Event{}, ctx.Err()
	case ev, ok := <-s.events:
		if !ok {
			return recognizer.Event{}, io.EOF
		}
		return ev, nil
	}
}

func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sendDone {
		s.sendDone = true
		close(s.events)
	}
	s.closed = true
	return nil
}

// buildEvents expands the script into the event sequence the stream
// replays: each utterance's partials first, then its final with
// word-level diarized items at 0.4s per word.
func buildEvents(script []ScriptedUtterance) []recognizer.Event {
	var out []recognizer.Event
	var clock float64
	for i, u := range script {
		for j, partial := range u.Partials {
			out = append(out, recognizer.Event{
				ResultID:  fmt.Sprintf("result-%d", i),
				IsPartial: true,
				Items: []recognizer.Item{{
					Content:      partial,
					StartTime:    clock,
					EndTime:      clock + float64(j+1)*0.4,
					SpeakerLabel: u.SpeakerLabel,
					Confidence:   u.Confidence * 0.8,
					Kind:         recognizer.ItemKindPronunciation,
				}},
			})
		}
		final := recognizer.Event{
			ResultID:  fmt.Sprintf("result-%d", i),
			IsPartial: false,
		}
		for _, w := range u.Words {
			final.Items = append(final.Items, recognizer.Item{
				Content:      w,
				StartTime:    clock,
				EndTime:      clock + 0.4,
				SpeakerLabel: u.SpeakerLabel,
				Confidence:   u.Confidence,
				Kind:         recognizer.ItemKindPronunciation,
			})
			clock += 0.4
		}
		if u.Punctuation != "" {
			final.Items = append(final.Items, recognizer.Item{
				Content:    u.Punctuation,
				StartTime:  clock,
				EndTime:    clock,
				Confidence: u.Confidence,
				Kind:       recognizer.ItemKindPunctuation,
			})
		}
		out = append(out, final)
		clock += 0.2 // inter-utterance gap
	}
	return out
}
