// Package google provides a Google Cloud Speech-to-Text streaming
// recognizer with speaker diarization.
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
package google

import (
	"context"
	"fmt"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"

	"clinical-dictation-service/internal/recognizer"
)

// Provider implements recognizer.Provider using Google Cloud Speech.
type Provider struct {
	client *speech.Client
}

// New creates a Google streaming recognizer provider.
func New(ctx context.Context) (*Provider, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, recognizer.Classify(err, "create speech client")
	}
	return &Provider{client: c}, nil
}

func (p *Provider) Name() string { return "google" }

// Start opens a streaming recognition session and sends the initial
// config as the first message.
func (p *Provider) Start(ctx context.Context, cfg recognizer.Config) (recognizer.Stream, recognizer.Handshake, error) {
	gs, err := p.client.StreamingRecognize(ctx)
	if err != nil {
		return nil, recognizer.Handshake{}, recognizer.Classify(err, "open streaming recognize")
	}

	rc := &speechpb.RecognitionConfig{
		Encoding:                   speechpb.RecognitionConfig_LINEAR16,
		SampleRateHertz:            int32(cfg.SampleRateHz),
		LanguageCode:               cfg.LanguageCode,
		EnableWordTimeOffsets:      true,
		EnableAutomaticPunctuation: true,
	}
	if cfg.EnableDiarization {
		rc.DiarizationConfig = &speechpb.SpeakerDiarizationConfig{
			EnableSpeakerDiarization: true,
			MinSpeakerCount:          1,
			MaxSpeakerCount:          2,
		}
	}
	if cfg.VocabularyName != "" {
		rc.SpeechContexts = []*speechpb.SpeechContext{{Phrases: []string{cfg.VocabularyName}}}
	}

	err = gs.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config:         rc,
				InterimResults: true,
			},
		},
	})
	if err != nil {
		return nil, recognizer.Handshake{}, recognizer.Classify(err, "send streaming config")
	}

	return &stream{gs: gs}, recognizer.Handshake{}, nil
}

// Close releases the underlying client.
func (p *Provider) Close() error {
	return p.client.Close()
}

type stream struct {
	gs speechpb.Speech_StreamingRecognizeClient

	mu      sync.Mutex
	results int
}

func (s *stream) Send(ctx context.Context, audio []byte) error {
	err := s.gs.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: audio,
		},
	})
	if err != nil {
		return recognizer.Classify(err, "send audio")
	}
	return nil
}

func (s *stream) CloseSend() error {
	return s.gs.CloseSend()
}

func (s *stream) Close() error {
	// The gRPC stream is torn down with its context; nothing else held.
	return nil
}

// Next receives one response and converts its first result into a
// recognition event. io.EOF passes through untouched so the session
// can distinguish graceful end of stream from failure.
func (s *stream) Next(ctx context.Context) (recognizer.Event, error) {
	for {
		resp, err := s.gs.Recv()
		if err != nil {
			return recognizer.Event{}, err
		}
		if resp.Error != nil {
			return recognizer.Event{}, recognizer.NewError(
				recognizer.KindProviderInternal,
				fmt.Sprintf("provider result error: %s", resp.Error.GetMessage()),
				nil,
			)
		}
		for _, r := range resp.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			s.mu.Lock()
			s.results++
			id := fmt.Sprintf("result-%d", s.results)
			s.mu.Unlock()
			return convertResult(id, r), nil
		}
	}
}

// convertResult maps one Google result to the item-level event model.
// Google attaches punctuation to the word token, so trailing sentence
// punctuation is split out as a punctuation item.
func convertResult(id string, r *speechpb.StreamingRecognitionResult) recognizer.Event {
	alt := r.Alternatives[0]
	ev := recognizer.Event{
		ResultID:  id,
		IsPartial: !r.IsFinal,
	}
	for _, w := range alt.Words {
		word := w.Word
		var punct string
		if n := len(word); n > 1 {
			switch word[n-1] {
			case ',', '.', '?', '!', ':':
				punct = word[n-1:]
				word = word[:n-1]
			}
		}
		start := w.StartTime.AsDuration().Seconds()
		end := w.EndTime.AsDuration().Seconds()
		ev.Items = append(ev.Items, recognizer.Item{
			Content:      word,
			StartTime:    start,
			EndTime:      end,
			SpeakerLabel: speakerLabel(w.SpeakerTag),
			Confidence:   float64(alt.Confidence),
			Kind:         recognizer.ItemKindPronunciation,
		})
		if punct != "" {
			ev.Items = append(ev.Items, recognizer.Item{
				Content:    punct,
				StartTime:  end,
				EndTime:    end,
				Confidence: float64(alt.Confidence),
				Kind:       recognizer.ItemKindPunctuation,
			})
		}
	}
	return ev
}

func speakerLabel(tag int32) string {
	if tag <= 0 {
		return ""
	}
	return fmt.Sprintf("spk_%d", tag-1)
}
