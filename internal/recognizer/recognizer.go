// Package recognizer defines the interface for streaming speech
// recognition providers (Google, AWS, mock) and the event model they
// all emit.
package recognizer

import "context"

// Config describes one streaming recognition session.
type Config struct {
	SessionID string

	// LanguageCode selects the recognition language, e.g. "fr-CA".
	LanguageCode string

	// SampleRateHz is the PCM sample rate negotiated by the caller.
	SampleRateHz int

	// EnableDiarization asks the provider to attribute items to
	// anonymous speaker labels.
	EnableDiarization bool

	// StabilizePartials asks the provider for higher-stability interim
	// results where supported.
	StabilizePartials bool

	// VocabularyName references an optional provider-side custom
	// vocabulary (medical terms).
	VocabularyName string
}

// Handshake carries provider-assigned identifiers returned once the
// connection is accepted. Either field may be empty.
type Handshake struct {
	RequestID         string
	ProviderSessionID string
}

// Stream is one bidirectional recognition stream. Send/CloseSend feed
// the outbound side; Next blocks for the next inbound event and
// returns io.EOF when the provider signals end of stream.
type Stream interface {
	Send(ctx context.Context, audio []byte) error
	CloseSend() error
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Provider starts streaming recognition sessions.
type Provider interface {
	// Name identifies the provider for logs and metrics.
	Name() string

	// Start opens the connection and returns the stream handle once the
	// provider has accepted the session.
	Start(ctx context.Context, cfg Config) (Stream, Handshake, error)
}
