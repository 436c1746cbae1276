package session

import "time"

// Metadata is per-session state created on stream start, enriched once
// the provider handshake completes, and torn down with the session.
type Metadata struct {
	SessionID         string    `json:"sessionId"`
	StartTime         time.Time `json:"startTime"`
	ProviderRequestID string    `json:"providerRequestId,omitempty"`
	ProviderSessionID string    `json:"providerSessionId,omitempty"`
}
