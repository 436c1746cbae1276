// Package models defines the data structures for transcript and
// narrative events.
package models

// FinalResultID is the sentinel ResultID of the synthetic "stream
// ended" event carrying the consolidated raw transcript.
const FinalResultID = "final_result"

// TranscriptEvent is one callback payload delivered to the session's
// transcript consumer.
type TranscriptEvent struct {
	Transcript      string  `json:"transcript"`
	IsPartial       bool    `json:"isPartial"`
	ConfidenceScore float64 `json:"confidenceScore"`
	Timestamp       int64   `json:"timestamp"`
	ResultID        string  `json:"resultId"`
	StartTime       float64 `json:"startTime"`
	EndTime         float64 `json:"endTime"`
	Speaker         string  `json:"speaker"`
}

// IsFinalSentinel reports whether this is the synthetic end-of-stream
// event.
func (e TranscriptEvent) IsFinalSentinel() bool {
	return e.ResultID == FinalResultID && !e.IsPartial
}

// TranscriptArchival wraps a final transcript event for downstream
// archival.
type TranscriptArchival struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
	TranscriptEvent
}

// NarrativeArchival wraps a rendered narrative artifact for downstream
// archival.
type NarrativeArchival struct {
	EventType         string         `json:"eventType"`
	SessionID         string         `json:"sessionId"`
	Timestamp         int64          `json:"timestamp"`
	Format            string         `json:"format"`
	Content           string         `json:"content"`
	TotalSpeakers     int            `json:"totalSpeakers"`
	TotalTurns        int            `json:"totalTurns"`
	PerRoleTurnCounts map[string]int `json:"perRoleTurnCounts"`
}
