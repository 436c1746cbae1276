// Package schema validates pipeline output before it is handed to
// downstream collaborators.
package schema

import (
	"fmt"

	"clinical-dictation-service/internal/models"
	"clinical-dictation-service/internal/pipeline"
	"clinical-dictation-service/internal/recognizer"
)

// Validator asserts required fields on outputs crossing the service
// boundary.
type Validator struct{}

// New creates a validator.
func New() *Validator {
	return &Validator{}
}

// ValidateArtifact checks a narrative artifact for completeness.
// Failures carry the incomplete-artifacts error kind.
func (v *Validator) ValidateArtifact(a pipeline.Artifact) error {
	if a.Format != pipeline.FormatSingleBlock && a.Format != pipeline.FormatRolePrefixed {
		return incomplete(fmt.Sprintf("unknown narrative format %q", a.Format))
	}
	if a.Metadata.PerRoleTurnCounts == nil {
		return incomplete("narrative metadata missing per-role turn counts")
	}
	if a.Metadata.TotalTurns > 0 && a.Content == "" {
		return incomplete("narrative content empty despite non-empty turn sequence")
	}
	var counted int
	for _, n := range a.Metadata.PerRoleTurnCounts {
		counted += n
	}
	if counted != a.Metadata.TotalTurns {
		return incomplete("per-role turn counts disagree with total turns")
	}
	return nil
}

// ValidateTranscript checks a transcript event before archival.
func (v *Validator) ValidateTranscript(ev models.TranscriptEvent) error {
	if ev.ResultID == "" {
		return incomplete("transcript event missing result id")
	}
	if ev.Timestamp == 0 {
		return incomplete("transcript event missing timestamp")
	}
	return nil
}

func incomplete(msg string) error {
	return recognizer.NewError(recognizer.KindIncompleteArtifacts, msg, nil)
}
