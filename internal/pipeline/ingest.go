// Package pipeline converts raw diarized recognition events into a
// clean, role-labeled clinical narrative. Stages: ingest (events to
// turns), merge, role assignment, cleanup, narrative rendering.
package pipeline

import (
	"fmt"

	"clinical-dictation-service/internal/recognizer"
)

// Turn is a contiguous span of speech attributed to one speaker.
// Invariant: StartTime <= EndTime. Text is the time-ordered
// concatenation of constituent item contents.
type Turn struct {
	Speaker    string  `json:"speaker"`
	StartTime  float64 `json:"startTime"`
	EndTime    float64 `json:"endTime"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	IsPartial  bool    `json:"isPartial"`
}

// SpeakerChange is a diagnostic record of a label transition observed
// during ingest. Observability only; never affects turn content.
type SpeakerChange struct {
	Ordinal int
	From    string
	To      string
	At      float64
	Snippet string
}

// Ingestor accumulates recognition events into provisional turns
// grouped by contiguous same-speaker items. Only non-partial events
// contribute to the sealed sequence; partials are for live display and
// are discarded once superseded.
type Ingestor struct {
	sealed  []Turn
	changes []SpeakerChange

	current *Turn
	confSum float64
	confN   int

	interim string
}

// NewIngestor creates an empty ingestor.
func NewIngestor() *Ingestor {
	return &Ingestor{}
}

// AddEvent folds one recognition event into the accumulator. Partial
// events only update the interim transcript. An event with zero items
// is a no-op.
func (g *Ingestor) AddEvent(ev recognizer.Event) {
	if ev.IsPartial {
		if t := ev.Transcript(); t != "" {
			g.interim = t
		}
		return
	}
	for _, it := range ev.Items {
		g.addItem(it)
	}
}

func (g *Ingestor) addItem(it recognizer.Item) {
	if it.Content == "" {
		return
	}

	// A labeled item for a different speaker seals the current turn.
	// Unlabeled items (pure punctuation) extend the current run.
	if g.current != nil && it.SpeakerLabel != "" && it.SpeakerLabel != g.current.Speaker {
		g.changes = append(g.changes, SpeakerChange{
			Ordinal: len(g.changes) + 1,
			From:    g.current.Speaker,
			To:      it.SpeakerLabel,
			At:      it.StartTime,
			Snippet: snippet(g.current.Text),
		})
		g.seal()
	}

	if g.current == nil {
		g.current = &Turn{
			Speaker:   it.SpeakerLabel,
			StartTime: it.StartTime,
			EndTime:   it.EndTime,
		}
	}

	if it.Kind == recognizer.ItemKindPunctuation {
		g.current.Text += it.Content
	} else {
		if g.current.Text != "" {
			g.current.Text += " "
		}
		g.current.Text += it.Content
		g.confSum += it.Confidence
		g.confN++
	}
	if it.EndTime > g.current.EndTime {
		g.current.EndTime = it.EndTime
	}
}

func (g *Ingestor) seal() {
	if g.current == nil {
		return
	}
	if g.confN > 0 {
		g.current.Confidence = g.confSum / float64(g.confN)
	}
	g.sealed = append(g.sealed, *g.current)
	g.current = nil
	g.confSum = 0
	g.confN = 0
}

// Finalize seals the trailing turn and returns the stable sequence.
func (g *Ingestor) Finalize() []Turn {
	g.seal()
	return g.sealed
}

// Sealed returns the turns sealed so far, without finalizing.
func (g *Ingestor) Sealed() []Turn {
	return g.sealed
}

// Interim returns the latest partial transcript for live display.
func (g *Ingestor) Interim() string {
	return g.interim
}

// SpeakerChanges returns the label-transition diagnostics recorded so
// far.
func (g *Ingestor) SpeakerChanges() []SpeakerChange {
	return g.changes
}

func snippet(text string) string {
	const max = 40
	if len(text) <= max {
		return text
	}
	return fmt.Sprintf("%s...", text[:max])
}
