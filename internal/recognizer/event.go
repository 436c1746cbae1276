package recognizer

import "strings"

// ItemKind distinguishes spoken tokens from punctuation tokens.
type ItemKind string

const (
	ItemKindPronunciation ItemKind = "pronunciation"
	ItemKindPunctuation   ItemKind = "punctuation"
)

// Item is one word- or punctuation-level recognition result.
// SpeakerLabel is empty when the provider did not attribute the item
// (pure punctuation continuing the same run, or diarization disabled).
type Item struct {
	Content      string
	StartTime    float64
	EndTime      float64
	SpeakerLabel string
	Confidence   float64
	Kind         ItemKind
}

// Event is one incremental result from the provider. Partial events
// are superseded by later events covering the same time range and must
// never be treated as final.
type Event struct {
	ResultID  string
	IsPartial bool
	Items     []Item
}

// Transcript renders the event's items in time order: pronunciation
// items are space-separated, punctuation attaches to the preceding
// token.
func (e Event) Transcript() string {
	var b strings.Builder
	for _, it := range e.Items {
		if it.Content == "" {
			continue
		}
		if it.Kind == ItemKindPunctuation {
			b.WriteString(it.Content)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(it.Content)
	}
	return b.String()
}

// TimeRange returns the event's [start, end] bounds in seconds, or
// zeros for an empty event.
func (e Event) TimeRange() (start, end float64) {
	if len(e.Items) == 0 {
		return 0, 0
	}
	start = e.Items[0].StartTime
	end = e.Items[0].EndTime
	for _, it := range e.Items[1:] {
		if it.StartTime < start {
			start = it.StartTime
		}
		if it.EndTime > end {
			end = it.EndTime
		}
	}
	return start, end
}

// AverageConfidence returns the mean confidence over pronunciation
// items, or zero when the event carries none.
func (e Event) AverageConfidence() float64 {
	var sum float64
	var n int
	for _, it := range e.Items {
		if it.Kind != ItemKindPronunciation {
			continue
		}
		sum += it.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
