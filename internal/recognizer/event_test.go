package recognizer

import "testing"

func word(content, speaker string, start, end, conf float64) Item {
	return Item{
		Content:      content,
		StartTime:    start,
		EndTime:      end,
		SpeakerLabel: speaker,
		Confidence:   conf,
		Kind:         ItemKindPronunciation,
	}
}

func punct(content string, at float64) Item {
	return Item{Content: content, StartTime: at, EndTime: at, Kind: ItemKindPunctuation}
}

func TestEvent_Transcript(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{
			name: "words and trailing punctuation",
			items: []Item{
				word("Comment", "spk_1", 0, 0.4, 0.9),
				word("allez-vous", "spk_1", 0.4, 0.8, 0.9),
				punct("?", 0.8),
			},
			want: "Comment allez-vous?",
		},
		{
			name: "punctuation mid-sentence",
			items: []Item{
				word("Oui", "spk_0", 0, 0.4, 0.9),
				punct(",", 0.4),
				word("merci", "spk_0", 0.5, 0.9, 0.9),
			},
			want: "Oui, merci",
		},
		{
			name:  "single word",
			items: []Item{word("Bonjour", "spk_0", 0, 0.4, 0.9)},
			want:  "Bonjour",
		},
		{
			name:  "empty content skipped",
			items: []Item{word("", "spk_0", 0, 0.4, 0.9), word("salut", "spk_0", 0.4, 0.8, 0.9)},
			want:  "salut",
		},
		{
			name: "empty event",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Event{ResultID: "r", Items: tt.items}
			if got := ev.Transcript(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestEvent_TimeRange(t *testing.T) {
	ev := Event{Items: []Item{
		word("b", "spk_0", 1.0, 1.4, 0.9),
		word("a", "spk_0", 0.2, 0.6, 0.9),
		word("c", "spk_0", 1.4, 2.2, 0.9),
	}}
	start, end := ev.TimeRange()
	if start != 0.2 || end != 2.2 {
		t.Errorf("expected [0.2, 2.2], got [%v, %v]", start, end)
	}

	if s, e := (Event{}).TimeRange(); s != 0 || e != 0 {
		t.Errorf("empty event must report zeros, got [%v, %v]", s, e)
	}
}

func TestEvent_AverageConfidence(t *testing.T) {
	ev := Event{Items: []Item{
		word("a", "spk_0", 0, 0.4, 0.8),
		word("b", "spk_0", 0.4, 0.8, 0.6),
		punct("?", 0.8), // punctuation excluded from the mean
	}}
	if got := ev.AverageConfidence(); got < 0.699 || got > 0.701 {
		t.Errorf("expected 0.7, got %v", got)
	}
	if got := (Event{Items: []Item{punct(".", 0)}}).AverageConfidence(); got != 0 {
		t.Errorf("punctuation-only event must report 0, got %v", got)
	}
}
