package pipeline

import (
	"regexp"
	"strings"
)

// CleanupStats reports what cleanup did, as counts, so the contract is
// auditable without re-deriving from text.
type CleanupStats struct {
	OriginalTurnCount  int `json:"originalTurnCount"`
	CleanedTurnCount   int `json:"cleanedTurnCount"`
	RemovedFillers     int `json:"removedFillers"`
	RemovedRepetitions int `json:"removedRepetitions"`
}

// CleanupTurns applies the named normalization profile to every turn:
// filler removal, profile-dependent repetition collapse, whitespace
// and punctuation normalization. Turns left empty afterwards are
// dropped. The input slice is never mutated; an unrecognized profile
// identifier fails the whole stage.
func CleanupTurns(turns []Turn, profileID string) ([]Turn, CleanupStats, error) {
	profile, err := ProfileByName(profileID)
	if err != nil {
		return nil, CleanupStats{}, err
	}

	stats := CleanupStats{OriginalTurnCount: len(turns)}
	out := make([]Turn, 0, len(turns))
	for _, t := range turns {
		cleaned := t
		text, fillers := stripFillers(t.Text, profile)
		if profile.CollapseRepetitions {
			var reps int
			text, reps = collapseRepetitions(text)
			stats.RemovedRepetitions += reps
		}
		stats.RemovedFillers += fillers
		cleaned.Text = normalizeText(text)
		if cleaned.Text == "" {
			continue
		}
		out = append(out, cleaned)
	}
	stats.CleanedTurnCount = len(out)
	return out, stats, nil
}

// stripFillers drops filler tokens, attached punctuation included.
// Protected tokens and preserved discourse markers survive.
func stripFillers(text string, p Profile) (string, int) {
	tokens := strings.Fields(text)
	kept := tokens[:0:0]
	removed := 0
	for _, tok := range tokens {
		core := strings.ToLower(trimTokenPunct(tok))
		if _, filler := p.Fillers[core]; !filler {
			kept = append(kept, tok)
			continue
		}
		if _, preserved := p.PreservedMarkers[core]; preserved {
			kept = append(kept, tok)
			continue
		}
		if IsProtectedToken(tok) {
			kept = append(kept, tok)
			continue
		}
		removed++
	}
	return strings.Join(kept, " "), removed
}

// collapseRepetitions collapses an immediately repeated word to one
// occurrence. A stutter on the very first word of the turn is left as
// spoken; repeats later in the sentence are collapsed.
func collapseRepetitions(text string) (string, int) {
	tokens := strings.Fields(text)
	if len(tokens) < 2 {
		return text, 0
	}
	kept := tokens[:1:1]
	removed := 0
	for i := 1; i < len(tokens); i++ {
		cur := strings.ToLower(trimTokenPunct(tokens[i]))
		prev := strings.ToLower(trimTokenPunct(tokens[i-1]))
		if i > 1 && cur != "" && cur == prev && !IsProtectedToken(tokens[i]) {
			removed++
			continue
		}
		kept = append(kept, tokens[i])
	}
	return strings.Join(kept, " "), removed
}

var (
	wsRun       = regexp.MustCompile(`\s+`)
	wsBeforePct = regexp.MustCompile(`\s+([,.?!:])`)
	pctNoSpace  = regexp.MustCompile(`\d[,.]\d|[,.?!:][^\s,.?!:]`)
	digitPct    = regexp.MustCompile(`\d[,.]\d`)
)

// normalizeText collapses whitespace runs, removes whitespace before a
// punctuation mark, and ensures exactly one space after one. Decimal
// separators inside numbers stay intact.
func normalizeText(text string) string {
	text = wsRun.ReplaceAllString(text, " ")
	text = wsBeforePct.ReplaceAllString(text, "$1")
	text = pctNoSpace.ReplaceAllStringFunc(text, func(m string) string {
		if digitPct.MatchString(m) {
			return m
		}
		return m[:1] + " " + m[1:]
	})
	return strings.TrimSpace(text)
}

// trimTokenPunct strips leading and trailing punctuation from a
// whitespace-delimited token, leaving the word core for matching.
func trimTokenPunct(tok string) string {
	return strings.Trim(tok, ",.?!:;\"'()«»")
}
