package pipeline

import (
	"fmt"
	"regexp"

	"clinical-dictation-service/internal/recognizer"
)

// Profile is an immutable cleanup configuration selected per pipeline
// invocation by identifier.
type Profile struct {
	Name string

	// Fillers is the lowercase filler vocabulary stripped from turn
	// text, punctuation attached to the filler included.
	Fillers map[string]struct{}

	// PreservedMarkers are discourse markers exempt from filler
	// removal even though spoken language treats them as fillers.
	PreservedMarkers map[string]struct{}

	// CollapseRepetitions collapses immediately repeated content words
	// to a single occurrence. Leading sentence-initial stutter is kept.
	CollapseRepetitions bool
}

// ProfileDefault and ProfileClinicalLight are the supported profile
// identifiers.
const (
	ProfileDefault       = "default"
	ProfileClinicalLight = "clinical_light"
)

var frenchFillers = []string{"euh", "ben", "bah", "donc", "alors", "hein", "heu"}
var englishFillers = []string{"um", "uh", "er", "ah", "mm", "hmm", "like"}

func fillerSet() map[string]struct{} {
	set := make(map[string]struct{}, len(frenchFillers)+len(englishFillers))
	for _, f := range frenchFillers {
		set[f] = struct{}{}
	}
	for _, f := range englishFillers {
		set[f] = struct{}{}
	}
	return set
}

var preservedMarkers = map[string]struct{}{
	"voilà": {},
	"voila": {},
}

// profiles holds the named configurations. clinical_light disables
// repetition collapse entirely so clinically meaningful repeated
// emphasis is never dropped; filler removal still applies.
var profiles = map[string]Profile{
	ProfileDefault: {
		Name:                ProfileDefault,
		Fillers:             fillerSet(),
		PreservedMarkers:    preservedMarkers,
		CollapseRepetitions: true,
	},
	ProfileClinicalLight: {
		Name:                ProfileClinicalLight,
		Fillers:             fillerSet(),
		PreservedMarkers:    preservedMarkers,
		CollapseRepetitions: false,
	},
}

// ProfileByName resolves a profile identifier. An unrecognized
// identifier is a hard input error; there is no silent fallback.
func ProfileByName(id string) (Profile, error) {
	p, ok := profiles[id]
	if !ok {
		return Profile{}, recognizer.NewError(
			recognizer.KindInvalidProfile,
			fmt.Sprintf("invalid cleanup profile %q", id),
			nil,
		)
	}
	return p, nil
}

// Protected tokens are exempt from filler and repetition stripping:
// dosage-style numeric tokens with a unit, honorifics, and uppercase
// medical abbreviations.
var (
	protectedDosage    = regexp.MustCompile(`(?i)^\d+([.,]\d+)?(mg|mcg|µg|g|kg|ml|l|ui|mmol|cm|mm|%)$`)
	protectedHonorific = regexp.MustCompile(`^(Dr|Pr|Mr|Mrs|Ms|M|Mme|Mlle)\.?$`)
	protectedAbbrev    = regexp.MustCompile(`^[A-Z]{2,}$`)
)

// IsProtectedToken reports whether a token must survive cleanup
// untouched. The token is tested with attached punctuation stripped.
func IsProtectedToken(tok string) bool {
	core := trimTokenPunct(tok)
	if core == "" {
		return false
	}
	return protectedDosage.MatchString(core) ||
		protectedHonorific.MatchString(core) ||
		protectedAbbrev.MatchString(core)
}
