package pipeline

import (
	"testing"

	"clinical-dictation-service/internal/recognizer"
)

func cleanOne(t *testing.T, profile, text string) (string, CleanupStats) {
	t.Helper()
	out, stats, err := CleanupTurns([]Turn{turn("spk_0", text, 0, 1)}, profile)
	if err != nil {
		t.Fatalf("unexpected cleanup error: %v", err)
	}
	if len(out) == 0 {
		return "", stats
	}
	return out[0].Text, stats
}

func TestCleanup_FrenchFillers(t *testing.T) {
	got, stats := cleanOne(t, ProfileDefault, "Euh, ben alors, voilà, donc comment allez-vous?")

	want := "voilà, comment allez-vous?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if stats.RemovedFillers != 4 {
		t.Errorf("expected 4 removed fillers, got %d", stats.RemovedFillers)
	}
}

func TestCleanup_EnglishFillers(t *testing.T) {
	got, _ := cleanOne(t, ProfileDefault, "Um, uh, er, ah, mm, hmm, like, how are you?")

	want := "how are you?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCleanup_PunctuationNormalization(t *testing.T) {
	got, _ := cleanOne(t, ProfileDefault, "Bonjour   ,   docteur   .   Comment   ?")

	want := "Bonjour, docteur. Comment?"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCleanup_ClinicalLightKeepsRepetitions(t *testing.T) {
	input := "Je prends 50mg de médicament médicament"
	got, stats := cleanOne(t, ProfileClinicalLight, input)

	if got != input {
		t.Errorf("clinical_light must leave repetitions intact: expected %q, got %q", input, got)
	}
	if stats.RemovedRepetitions != 0 {
		t.Errorf("expected 0 removed repetitions, got %d", stats.RemovedRepetitions)
	}
}

func TestCleanup_DefaultCollapsesRepetitions(t *testing.T) {
	got, stats := cleanOne(t, ProfileDefault, "Je je souffre de douleur douleur")

	// Leading stutter stays; the later content-word repeat collapses.
	want := "Je je souffre de douleur"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if stats.RemovedRepetitions != 1 {
		t.Errorf("expected 1 removed repetition, got %d", stats.RemovedRepetitions)
	}
}

func TestCleanup_ProtectedTokens(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"50mg", true},
		{"2,5mg", true},
		{"Dr.", true},
		{"Mme", true},
		{"ECG", true},
		{"douleur", false},
		{"euh", false},
	}
	for _, tc := range tests {
		if got := IsProtectedToken(tc.tok); got != tc.want {
			t.Errorf("IsProtectedToken(%q): expected %v, got %v", tc.tok, tc.want, got)
		}
	}
}

func TestCleanup_DropsEmptyTurns(t *testing.T) {
	turns := []Turn{
		turn("spk_0", "Euh, ben, euh", 0.0, 1.0),
		turn("spk_1", "Bonjour", 1.5, 2.0),
	}
	out, stats, err := CleanupTurns(turns, ProfileDefault)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.OriginalTurnCount != 2 {
		t.Errorf("expected originalTurnCount 2, got %d", stats.OriginalTurnCount)
	}
	if stats.CleanedTurnCount != 1 {
		t.Errorf("all-filler turn must disappear: expected cleanedTurnCount 1, got %d", stats.CleanedTurnCount)
	}
	if len(out) != 1 || out[0].Text != "Bonjour" {
		t.Errorf("expected surviving turn %q, got %+v", "Bonjour", out)
	}
}

func TestCleanup_InvalidProfile(t *testing.T) {
	out, _, err := CleanupTurns([]Turn{turn("spk_0", "Bonjour", 0, 1)}, "aggressive")

	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if kind := recognizer.KindOf(err); kind != recognizer.KindInvalidProfile {
		t.Errorf("expected invalid_profile kind, got %s", kind)
	}
	if out != nil {
		t.Errorf("failed stage must produce no output turns, got %+v", out)
	}
}

func TestCleanup_InputNotMutated(t *testing.T) {
	in := []Turn{turn("spk_0", "Euh, bonjour", 0, 1)}
	if _, _, err := CleanupTurns(in, ProfileDefault); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in[0].Text != "Euh, bonjour" {
		t.Errorf("input turn mutated: %q", in[0].Text)
	}
}

func TestNormalizeText_DecimalNumbersIntact(t *testing.T) {
	got := normalizeText("dose de 2,5 mg le matin")
	want := "dose de 2,5 mg le matin"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
