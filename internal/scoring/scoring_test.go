package scoring

import (
	"testing"
)

func TestScoreKnownTypes(t *testing.T) {
	scorer := NewDefaultScorer()

	// Long quote and long duration isolate the type contribution.
	longQuote := "one two three four five six seven eight nine ten eleven twelve thirteen"
	cases := []struct {
		momentType string
		expect     float64
	}{
		{"funny", 17.0},     // 85 * 0.20
		{"exciting", 16.0},  // 80 * 0.20
		{"shocking", 15.0},  // 75 * 0.20
		{"emotional", 14.0}, // 70 * 0.20
		{"rage", 14.0},      // unknown type falls back to 70
	}
	for _, tc := range cases {
		moment := Moment{Start: 0, End: 40, Type: tc.momentType, Quote: longQuote}
		scored := scorer.Score(moment)
		if scored.ViralityScore != tc.expect {
			t.Fatalf("%s: expected %v, got %v", tc.momentType, tc.expect, scored.ViralityScore)
		}
	}
}

func TestScoreMissingTypeDefaultsToExciting(t *testing.T) {
	scorer := NewDefaultScorer()
	longQuote := "one two three four five six seven eight nine ten eleven twelve thirteen"
	scored := scorer.Score(Moment{Start: 0, End: 40, Quote: longQuote})
	if scored.ViralityScore != 16.0 {
		t.Fatalf("expected missing type to score as exciting (16.0), got %v", scored.ViralityScore)
	}
}

func TestScoreQuoteAndDurationBonuses(t *testing.T) {
	scorer := NewDefaultScorer()

	// funny base 85*0.20 = 17, short quote 15*0.15 = 2.25, short duration 20*0.10 = 2.
	scored := scorer.Score(Moment{
		Start: 10,
		End:   22,
		Type:  "funny",
		Quote: "no way that just happened",
	})
	if scored.ViralityScore != 21.3 {
		t.Fatalf("expected 21.3 (17 + 2.25 + 2 rounded), got %v", scored.ViralityScore)
	}

	// Medium quote (10 words) and medium duration (20s): 17 + 1.5 + 1.
	scored = scorer.Score(Moment{
		Start: 0,
		End:   20,
		Type:  "funny",
		Quote: "one two three four five six seven eight nine ten",
	})
	if scored.ViralityScore != 19.5 {
		t.Fatalf("expected 19.5, got %v", scored.ViralityScore)
	}
}

func TestScoreIsClampedAndRounded(t *testing.T) {
	scorer := NewDefaultScorer()
	scored := scorer.Score(Moment{Start: 0, End: 10, Type: "funny", Quote: "short"})
	if scored.ViralityScore < 0 || scored.ViralityScore > 100 {
		t.Fatalf("score out of range: %v", scored.ViralityScore)
	}
	if scored.ViralityScore != 21.3 {
		t.Fatalf("expected 21.3, got %v", scored.ViralityScore)
	}
}

func TestScoreAllSortsDescendingStable(t *testing.T) {
	scorer := NewDefaultScorer()
	longQuote := "one two three four five six seven eight nine ten eleven twelve thirteen"
	moments := []Moment{
		{Start: 0, End: 40, Type: "emotional", Quote: longQuote, Description: "first emotional"},
		{Start: 50, End: 90, Type: "funny", Quote: longQuote},
		{Start: 100, End: 140, Type: "emotional", Quote: longQuote, Description: "second emotional"},
	}
	scored := scorer.ScoreAll(moments)
	if scored[0].Type != "funny" {
		t.Fatalf("expected funny first, got %s", scored[0].Type)
	}
	if scored[1].Description != "first emotional" || scored[2].Description != "second emotional" {
		t.Fatalf("expected stable ordering for equal scores, got %q then %q", scored[1].Description, scored[2].Description)
	}
}

func TestSelectBestFiltersThenTruncates(t *testing.T) {
	moments := []Moment{
		{Description: "a", ViralityScore: 90},
		{Description: "b", ViralityScore: 75},
		{Description: "c", ViralityScore: 60},
		{Description: "d", ViralityScore: 72},
		{Description: "e", ViralityScore: 71},
	}

	selected := SelectBest(moments, 3, 70)
	if len(selected) != 3 {
		t.Fatalf("expected 3 selected, got %d", len(selected))
	}
	for i, want := range []string{"a", "b", "d"} {
		if selected[i].Description != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, selected[i].Description)
		}
	}
}

func TestSelectBestEmptyWhenNothingClearsThreshold(t *testing.T) {
	moments := []Moment{
		{ViralityScore: 50},
		{ViralityScore: 69.9},
	}
	if got := SelectBest(moments, 3, 70); len(got) != 0 {
		t.Fatalf("expected no moments selected, got %d", len(got))
	}
}

func TestSelectBestIsIdempotent(t *testing.T) {
	moments := []Moment{
		{Description: "a", ViralityScore: 90},
		{Description: "b", ViralityScore: 80},
		{Description: "c", ViralityScore: 65},
	}
	once := SelectBest(moments, 3, 70)
	twice := SelectBest(once, 3, 70)
	if len(once) != len(twice) {
		t.Fatalf("expected idempotent selection, got %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Description != twice[i].Description {
			t.Fatalf("selection changed on reapplication at %d", i)
		}
	}
}
