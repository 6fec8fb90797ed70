package earnings

import (
	"math"
	"testing"
)

func TestNormalizeNiche(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"fortnite", "fortnite"},
		{"Fortnite", "fortnite"},
		{"cod", "call_of_duty"},
		{"apex", "gaming"},
		{"pubg", "gaming"},
		{"gta", "gaming"},
		{"chess", "gaming"},
		{"", "gaming"},
	}
	for _, tc := range cases {
		if got := NormalizeNiche(tc.in); got != tc.want {
			t.Fatalf("NormalizeNiche(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExpectedViewsBounds(t *testing.T) {
	// Virality 0 collapses to the floor.
	if got := expectedViews(0, "fortnite"); got != 1000 {
		t.Fatalf("expected floor of 1000 views, got %d", got)
	}
	// Virality 100 is 3x base views, capped at the ceiling.
	if got := expectedViews(100, "roblox"); got != 240000 {
		t.Fatalf("expected 240000 views for roblox at 100, got %d", got)
	}
	if got := expectedViews(100, "fortnite"); got != 450000 {
		t.Fatalf("expected 450000 views for fortnite at 100, got %d", got)
	}
	for _, virality := range []float64{0, 25, 50, 75, 85, 100} {
		views := expectedViews(virality, "fortnite")
		if views < 1000 || views > 1000000 {
			t.Fatalf("virality %v: views %d out of bounds", virality, views)
		}
	}
}

func TestExpectedViewsMonotonic(t *testing.T) {
	prev := 0
	for virality := 10.0; virality <= 100; virality += 10 {
		views := expectedViews(virality, "minecraft")
		if views < prev {
			t.Fatalf("views decreased at virality %v: %d < %d", virality, views, prev)
		}
		prev = views
	}
}

func TestEngagementScoreDefaults(t *testing.T) {
	if got := engagementScore(nil); got != 50.0 {
		t.Fatalf("expected neutral 50 for missing metrics, got %v", got)
	}
	// Missing keys default to 50 individually.
	got := engagementScore(map[string]float64{"excitement_level": 80})
	want := 80*0.4 + 50*0.35 + 50*0.25
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSafetyScorePenaltiesCompound(t *testing.T) {
	if got := safetyScore(nil); got != 100.0 {
		t.Fatalf("expected perfect safety with no flags, got %v", got)
	}
	// Unflagged issues cost nothing.
	if got := safetyScore(map[string]bool{"profanity": false}); got != 100.0 {
		t.Fatalf("expected 100 for unflagged issue, got %v", got)
	}
	if got := safetyScore(map[string]bool{"profanity": true}); math.Abs(got-70.0) > 1e-9 {
		t.Fatalf("expected 70 for profanity, got %v", got)
	}
	got := safetyScore(map[string]bool{"profanity": true, "copyright": true})
	want := 100.0 * 0.70 * 0.65
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected compounded %v, got %v", want, got)
	}
	// Unknown flags cost 10%.
	if got := safetyScore(map[string]bool{"gambling": true}); math.Abs(got-90.0) > 1e-9 {
		t.Fatalf("expected 90 for unknown flag, got %v", got)
	}
}

func TestSafetyPenaltyMonotonicity(t *testing.T) {
	calc := NewCalculator()
	clean := calc.Calculate(ClipData{Niche: "fortnite", ViralityScore: 85})
	flagged := calc.Calculate(ClipData{
		Niche:         "fortnite",
		ViralityScore: 85,
		SafetyFlags:   map[string]bool{"violence": true},
	})
	if flagged.FinalEarningScore >= clean.FinalEarningScore {
		t.Fatalf("expected flagged clip to score below clean clip: %v >= %v",
			flagged.FinalEarningScore, clean.FinalEarningScore)
	}
	if flagged.EstimatedRevenue >= clean.EstimatedRevenue {
		t.Fatalf("expected flagged clip revenue below clean clip: %v >= %v",
			flagged.EstimatedRevenue, clean.EstimatedRevenue)
	}
}

func TestCalculateFortniteWorkedExample(t *testing.T) {
	calc := NewCalculator()
	estimate := calc.Calculate(ClipData{
		ClipID:        "clip-1",
		Niche:         "fortnite",
		ViralityScore: 85,
	})

	if estimate.Niche != "fortnite" {
		t.Fatalf("unexpected niche %q", estimate.Niche)
	}
	if estimate.BaseCPM != 11.5 {
		t.Fatalf("expected avg CPM 11.5, got %v", estimate.BaseCPM)
	}
	wantViews := int(150000 * math.Pow(0.85, 1.2) * 3)
	if estimate.ExpectedViews != wantViews {
		t.Fatalf("expected %d views, got %d", wantViews, estimate.ExpectedViews)
	}
	if estimate.EngagementScore != 50.0 {
		t.Fatalf("expected neutral engagement, got %v", estimate.EngagementScore)
	}
	if estimate.SafetyScore != 100.0 {
		t.Fatalf("expected perfect safety, got %v", estimate.SafetyScore)
	}

	// virality*0.4 + engagement*0.3 + cpmScore*0.2 + 50*0.1
	wantBase := 85*0.4 + 50*0.3 + (11.5/20.0*100)*0.2 + 5
	if math.Abs(estimate.BaseEarningScore-wantBase) > 1e-9 {
		t.Fatalf("expected base score %v, got %v", wantBase, estimate.BaseEarningScore)
	}
	if estimate.FinalEarningScore != estimate.BaseEarningScore {
		t.Fatalf("expected no penalties, final %v != base %v", estimate.FinalEarningScore, estimate.BaseEarningScore)
	}

	wantRevenue := math.Round(float64(wantViews)/1000*11.5*100) / 100
	if estimate.EstimatedRevenue != wantRevenue {
		t.Fatalf("expected revenue %v, got %v", wantRevenue, estimate.EstimatedRevenue)
	}
}

func TestCalculateScoresStayInRange(t *testing.T) {
	calc := NewCalculator()
	clips := []ClipData{
		{Niche: "fortnite", ViralityScore: 100, Engagement: map[string]float64{"excitement_level": 100, "emotional_arc": 100, "hook_strength": 100}},
		{Niche: "roblox", ViralityScore: 0},
		{Niche: "horror", ViralityScore: 55, SafetyFlags: map[string]bool{"explicit": true, "copyright": true, "profanity": true}},
	}
	for i, clip := range clips {
		estimate := calc.Calculate(clip)
		for name, value := range map[string]float64{
			"engagement": estimate.EngagementScore,
			"safety":     estimate.SafetyScore,
			"base":       estimate.BaseEarningScore,
			"final":      estimate.FinalEarningScore,
		} {
			if value < 0 || value > 100 {
				t.Fatalf("clip %d: %s score %v out of [0,100]", i, name, value)
			}
		}
	}
}

func TestRankOrdersByFinalScoreStable(t *testing.T) {
	calc := NewCalculator()
	clips := []ClipData{
		{ClipID: "low", Niche: "roblox", ViralityScore: 40},
		{ClipID: "high", Niche: "fortnite", ViralityScore: 95},
		{ClipID: "mid-a", Niche: "minecraft", ViralityScore: 70},
		{ClipID: "mid-b", Niche: "minecraft", ViralityScore: 70},
	}
	ranked := calc.Rank(clips)
	if ranked[0].Estimate.ClipID != "high" {
		t.Fatalf("expected high first, got %s", ranked[0].Estimate.ClipID)
	}
	if ranked[len(ranked)-1].Estimate.ClipID != "low" {
		t.Fatalf("expected low last, got %s", ranked[len(ranked)-1].Estimate.ClipID)
	}
	// Equal scores keep input order.
	var midIdx []string
	for _, r := range ranked {
		if r.Estimate.ClipID == "mid-a" || r.Estimate.ClipID == "mid-b" {
			midIdx = append(midIdx, r.Estimate.ClipID)
		}
	}
	if midIdx[0] != "mid-a" || midIdx[1] != "mid-b" {
		t.Fatalf("expected stable order for ties, got %v", midIdx)
	}
}

func TestFilterAppliesAllCriteria(t *testing.T) {
	calc := NewCalculator()
	clips := []ClipData{
		{ClipID: "keep", Niche: "fortnite", ViralityScore: 85},
		{ClipID: "low-virality", Niche: "fortnite", ViralityScore: 60},
		{ClipID: "unsafe", Niche: "fortnite", ViralityScore: 85, SafetyFlags: map[string]bool{"explicit": true}},
		{ClipID: "published", Niche: "fortnite", ViralityScore: 85, Published: true},
	}

	filtered := calc.Filter(clips, 70, 70, true)
	if len(filtered) != 1 || filtered[0].ClipID != "keep" {
		t.Fatalf("expected only keep to survive, got %v", filtered)
	}

	// Filtering is idempotent.
	again := calc.Filter(filtered, 70, 70, true)
	if len(again) != 1 || again[0].ClipID != "keep" {
		t.Fatalf("expected filter idempotence, got %v", again)
	}

	// Published clips survive when not excluded.
	withPublished := calc.Filter(clips, 70, 70, false)
	if len(withPublished) != 2 {
		t.Fatalf("expected 2 clips when published allowed, got %d", len(withPublished))
	}
}
