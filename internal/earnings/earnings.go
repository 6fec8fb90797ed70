// Package earnings estimates revenue potential for clips from virality,
// engagement, niche CPM rates, and brand safety flags.
package earnings

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// CPMRange holds advertiser CPM rates for a niche in USD per 1000 views.
type CPMRange struct {
	Min float64
	Max float64
	Avg float64
}

var nicheCPMRates = map[string]CPMRange{
	"fortnite":     {Min: 8.0, Max: 15.0, Avg: 11.5},
	"horror":       {Min: 4.0, Max: 8.0, Avg: 6.0},
	"roblox":       {Min: 2.0, Max: 4.0, Avg: 3.0},
	"minecraft":    {Min: 3.0, Max: 7.0, Avg: 5.0},
	"call_of_duty": {Min: 7.0, Max: 12.0, Avg: 9.5},
	"valorant":     {Min: 6.0, Max: 11.0, Avg: 8.5},
	"gaming":       {Min: 3.0, Max: 8.0, Avg: 5.5},
}

var nicheBaseViews = map[string]int{
	"fortnite":     150000,
	"horror":       100000,
	"roblox":       80000,
	"minecraft":    120000,
	"call_of_duty": 140000,
	"valorant":     110000,
	"gaming":       90000,
}

var nicheAliases = map[string]string{
	"fortnite":     "fortnite",
	"minecraft":    "minecraft",
	"roblox":       "roblox",
	"horror":       "horror",
	"call_of_duty": "call_of_duty",
	"cod":          "call_of_duty",
	"valorant":     "valorant",
	"apex":         "gaming",
	"pubg":         "gaming",
	"gta":          "gaming",
}

// safetyPenalties are multiplicative reductions applied per flagged issue.
var safetyPenalties = map[string]float64{
	"profanity":   -0.30,
	"violence":    -0.20,
	"controversy": -0.25,
	"copyright":   -0.35,
	"explicit":    -0.40,
}

// unknownFlagPenalty applies to safety issues the table does not know.
const unknownFlagPenalty = -0.10

const (
	minExpectedViews = 1000
	maxExpectedViews = 1000000
)

// ClipData is the input to an earning estimate.
type ClipData struct {
	ClipID        string
	VideoID       string
	Niche         string
	MomentType    string
	ViralityScore float64
	// Engagement holds excitement_level, emotional_arc, and hook_strength on
	// a 0-100 scale. Missing keys default to a neutral 50.
	Engagement map[string]float64
	// SafetyFlags maps issue names to whether the issue was flagged.
	SafetyFlags map[string]bool
	Published   bool
}

// Estimate is the earning analysis for a single clip.
type Estimate struct {
	ClipID            string
	Niche             string
	MomentType        string
	ViralityScore     float64
	ExpectedViews     int
	EngagementScore   float64
	SafetyScore       float64
	BaseCPM           float64
	CPMRange          string
	BaseEarningScore  float64
	FinalEarningScore float64
	EstimatedRevenue  float64
	RevenueRange      string
	SafetyFlags       []string
}

// Ranked pairs an estimate with the clip data it was computed from.
type Ranked struct {
	Estimate Estimate
	Clip     ClipData
}

// Calculator computes earning estimates. It is stateless and safe for
// concurrent use.
type Calculator struct{}

// NewCalculator constructs a Calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate computes the full earning analysis for a clip.
func (c *Calculator) Calculate(clip ClipData) Estimate {
	niche := NormalizeNiche(clip.Niche)
	cpm := cpmForNiche(niche)

	expectedViews := expectedViews(clip.ViralityScore, niche)
	engagementScore := engagementScore(clip.Engagement)
	safetyScore := safetyScore(clip.SafetyFlags)
	baseScore := baseEarningScore(clip.ViralityScore, engagementScore, cpm.Avg)
	finalScore := applySafetyPenalties(baseScore, clip.SafetyFlags)
	revenue := estimatedRevenue(expectedViews, cpm.Avg, safetyScore)

	return Estimate{
		ClipID:            clip.ClipID,
		Niche:             niche,
		MomentType:        clip.MomentType,
		ViralityScore:     clip.ViralityScore,
		ExpectedViews:     expectedViews,
		EngagementScore:   engagementScore,
		SafetyScore:       safetyScore,
		BaseCPM:           cpm.Avg,
		CPMRange:          fmt.Sprintf("$%.1f - $%.1f", cpm.Min, cpm.Max),
		BaseEarningScore:  baseScore,
		FinalEarningScore: finalScore,
		EstimatedRevenue:  revenue,
		RevenueRange:      revenueRange(expectedViews, cpm),
		SafetyFlags:       flaggedIssues(clip.SafetyFlags),
	}
}

// Rank computes estimates for every clip and returns them ordered by
// descending final earning score. The sort is stable so equal scores keep
// input order.
func (c *Calculator) Rank(clips []ClipData) []Ranked {
	ranked := make([]Ranked, 0, len(clips))
	for _, clip := range clips {
		ranked = append(ranked, Ranked{Estimate: c.Calculate(clip), Clip: clip})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Estimate.FinalEarningScore > ranked[j].Estimate.FinalEarningScore
	})
	return ranked
}

// Filter drops clips that miss the virality or safety thresholds and,
// optionally, clips that were already published.
func (c *Calculator) Filter(clips []ClipData, minVirality, minSafety float64, excludePublished bool) []ClipData {
	filtered := make([]ClipData, 0, len(clips))
	for _, clip := range clips {
		if clip.ViralityScore < minVirality {
			continue
		}
		if safetyScore(clip.SafetyFlags) < minSafety {
			continue
		}
		if excludePublished && clip.Published {
			continue
		}
		filtered = append(filtered, clip)
	}
	return filtered
}

// NormalizeNiche maps niche variants onto the canonical set, falling back to
// the generic gaming niche for anything unknown.
func NormalizeNiche(niche string) string {
	normalized := strings.ToLower(strings.TrimSpace(niche))
	if canonical, ok := nicheAliases[normalized]; ok {
		return canonical
	}
	return "gaming"
}

func cpmForNiche(niche string) CPMRange {
	if cpm, ok := nicheCPMRates[niche]; ok {
		return cpm
	}
	return nicheCPMRates["gaming"]
}

// expectedViews scales niche base views by virality: score 0 yields the
// floor, score 100 yields 3x base views.
func expectedViews(viralityScore float64, niche string) int {
	baseViews, ok := nicheBaseViews[niche]
	if !ok {
		baseViews = 90000
	}
	multiplier := math.Pow(viralityScore/100, 1.2) * 3
	views := int(float64(baseViews) * multiplier)
	if views < minExpectedViews {
		return minExpectedViews
	}
	if views > maxExpectedViews {
		return maxExpectedViews
	}
	return views
}

func engagementScore(metrics map[string]float64) float64 {
	if len(metrics) == 0 {
		return 50.0
	}
	excitement := metricOrDefault(metrics, "excitement_level")
	emotionalArc := metricOrDefault(metrics, "emotional_arc")
	hookStrength := metricOrDefault(metrics, "hook_strength")

	score := excitement*0.4 + emotionalArc*0.35 + hookStrength*0.25
	return clamp(score)
}

func metricOrDefault(metrics map[string]float64, key string) float64 {
	if value, ok := metrics[key]; ok {
		return value
	}
	return 50
}

func safetyScore(flags map[string]bool) float64 {
	if len(flags) == 0 {
		return 100.0
	}
	score := 100.0
	for issue, flagged := range flags {
		if !flagged {
			continue
		}
		score *= 1 + penaltyFor(issue)
	}
	return clamp(score)
}

func baseEarningScore(viralityScore, engagementScore, cpm float64) float64 {
	// CPM normalized against a $20 ceiling.
	cpmScore := math.Min(100, cpm/20.0*100)
	score := viralityScore*0.4 + engagementScore*0.3 + cpmScore*0.2 + 50*0.1
	return clamp(score)
}

func applySafetyPenalties(baseScore float64, flags map[string]bool) float64 {
	if len(flags) == 0 {
		return baseScore
	}
	score := baseScore
	for issue, flagged := range flags {
		if !flagged {
			continue
		}
		score *= 1 + penaltyFor(issue)
	}
	return clamp(score)
}

func penaltyFor(issue string) float64 {
	if penalty, ok := safetyPenalties[issue]; ok {
		return penalty
	}
	return unknownFlagPenalty
}

func estimatedRevenue(expectedViews int, cpm, safetyScore float64) float64 {
	revenue := float64(expectedViews) / 1000 * cpm * (safetyScore / 100)
	return math.Round(revenue*100) / 100
}

func revenueRange(expectedViews int, cpm CPMRange) string {
	low := estimatedRevenue(expectedViews, cpm.Min, 70)
	high := estimatedRevenue(expectedViews, cpm.Max, 100)
	return fmt.Sprintf("$%.2f - $%.2f", low, high)
}

func flaggedIssues(flags map[string]bool) []string {
	if len(flags) == 0 {
		return nil
	}
	issues := make([]string, 0, len(flags))
	for issue, flagged := range flags {
		if flagged {
			issues = append(issues, issue)
		}
	}
	sort.Strings(issues)
	return issues
}

func clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
