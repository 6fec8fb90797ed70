// Package scoring assigns deterministic virality scores to candidate
// moments and selects the best ones for clip creation.
package scoring

import (
	"math"
	"sort"
	"strings"
)

// Moment is a candidate viral moment detected in a video transcript.
type Moment struct {
	Start         float64            `json:"start"`
	End           float64            `json:"end"`
	Type          string             `json:"type"`
	Description   string             `json:"description"`
	Quote         string             `json:"quote"`
	Features      map[string]float64 `json:"features,omitempty"`
	ViralityScore float64            `json:"virality_score"`
	ScoreReasons  []string           `json:"score_reasons,omitempty"`
}

// Duration returns the moment length in seconds.
func (m Moment) Duration() float64 {
	return m.End - m.Start
}

// Weights holds the virality scoring weights. AudioExcitement and
// VisualIntensity are reserved for signals the detector does not yet
// produce; only the last three participate in scoring today.
type Weights struct {
	AudioExcitement float64
	VisualIntensity float64
	EmotionalArc    float64
	HookPotential   float64
	TrendAlignment  float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		AudioExcitement: 0.25,
		VisualIntensity: 0.20,
		EmotionalArc:    0.20,
		HookPotential:   0.15,
		TrendAlignment:  0.10,
	}
}

var typeBaseScores = map[string]float64{
	"funny":     85,
	"exciting":  80,
	"shocking":  75,
	"emotional": 70,
}

// unknownTypeBase is the base applied to moment types the table does not know.
const unknownTypeBase = 70

// Scorer computes virality scores from weighted heuristics.
type Scorer struct {
	weights Weights
}

// NewScorer constructs a Scorer with the given weights.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// NewDefaultScorer constructs a Scorer with the standard weights.
func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultWeights())
}

// Score computes the virality score and reasons for a single moment.
func (s *Scorer) Score(moment Moment) Moment {
	var score float64
	reasons := make([]string, 0, 3)

	momentType := strings.ToLower(strings.TrimSpace(moment.Type))
	if momentType == "" {
		momentType = "exciting"
	}
	base, ok := typeBaseScores[momentType]
	if !ok {
		base = unknownTypeBase
	}
	score += base * s.weights.EmotionalArc
	reasons = append(reasons, "Type: "+momentType)

	// Shorter quotes hook better in short-form feeds.
	quoteWords := len(strings.Fields(moment.Quote))
	switch {
	case quoteWords <= 8:
		score += 15 * s.weights.HookPotential
		reasons = append(reasons, "Short quote (good hook)")
	case quoteWords <= 12:
		score += 10 * s.weights.HookPotential
		reasons = append(reasons, "Medium quote")
	}

	switch duration := moment.Duration(); {
	case duration <= 15:
		score += 20 * s.weights.TrendAlignment
		reasons = append(reasons, "Short duration (trending)")
	case duration <= 25:
		score += 10 * s.weights.TrendAlignment
		reasons = append(reasons, "Medium duration")
	}

	moment.ViralityScore = clampScore(math.Round(score*10) / 10)
	moment.ScoreReasons = reasons
	return moment
}

// ScoreAll scores every moment and returns them ordered by descending
// virality score. The sort is stable so equal scores keep detection order.
func (s *Scorer) ScoreAll(moments []Moment) []Moment {
	scored := make([]Moment, 0, len(moments))
	for _, moment := range moments {
		scored = append(scored, s.Score(moment))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].ViralityScore > scored[j].ViralityScore
	})
	return scored
}

// SelectBest filters moments below minScore and truncates to count,
// preserving the order of the input.
func SelectBest(moments []Moment, count int, minScore float64) []Moment {
	if count <= 0 {
		return nil
	}
	selected := make([]Moment, 0, count)
	for _, moment := range moments {
		if moment.ViralityScore < minScore {
			continue
		}
		selected = append(selected, moment)
		if len(selected) == count {
			break
		}
	}
	return selected
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
