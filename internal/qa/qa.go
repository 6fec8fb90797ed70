// Package qa validates clips for duration, content quality, profanity, and
// copyright concerns before they are published.
package qa

import (
	"fmt"
	"regexp"
	"strings"
)

// Severity classifies how serious a QA issue is.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Strictness controls the pass threshold.
type Strictness string

const (
	StrictnessStrict   Strictness = "strict"
	StrictnessModerate Strictness = "moderate"
	StrictnessLenient  Strictness = "lenient"
)

var strictnessThresholds = map[Strictness]float64{
	StrictnessStrict:   85,
	StrictnessModerate: 70,
	StrictnessLenient:  60,
}

// Issue is a single finding from a QA check.
type Issue struct {
	Type     string
	Severity Severity
	Message  string
}

// Report is the outcome of checking one clip.
type Report struct {
	Passed       bool
	OverallScore float64
	Scores       map[string]float64
	Issues       []Issue
	Warnings     []Issue
}

// HasCritical reports whether any issue is critical.
func (r Report) HasCritical() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// ClipInput carries the fields a QA check inspects.
type ClipInput struct {
	Quote    string
	Duration float64
	Platform string
}

type durationLimits struct {
	min float64
	max float64
}

var platformLimits = map[string]durationLimits{
	"youtube_shorts":  {min: 5, max: 60},
	"tiktok":          {min: 5, max: 180},
	"instagram_reels": {min: 5, max: 90},
}

var profanityWords = []string{
	"fuck", "shit", "bitch", "ass", "damn", "hell",
}

var copyrightIndicators = []string{
	"copyright", "licensed", "owned by", "property of",
	"all rights reserved", "official",
}

// Checker validates clips against quality and compliance rules.
type Checker struct {
	strictness       Strictness
	profanityPattern *regexp.Regexp
}

// NewChecker constructs a Checker. Unknown strictness values behave as
// moderate.
func NewChecker(strictness Strictness) *Checker {
	pattern := regexp.MustCompile(`(?i)\b(` + strings.Join(profanityWords, "|") + `)\b`)
	return &Checker{strictness: strictness, profanityPattern: pattern}
}

// Check runs every QA check against a clip and aggregates the result.
func (c *Checker) Check(clip ClipInput) Report {
	report := Report{Scores: make(map[string]float64, 4)}

	durationScore, durationIssues := c.checkDuration(clip)
	report.Scores["duration"] = durationScore
	report.Issues = append(report.Issues, durationIssues...)

	contentScore, contentIssues := c.checkContent(clip)
	report.Scores["content"] = contentScore
	report.Issues = append(report.Issues, contentIssues...)

	profanityScore, profanityWarnings := c.checkProfanity(clip)
	report.Scores["profanity"] = profanityScore
	report.Warnings = append(report.Warnings, profanityWarnings...)

	copyrightScore, copyrightIssues := c.checkCopyright(clip)
	report.Scores["copyright"] = copyrightScore
	report.Issues = append(report.Issues, copyrightIssues...)

	var total float64
	for _, score := range report.Scores {
		total += score
	}
	report.OverallScore = total / float64(len(report.Scores))

	threshold, ok := strictnessThresholds[c.strictness]
	if !ok {
		threshold = strictnessThresholds[StrictnessModerate]
	}
	report.Passed = report.OverallScore >= threshold && !report.HasCritical()
	return report
}

func (c *Checker) checkDuration(clip ClipInput) (float64, []Issue) {
	var issues []Issue
	score := 100.0

	limits, ok := platformLimits[clip.Platform]
	if !ok {
		limits = platformLimits["youtube_shorts"]
	}

	switch {
	case clip.Duration < limits.min:
		issues = append(issues, Issue{
			Type:     "duration",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Clip too short: %.1fs (min: %.0fs)", clip.Duration, limits.min),
		})
		score -= 20
	case clip.Duration > limits.max:
		issues = append(issues, Issue{
			Type:     "duration",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Clip too long: %.1fs (max: %.0fs)", clip.Duration, limits.max),
		})
		score -= 50
	case clip.Duration < 10:
		// Very short clips underperform in feeds.
		issues = append(issues, Issue{
			Type:     "duration",
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("Clip is short: %.1fs (optimal: 15-30s)", clip.Duration),
		})
		score -= 10
	}

	return clampScore(score), issues
}

func (c *Checker) checkContent(clip ClipInput) (float64, []Issue) {
	var issues []Issue
	score := 100.0

	if len(clip.Quote) < 5 {
		issues = append(issues, Issue{
			Type:     "content",
			Severity: SeverityWarning,
			Message:  "Quote is too short or empty",
		})
		score -= 30
	}

	meaningful := 0
	for _, word := range strings.Fields(clip.Quote) {
		if len(word) > 2 {
			meaningful++
		}
	}
	if meaningful < 3 {
		issues = append(issues, Issue{
			Type:     "content",
			Severity: SeverityWarning,
			Message:  "Quote lacks meaningful content",
		})
		score -= 20
	}

	return clampScore(score), issues
}

func (c *Checker) checkProfanity(clip ClipInput) (float64, []Issue) {
	if clip.Quote == "" {
		return 100, nil
	}

	matches := c.profanityPattern.FindAllString(clip.Quote, -1)
	if len(matches) == 0 {
		return 100, nil
	}

	message := "Profanity detected: " + strings.Join(matches, ", ")
	if c.strictness == StrictnessStrict {
		return 0, []Issue{{Type: "profanity", Severity: SeverityWarning, Message: message}}
	}
	return 80, []Issue{{Type: "profanity", Severity: SeverityInfo, Message: message}}
}

func (c *Checker) checkCopyright(clip ClipInput) (float64, []Issue) {
	quote := strings.ToLower(clip.Quote)
	for _, indicator := range copyrightIndicators {
		if strings.Contains(quote, indicator) {
			return 70, []Issue{{
				Type:     "copyright",
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Possible copyright mention: %q", indicator),
			}}
		}
	}
	return 100, nil
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}
