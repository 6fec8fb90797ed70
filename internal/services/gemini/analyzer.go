package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clipforge/internal/scoring"
	"clipforge/internal/services"
	"clipforge/internal/services/youtube"
)

const (
	// Clip duration bounds for short-form platforms, in seconds.
	minMomentDuration = 15
	maxMomentDuration = 60
)

// AnalyzeTranscript asks Gemini to find viral moments in a transcript.
// Moments with missing fields, out-of-bounds durations, or timestamps
// outside the transcript range are dropped.
func (c *Client) AnalyzeTranscript(ctx context.Context, niche string, transcript youtube.Transcript) ([]scoring.Moment, error) {
	if len(transcript.Segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "gemini", "analyze transcript", "transcript has no segments", nil)
	}

	response, err := c.GenerateContent(ctx, buildAnalysisPrompt(niche, transcript.Segments))
	if err != nil {
		return nil, err
	}

	moments, err := parseMoments(response)
	if err != nil {
		return nil, err
	}
	return validateMoments(moments, transcript.MaxTime()), nil
}

func buildAnalysisPrompt(niche string, segments []youtube.Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s gaming video transcript and identify viral moments suitable for short-form content (YouTube Shorts, TikTok, Instagram Reels).\n\n", niche)
	b.WriteString("Transcript with timestamps:\n")
	for _, seg := range segments {
		fmt.Fprintf(&b, "[%.1fs - %.1fs] %s\n", seg.Start, seg.End, seg.Text)
	}
	b.WriteString(`
For each viral moment, provide:
1. start: Start timestamp in seconds (must match a timestamp from the transcript)
2. end: End timestamp in seconds (must be within 15-60 seconds from start)
3. type: One of: exciting, funny, shocking, emotional
4. description: Why this moment is viral (be specific about what makes it engaging)
5. quote: Exact quote from the transcript (10-15 words max for hook potential)

Requirements:
- Identify 3-6 best moments maximum
- Each clip must be 15-60 seconds (optimal for short-form)
- Prioritize moments with high energy, surprises, or emotional peaks
- Quote must be verbatim from transcript
- Consider what would make someone stop scrolling

Return ONLY valid JSON (no markdown, no code blocks):
{
  "moments": [
    {
      "start": <seconds>,
      "end": <seconds>,
      "type": "<type>",
      "description": "<explanation>",
      "quote": "<exact_quote>"
    }
  ]
}`)
	return b.String()
}

type analysisResponse struct {
	Moments []scoring.Moment `json:"moments"`
}

func parseMoments(response string) ([]scoring.Moment, error) {
	cleaned := stripCodeFences(response)

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "gemini", "analyze transcript", "parse response json", err)
	}
	if parsed.Moments == nil {
		return nil, services.Wrap(services.ErrExternalTool, "gemini", "analyze transcript", "response missing moments field", nil)
	}
	return parsed.Moments, nil
}

// stripCodeFences removes markdown code fences the model sometimes wraps
// around JSON despite instructions.
func stripCodeFences(response string) string {
	cleaned := strings.TrimSpace(response)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.Trim(cleaned, "`")
	for _, label := range []string{"json", "python"} {
		if strings.HasPrefix(cleaned, label) {
			cleaned = cleaned[len(label):]
			break
		}
	}
	return strings.TrimSpace(cleaned)
}

func validateMoments(moments []scoring.Moment, maxTime float64) []scoring.Moment {
	valid := make([]scoring.Moment, 0, len(moments))
	for _, moment := range moments {
		if moment.Type == "" {
			continue
		}
		duration := moment.End - moment.Start
		if duration < minMomentDuration || duration > maxMomentDuration {
			continue
		}
		if moment.Start < 0 || moment.End > maxTime {
			continue
		}
		valid = append(valid, moment)
	}
	return valid
}
