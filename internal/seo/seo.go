// Package seo generates platform-optimized titles, descriptions, and
// hashtags for clips.
package seo

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var gamingHashtags = []string{
	"#gaming", "#gamer", "#gamingclips", "#viral", "#trending",
	"#shorts", "#fyp", "#foryou", "#foryoupage", "#gamingcommunity",
	"#gamingtiktok", "#gamermoments", "#clips", "#gameclips", "#epic",
	"#insane", "#funny", "#wtf", "#omg", "#letsplay", "#gameplay",
}

var nicheHashtags = map[string][]string{
	"roblox":   {"#roblox", "#robloxfyp", "#bloxfruits", "#robloxedit", "#adoptme"},
	"horror":   {"#horror", "#horrorgame", "#scary", "#jumpscare", "#horrorclips"},
	"fortnite": {"#fortnite", "#fortniteclips", "#epicgames", "#battleroyale", "#fortnitetiktok"},
}

var momentHashtags = map[string][]string{
	"exciting":  {"#epic", "#insane", "#crazy", "#unreal", "#skill"},
	"funny":     {"#funny", "#hilarious", "#lol", "#comedy", "#lmao"},
	"shocking":  {"#wtf", "#shocking", "#unbelievable", "#insane", "#viral"},
	"emotional": {"#emotional", "#sad", "#wholesome", "#feels", "#wholesomegaming"},
}

var titleLengthLimits = map[string]int{
	"youtube_shorts":  100,
	"tiktok":          150,
	"instagram_reels": 125,
}

// defaultHashtagCount is how many hashtags a metadata package carries.
const defaultHashtagCount = 15

// Input carries the moment fields metadata generation needs.
type Input struct {
	Quote      string
	MomentType string
}

// Metadata is a complete metadata package for one clip on one platform.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
	Platform    string   `json:"platform"`
	Niche       string   `json:"niche"`
}

// Generator produces metadata from templates. The random source is
// injectable so tests can be deterministic.
type Generator struct {
	rng   *rand.Rand
	title cases.Caser
}

// NewGenerator constructs a Generator. A nil source seeds from the clock.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, title: cases.Title(language.English)}
}

// Title generates a clickbait-style title within the platform length limit.
func (g *Generator) Title(input Input, niche, platform string) string {
	quote := strings.TrimSpace(input.Quote)
	momentType := normalizeMomentType(input.MomentType)

	maxLength, ok := titleLengthLimits[platform]
	if !ok {
		maxLength = 100
	}

	templates := titleTemplates(quote, momentType)
	title := templates[g.rng.Intn(len(templates))]

	if niche != "" && niche != "gaming" {
		title = "[" + g.DisplayNiche(niche) + "] " + title
	}

	if len(title) > maxLength {
		title = title[:maxLength-3] + "..."
	}
	return title
}

// Description generates a platform-specific description.
func (g *Generator) Description(input Input, niche, platform string) string {
	quote := strings.TrimSpace(input.Quote)
	tag := strings.ReplaceAll(niche, " ", "")

	switch platform {
	case "tiktok":
		return fmt.Sprintf("%s #%s\n\nFollow for more 🔥", quote, tag)
	case "instagram_reels":
		return fmt.Sprintf("%s\n.\n.\n.\n#%s #gaming #viral", quote, tag)
	default:
		return fmt.Sprintf("%s\n\n⬇️ SUBSCRIBE for more %s content!\n\n🔥 Turn on notifications 🔥\n\n🎮 Like, Comment & Share!\n\n", quote, niche)
	}
}

// Hashtags generates up to count relevant hashtags mixing general gaming
// tags, niche tags, and moment-type tags.
func (g *Generator) Hashtags(niche, momentType string, count int) []string {
	if count <= 0 {
		count = defaultHashtagCount
	}

	set := make(map[string]struct{})
	for _, tag := range gamingHashtags[:8] {
		set[tag] = struct{}{}
	}
	for _, tag := range nicheHashtags[strings.ToLower(strings.TrimSpace(niche))] {
		set[tag] = struct{}{}
	}
	for _, tag := range momentHashtags[normalizeMomentType(momentType)] {
		set[tag] = struct{}{}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	g.rng.Shuffle(len(tags), func(i, j int) {
		tags[i], tags[j] = tags[j], tags[i]
	})

	if len(tags) > count {
		tags = tags[:count]
	}
	return tags
}

// Metadata generates the complete metadata package for a clip.
func (g *Generator) Metadata(input Input, niche, platform string) Metadata {
	return Metadata{
		Title:       g.Title(input, niche, platform),
		Description: g.Description(input, niche, platform),
		Hashtags:    g.Hashtags(niche, input.MomentType, defaultHashtagCount),
		Platform:    platform,
		Niche:       niche,
	}
}

// DisplayNiche renders a canonical niche name for human-facing text.
func (g *Generator) DisplayNiche(niche string) string {
	return g.title.String(strings.ReplaceAll(niche, "_", " "))
}

func normalizeMomentType(momentType string) string {
	normalized := strings.ToLower(strings.TrimSpace(momentType))
	if _, ok := momentHashtags[normalized]; !ok {
		return "exciting"
	}
	return normalized
}

func titleTemplates(quote, momentType string) []string {
	switch momentType {
	case "funny":
		return []string{
			"LMFAO! " + truncateQuote(quote, 30) + " 😂",
			"THIS IS HILARIOUS! " + truncateQuote(quote, 25),
			"CAN'T STOP LAUGHING! " + truncateQuote(quote, 30) + " 🤣",
			"BRUH! " + truncateQuote(quote, 30) + " 😭",
		}
	case "shocking":
		return []string{
			"NO WAY! " + truncateQuote(quote, 30) + " 😱",
			"ARE YOU SERIOUS?! " + truncateQuote(quote, 25),
			"I'M SHOOK! " + truncateQuote(quote, 30) + " 💀",
			"THIS CHANGED EVERYTHING! " + truncateQuote(quote, 25),
		}
	case "emotional":
		return []string{
			"This hit different... " + truncateQuote(quote, 30) + " 😢",
			"WHY DID I WATCH THIS 😭",
			"My heart... " + truncateQuote(quote, 25) + " 💔",
			"NOT ME CRYING 😭🤧",
		}
	default:
		return []string{
			"OMG! " + truncateQuote(quote, 30) + " 😱🔥",
			"YOU WON'T BELIEVE THIS! " + truncateQuote(quote, 25),
			"INSANE MOMENT! " + truncateQuote(quote, 30) + " 🔥",
			"WTF?! " + truncateQuote(quote, 30) + " 💀",
		}
	}
}

func truncateQuote(quote string, maxChars int) string {
	if len(quote) <= maxChars {
		return quote
	}
	return quote[:maxChars-3] + "..."
}
