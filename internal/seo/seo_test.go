package seo

import (
	"math/rand"
	"strings"
	"testing"
)

func newTestGenerator() *Generator {
	return NewGenerator(rand.New(rand.NewSource(42)))
}

func TestTitleCarriesNichePrefix(t *testing.T) {
	gen := newTestGenerator()
	title := gen.Title(Input{Quote: "what a play", MomentType: "exciting"}, "fortnite", "youtube_shorts")
	if !strings.HasPrefix(title, "[Fortnite] ") {
		t.Fatalf("expected niche prefix, got %q", title)
	}

	title = gen.Title(Input{Quote: "what a play", MomentType: "exciting"}, "gaming", "youtube_shorts")
	if strings.HasPrefix(title, "[") {
		t.Fatalf("expected no prefix for generic gaming niche, got %q", title)
	}
}

func TestTitleRespectsPlatformLengthLimit(t *testing.T) {
	gen := newTestGenerator()
	quote := strings.Repeat("absolutely unbelievable moment ", 10)
	for _, tc := range []struct {
		platform string
		limit    int
	}{
		{"youtube_shorts", 100},
		{"tiktok", 150},
		{"instagram_reels", 125},
		{"unknown", 100},
	} {
		for i := 0; i < 20; i++ {
			title := gen.Title(Input{Quote: quote, MomentType: "shocking"}, "call_of_duty", tc.platform)
			if len(title) > tc.limit {
				t.Fatalf("%s: title length %d exceeds %d: %q", tc.platform, len(title), tc.limit, title)
			}
		}
	}
}

func TestTitleUnknownMomentTypeUsesExcitingTemplates(t *testing.T) {
	gen := newTestGenerator()
	seen := false
	for i := 0; i < 50; i++ {
		title := gen.Title(Input{Quote: "nice", MomentType: "mysterious"}, "gaming", "youtube_shorts")
		for _, marker := range []string{"OMG!", "YOU WON'T BELIEVE THIS!", "INSANE MOMENT!", "WTF?!"} {
			if strings.Contains(title, marker) {
				seen = true
			}
		}
		if !seen {
			t.Fatalf("title %q does not match any exciting template", title)
		}
	}
}

func TestTruncateQuote(t *testing.T) {
	if got := truncateQuote("short", 30); got != "short" {
		t.Fatalf("expected unchanged quote, got %q", got)
	}
	long := "this quote is definitely longer than the limit"
	got := truncateQuote(long, 25)
	if len(got) != 25 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected 25 chars ending in ellipsis, got %q (%d)", got, len(got))
	}
}

func TestDescriptionPerPlatform(t *testing.T) {
	gen := newTestGenerator()
	input := Input{Quote: "that was insane"}

	shorts := gen.Description(input, "fortnite", "youtube_shorts")
	if !strings.Contains(shorts, "SUBSCRIBE for more fortnite content") {
		t.Fatalf("unexpected shorts description: %q", shorts)
	}

	tiktok := gen.Description(input, "fortnite", "tiktok")
	if !strings.HasPrefix(tiktok, "that was insane #fortnite") || !strings.Contains(tiktok, "Follow for more") {
		t.Fatalf("unexpected tiktok description: %q", tiktok)
	}

	reels := gen.Description(input, "fortnite", "instagram_reels")
	if !strings.Contains(reels, "#fortnite #gaming #viral") {
		t.Fatalf("unexpected reels description: %q", reels)
	}
}

func TestHashtagsMixPoolsWithoutDuplicates(t *testing.T) {
	gen := newTestGenerator()
	tags := gen.Hashtags("fortnite", "funny", 15)
	if len(tags) == 0 || len(tags) > 15 {
		t.Fatalf("expected 1-15 hashtags, got %d", len(tags))
	}

	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "#") {
			t.Fatalf("hashtag %q missing # prefix", tag)
		}
		if _, dup := seen[tag]; dup {
			t.Fatalf("duplicate hashtag %q", tag)
		}
		seen[tag] = struct{}{}
	}
}

func TestHashtagsCountLimit(t *testing.T) {
	gen := newTestGenerator()
	tags := gen.Hashtags("roblox", "exciting", 5)
	if len(tags) != 5 {
		t.Fatalf("expected exactly 5 hashtags, got %d", len(tags))
	}
	// Zero count falls back to the default.
	tags = gen.Hashtags("roblox", "exciting", 0)
	if len(tags) > defaultHashtagCount {
		t.Fatalf("expected at most %d hashtags, got %d", defaultHashtagCount, len(tags))
	}
}

func TestHashtagsDeterministicWithSeededSource(t *testing.T) {
	a := NewGenerator(rand.New(rand.NewSource(7))).Hashtags("horror", "shocking", 10)
	b := NewGenerator(rand.New(rand.NewSource(7))).Hashtags("horror", "shocking", 10)
	if strings.Join(a, " ") != strings.Join(b, " ") {
		t.Fatalf("expected identical output for identical seeds:\n%v\n%v", a, b)
	}
}

func TestMetadataPackage(t *testing.T) {
	gen := newTestGenerator()
	meta := gen.Metadata(Input{Quote: "no way he hit that", MomentType: "shocking"}, "valorant", "tiktok")
	if meta.Platform != "tiktok" || meta.Niche != "valorant" {
		t.Fatalf("unexpected metadata identity: %+v", meta)
	}
	if meta.Title == "" || meta.Description == "" || len(meta.Hashtags) == 0 {
		t.Fatalf("incomplete metadata: %+v", meta)
	}
}
