package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clipforge/internal/scoring"
	"clipforge/internal/services"
	"clipforge/internal/services/youtube"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"moments":[]}`, `{"moments":[]}`},
		{"```json\n{\"moments\":[]}\n```", `{"moments":[]}`},
		{"```\n{\"moments\":[]}\n```", `{"moments":[]}`},
		{"```python\n{\"moments\":[]}\n```", `{"moments":[]}`},
		{"  {\"moments\":[]}  ", `{"moments":[]}`},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Fatalf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidateMomentsDropsInvalid(t *testing.T) {
	moments := []scoring.Moment{
		{Start: 10, End: 30, Type: "exciting", Quote: "valid moment"},
		{Start: 10, End: 20, Type: "funny"},              // 10s, too short
		{Start: 10, End: 80, Type: "funny"},              // 70s, too long
		{Start: 100, End: 120, Type: "shocking"},         // past transcript end
		{Start: -5, End: 15, Type: "shocking"},           // negative start
		{Start: 20, End: 50, Type: "", Quote: "no type"}, // missing type
	}
	valid := validateMoments(moments, 90)
	if len(valid) != 1 {
		t.Fatalf("expected 1 valid moment, got %d: %+v", len(valid), valid)
	}
	if valid[0].Quote != "valid moment" {
		t.Fatalf("unexpected surviving moment: %+v", valid[0])
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client, err := NewClient("test-gemini-key", WithBaseURL(server.URL), WithModel("gemini-2.0-flash"))
	if err != nil {
		server.Close()
		t.Fatal(err)
	}
	return client, server.Close
}

func geminiTextResponse(text string) string {
	payload := `{"candidates":[{"content":{"parts":[{"text":` + jsonString(text) + `}]}}]}`
	return payload
}

func jsonString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + replacer.Replace(s) + `"`
}

func TestAnalyzeTranscriptEndToEnd(t *testing.T) {
	var gotPrompt string
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.0-flash") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		gotPrompt = string(body)
		w.Write([]byte(geminiTextResponse("```json\n{\"moments\":[{\"start\":5,\"end\":25,\"type\":\"exciting\",\"description\":\"big play\",\"quote\":\"no way he hit that\"}]}\n```")))
	})
	defer cleanup()

	transcript := youtube.Transcript{Segments: []youtube.Segment{
		{Start: 0, End: 10, Text: "warming up"},
		{Start: 10, End: 30, Text: "no way he hit that"},
	}}
	moments, err := client.AnalyzeTranscript(context.Background(), "fortnite", transcript)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if len(moments) != 1 {
		t.Fatalf("expected 1 moment, got %d", len(moments))
	}
	if moments[0].Type != "exciting" || moments[0].Quote != "no way he hit that" {
		t.Fatalf("unexpected moment: %+v", moments[0])
	}
	if !strings.Contains(gotPrompt, "[10.0s - 30.0s] no way he hit that") {
		t.Fatalf("prompt missing timestamped segment: %s", gotPrompt)
	}
	if !strings.Contains(gotPrompt, "fortnite gaming video transcript") {
		t.Fatal("prompt missing niche")
	}
}

func TestAnalyzeTranscriptRejectsMalformedJSON(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiTextResponse("sorry, I cannot help with that")))
	})
	defer cleanup()

	transcript := youtube.Transcript{Segments: []youtube.Segment{{Start: 0, End: 10, Text: "hello"}}}
	if _, err := client.AnalyzeTranscript(context.Background(), "fortnite", transcript); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestAnalyzeTranscriptEmptySegments(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	defer cleanup()

	if _, err := client.AnalyzeTranscript(context.Background(), "fortnite", youtube.Transcript{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateContentAPIError(t *testing.T) {
	client, cleanup := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})
	defer cleanup()

	_, err := client.GenerateContent(context.Background(), "hello")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status code in error, got %v", err)
	}
}
