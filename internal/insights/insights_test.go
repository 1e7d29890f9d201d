package insights

import (
	"strings"
	"testing"

	"github.com/AstikVerma/doclens/internal/search"
)

func TestParseInsights(t *testing.T) {
	raw := `Here is your analysis:
{"key_insights":["one","two"],"did_you_know":["fact"],"counterpoints":["but"],"podcast_script":"A: hi. B: hello."}
Hope that helps!`

	out, err := ParseInsights(raw)
	if err != nil {
		t.Fatalf("ParseInsights: %v", err)
	}
	if len(out.KeyInsights) != 2 || out.KeyInsights[0] != "one" {
		t.Errorf("key_insights = %v", out.KeyInsights)
	}
	if out.PodcastScript != "A: hi. B: hello." {
		t.Errorf("podcast_script = %q", out.PodcastScript)
	}
}

func TestParseInsights_CodeFence(t *testing.T) {
	raw := "```json\n{\"key_insights\":[\"a\"],\"did_you_know\":[],\"counterpoints\":[],\"podcast_script\":\"s\"}\n```"
	out, err := ParseInsights(raw)
	if err != nil {
		t.Fatalf("ParseInsights: %v", err)
	}
	if len(out.KeyInsights) != 1 {
		t.Errorf("key_insights = %v", out.KeyInsights)
	}
}

func TestParseInsights_NoJSON(t *testing.T) {
	if _, err := ParseInsights("sorry, I cannot help with that"); err == nil {
		t.Fatal("expected error for reply without JSON")
	}
}

func TestParseInsights_MalformedJSON(t *testing.T) {
	if _, err := ParseInsights(`{"key_insights": [unquoted]}`); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestBuildPrompt(t *testing.T) {
	sections := []search.Result{
		{SectionTitle: "Wetlands", Document: "guide.pdf", PageNumber: 4, Content: "Wading birds live here."},
	}
	prompt := BuildPrompt("selected passage", sections)

	for _, want := range []string{
		"selected passage",
		"Wetlands",
		"guide.pdf",
		"page 4",
		"Wading birds live here.",
		"key_insights",
		"did_you_know",
		"counterpoints",
		"podcast_script",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
