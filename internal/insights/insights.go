// Package insights generates LLM-backed commentary for a selected
// passage, grounded in the most similar indexed sections.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"

	"github.com/AstikVerma/doclens/internal/search"
)

// Insights is the structured payload returned by Generate.
type Insights struct {
	KeyInsights   []string `json:"key_insights"`
	DidYouKnow    []string `json:"did_you_know"`
	Counterpoints []string `json:"counterpoints"`
	PodcastScript string   `json:"podcast_script"`
}

// Generator calls an Ollama chat model to produce insights.
type Generator struct {
	client *api.Client
	model  string
	log    *slog.Logger
}

// NewGenerator builds a Generator against the given Ollama host. An
// empty host falls back to the OLLAMA_HOST environment default.
func NewGenerator(host, model string, log *slog.Logger) (*Generator, error) {
	base := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host: %w", err)
		}
		base = u
	}
	return &Generator{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
		log:    log,
	}, nil
}

// Generate prompts the model with the selected text and its similar
// sections and parses the reply. A malformed reply degrades to a fixed
// fallback payload rather than an error.
func (g *Generator) Generate(ctx context.Context, selected string, sections []search.Result) (*Insights, error) {
	prompt := BuildPrompt(selected, sections)

	req := &api.GenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Options: map[string]any{
			"temperature": 0.4,
		},
	}

	var reply strings.Builder
	err := g.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		reply.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("generate insights: %w", err)
	}

	out, err := ParseInsights(reply.String())
	if err != nil {
		g.log.Warn("insights reply not parseable, using fallback", "error", err)
		return fallbackInsights(), nil
	}
	return out, nil
}

// BuildPrompt renders the instruction prompt for the model. Sections
// are included as numbered context snippets.
func BuildPrompt(selected string, sections []search.Result) string {
	var b strings.Builder
	b.WriteString("You are an analyst. A reader selected this passage:\n\n")
	b.WriteString(selected)
	b.WriteString("\n\nRelated sections from the reader's document library:\n\n")
	for i, s := range sections {
		fmt.Fprintf(&b, "[%d] %s (from %s, page %d)\n%s\n\n", i+1, s.SectionTitle, s.Document, s.PageNumber, s.Content)
	}
	b.WriteString(`Using the passage and the related sections, respond with a single JSON object and nothing else, with exactly these keys:
  "key_insights": 3-5 short takeaways connecting the passage to the related sections,
  "did_you_know": 2-3 surprising facts drawn from the related sections,
  "counterpoints": 2-3 contradictions or alternative viewpoints found across the sections,
  "podcast_script": a 2-person conversational script of roughly 300 words discussing the passage.
All list values are arrays of strings. Do not wrap the JSON in markdown fences.`)
	return b.String()
}

// ParseInsights extracts the first JSON object embedded in a model
// reply. Models often pad replies with prose or code fences, so the
// substring between the first '{' and the last '}' is decoded.
func ParseInsights(raw string) (*Insights, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	var out Insights
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	return &out, nil
}

func fallbackInsights() *Insights {
	return &Insights{
		KeyInsights:   []string{"The selected text relates to several sections across your document library."},
		DidYouKnow:    []string{"Cross-document connections can reveal patterns a single document hides."},
		Counterpoints: []string{"Similar passages may reflect different assumptions in their source documents."},
		PodcastScript: "Host A: We looked at a passage and its closest matches across the library. Host B: The overlap suggests a shared theme worth a closer read.",
	}
}
