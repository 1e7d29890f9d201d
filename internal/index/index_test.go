package index

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/AstikVerma/doclens/internal/layout"
	"github.com/AstikVerma/doclens/internal/outline"
)

// hashEncoder produces a deterministic vector from the text so repeated
// builds are comparable.
type hashEncoder struct{}

func (hashEncoder) Embed(ctx context.Context, text string) ([]float64, error) {
	var sum float64
	for _, r := range text {
		sum += float64(r)
	}
	return []float64{sum, float64(len(text))}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// headedDoc is a two-page document whose first-page top block qualifies as
// the heuristic title and whose bold blocks qualify as headings.
func headedDoc() *layout.Document {
	return &layout.Document{
		NumPages:    2,
		MaxFontSize: 24,
		Pages: []layout.PageText{
			{Number: 1, Lines: []string{
				"Field Guide",
				"Habitats",
				"Wetlands host many species of wading birds and amphibians all year.",
			}},
			{Number: 2, Lines: []string{
				"Migration",
				"Most species travel south before the first frost arrives in autumn.",
			}},
		},
		Blocks: []layout.Block{
			{Text: "Field Guide", FontSize: 24, PageIndex: 0, BlockIndex: 0, Y0: 30, PageWidth: 612, PageHeight: 792, PageMaxFontSize: 24},
			{Text: "Habitats", FontSize: 20, Bold: true, PageIndex: 0, BlockIndex: 1, Y0: 200, PageWidth: 612, PageHeight: 792, PageMaxFontSize: 24},
			{Text: "Wetlands host many species of wading birds and amphibians all year.", FontSize: 10, PageIndex: 0, BlockIndex: 2, Y0: 240, PageWidth: 612, PageHeight: 792, PageMaxFontSize: 24},
			{Text: "Migration", FontSize: 20, Bold: true, PageIndex: 1, BlockIndex: 0, Y0: 30, PageWidth: 612, PageHeight: 792, PageMaxFontSize: 20},
			{Text: "Most species travel south before the first frost arrives in autumn.", FontSize: 10, PageIndex: 1, BlockIndex: 1, Y0: 70, PageWidth: 612, PageHeight: 792, PageMaxFontSize: 20},
		},
	}
}

func testBuilder() *Builder {
	classifier := outline.New("", discardLogger())
	return NewBuilder(classifier, hashEncoder{}, discardLogger(), 2)
}

func TestBuildFromDocument(t *testing.T) {
	idx, err := testBuilder().BuildFromDocument(context.Background(), "guide.pdf", headedDoc())
	if err != nil {
		t.Fatalf("BuildFromDocument: %v", err)
	}

	if idx.Title != "Field Guide" {
		t.Errorf("title = %q", idx.Title)
	}
	if len(idx.Outline) != 2 {
		t.Fatalf("outline = %+v, want 2 headings", idx.Outline)
	}
	if idx.Outline[0].Text != "Habitats" || idx.Outline[0].Page != 1 {
		t.Errorf("first heading = %+v", idx.Outline[0])
	}
	if idx.Outline[1].Text != "Migration" || idx.Outline[1].Page != 2 {
		t.Errorf("second heading = %+v", idx.Outline[1])
	}

	if len(idx.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(idx.Sections))
	}
	for _, s := range idx.Sections {
		if len(s.Embedding) == 0 {
			t.Errorf("section %q has no embedding", s.SectionTitle)
		}
		if !strings.HasPrefix(s.SectionText, s.SectionTitle+". ") {
			t.Errorf("SectionText %q does not embed the title", s.SectionText)
		}
	}

	if idx.Metadata.Filename != "guide.pdf" {
		t.Errorf("filename = %q", idx.Metadata.Filename)
	}
	if idx.Metadata.ModelUsed != "heuristic" {
		t.Errorf("model_used = %q, want heuristic without an artifact", idx.Metadata.ModelUsed)
	}
	if idx.Metadata.TotalBlocks != 5 || idx.Metadata.TotalSections != 2 {
		t.Errorf("metadata counts = %+v", idx.Metadata)
	}
	if idx.Metadata.ProcessedAt.IsZero() {
		t.Errorf("ProcessedAt not set")
	}

	if idx.FullText == "" || len(idx.FullTextEmbedding) == 0 {
		t.Errorf("full text fields not populated")
	}
}

func TestBuildFromDocument_Deterministic(t *testing.T) {
	b := testBuilder()
	first, err := b.BuildFromDocument(context.Background(), "guide.pdf", headedDoc())
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := b.BuildFromDocument(context.Background(), "guide.pdf", headedDoc())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if first.Title != second.Title || first.FullText != second.FullText {
		t.Errorf("rebuild diverged: %q vs %q", first.Title, second.Title)
	}
	if len(first.Sections) != len(second.Sections) {
		t.Fatalf("section counts diverged")
	}
	for i := range first.Sections {
		if first.Sections[i].Embedding[0] != second.Sections[i].Embedding[0] {
			t.Errorf("section %d embedding diverged", i)
		}
	}
}

func TestBuildFromDocument_EmptyDocument(t *testing.T) {
	doc := &layout.Document{NumPages: 1, MaxFontSize: 12}
	idx, err := testBuilder().BuildFromDocument(context.Background(), "blank.pdf", doc)
	if err != nil {
		t.Fatalf("BuildFromDocument: %v", err)
	}
	if len(idx.Sections) != 0 {
		t.Errorf("sections = %+v, want none", idx.Sections)
	}
	if idx.FullText != "" {
		t.Errorf("full text = %q, want empty", idx.FullText)
	}
	if idx.FullTextEmbedding != nil {
		t.Errorf("empty full text must not be embedded")
	}
}
