package segment

import (
	"strings"
	"testing"

	"github.com/AstikVerma/doclens/internal/layout"
	"github.com/AstikVerma/doclens/internal/outline"
)

func TestSections_Basic(t *testing.T) {
	doc := &layout.Document{
		NumPages: 1,
		Pages: []layout.PageText{
			{Number: 1, Lines: []string{
				"Introduction",
				"This paper covers widgets.",
				"They are everywhere.",
				"Methods",
				"We counted widgets by hand.",
			}},
		},
	}
	entries := []outline.Entry{
		{Level: "H1", Text: "Introduction", Page: 1},
		{Level: "H1", Text: "Methods", Page: 1},
	}

	sections := Sections(doc, entries)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}

	if got := sections[0].Content; got != "This paper covers widgets. They are everywhere." {
		t.Errorf("intro content = %q", got)
	}
	if got := sections[1].Content; got != "We counted widgets by hand." {
		t.Errorf("methods content = %q", got)
	}
	if sections[0].SectionText != "Introduction. This paper covers widgets. They are everywhere." {
		t.Errorf("SectionText = %q", sections[0].SectionText)
	}
	if sections[0].Level != "H1" || sections[0].Page != 1 {
		t.Errorf("section metadata = %+v", sections[0])
	}
}

func TestSections_SpansPages(t *testing.T) {
	doc := &layout.Document{
		NumPages: 3,
		Pages: []layout.PageText{
			{Number: 1, Lines: []string{"Background", "First page text."}},
			{Number: 2, Lines: []string{"Second page text."}},
			{Number: 3, Lines: []string{"Third page text."}},
		},
	}
	entries := []outline.Entry{{Level: "H1", Text: "Background", Page: 1}}

	sections := Sections(doc, entries)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	want := "First page text. Second page text. Third page text."
	if sections[0].Content != want {
		t.Errorf("content = %q, want %q", sections[0].Content, want)
	}
}

func TestSections_UnmatchedHeadingOmitted(t *testing.T) {
	doc := &layout.Document{
		NumPages: 1,
		Pages: []layout.PageText{
			{Number: 1, Lines: []string{"Some body text only."}},
		},
	}
	entries := []outline.Entry{{Level: "H2", Text: "Missing Heading", Page: 1}}

	sections := Sections(doc, entries)
	if len(sections) != 0 {
		t.Errorf("unmatched heading should yield no section, got %+v", sections)
	}
}

func TestSections_CaseInsensitiveMatch(t *testing.T) {
	doc := &layout.Document{
		NumPages: 1,
		Pages: []layout.PageText{
			{Number: 1, Lines: []string{"INTRODUCTION", "Body follows here."}},
		},
	}
	entries := []outline.Entry{{Level: "H1", Text: "Introduction", Page: 1}}

	sections := Sections(doc, entries)
	if len(sections) != 1 {
		t.Fatalf("expected case-insensitive match, got %d sections", len(sections))
	}
	if sections[0].Content != "Body follows here." {
		t.Errorf("content = %q", sections[0].Content)
	}
}

func TestSections_StopsAtNextHeadingMidPage(t *testing.T) {
	// The second heading sits on a later page; content collection must stop
	// the moment its text appears, not at the page boundary.
	doc := &layout.Document{
		NumPages: 2,
		Pages: []layout.PageText{
			{Number: 1, Lines: []string{"Results", "We found things."}},
			{Number: 2, Lines: []string{"More findings.", "Discussion", "Interpretation here."}},
		},
	}
	entries := []outline.Entry{
		{Level: "H1", Text: "Results", Page: 1},
		{Level: "H1", Text: "Discussion", Page: 2},
	}

	sections := Sections(doc, entries)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if strings.Contains(sections[0].Content, "Interpretation") {
		t.Errorf("results section leaked past next heading: %q", sections[0].Content)
	}
	if sections[0].Content != "We found things. More findings." {
		t.Errorf("results content = %q", sections[0].Content)
	}
}

func TestSections_DuplicateHeadingTextFirstOccurrenceWins(t *testing.T) {
	// Two entries with identical text on the same page: both anchor at the
	// first occurrence, so the first entry gets empty content (the very next
	// line matches the "next heading") and is omitted.
	doc := &layout.Document{
		NumPages: 1,
		Pages: []layout.PageText{
			{Number: 1, Lines: []string{"Summary", "Summary", "Actual content below."}},
		},
	}
	entries := []outline.Entry{
		{Level: "H2", Text: "Summary", Page: 1},
		{Level: "H2", Text: "Summary", Page: 1},
	}

	sections := Sections(doc, entries)
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	// The second entry anchors at the first occurrence too, so the repeated
	// heading line lands in its content.
	if sections[0].Content != "Summary Actual content below." {
		t.Errorf("content = %q", sections[0].Content)
	}
}

func TestSections_NoEntries(t *testing.T) {
	doc := &layout.Document{NumPages: 1, Pages: []layout.PageText{{Number: 1, Lines: []string{"text"}}}}
	if got := Sections(doc, nil); len(got) != 0 {
		t.Errorf("expected no sections, got %+v", got)
	}
}
