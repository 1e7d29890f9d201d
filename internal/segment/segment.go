// Package segment extracts the body content belonging to each outline
// heading from a document's raw page text.
package segment

import (
	"strings"

	"github.com/AstikVerma/doclens/internal/layout"
	"github.com/AstikVerma/doclens/internal/outline"
)

// Section is one heading together with the text between it and the next
// heading (or the document end).
type Section struct {
	Title       string
	Page        int // 1-based
	Level       string
	Content     string
	SectionText string // "{title}. {content}", the text that gets embedded
}

// Sections extracts content for every outline entry. Entries whose heading
// text is never matched within their page window produce empty content and
// are omitted; that is not an error.
//
// Heading location is a case-insensitive substring match against page
// lines. When heading text recurs verbatim in body content, or two headings
// share literal text, the first occurrence wins; there is no secondary
// disambiguation by font or position.
func Sections(doc *layout.Document, entries []outline.Entry) []Section {
	pages := make(map[int][]string, len(doc.Pages))
	for _, p := range doc.Pages {
		pages[p.Number] = p.Lines
	}

	sections := make([]Section, 0, len(entries))
	for i, entry := range entries {
		var next *outline.Entry
		if i+1 < len(entries) {
			next = &entries[i+1]
		}
		content := extractContent(pages, doc.NumPages, entry, next)
		if content == "" {
			continue
		}
		sections = append(sections, Section{
			Title:       entry.Text,
			Page:        entry.Page,
			Level:       entry.Level,
			Content:     content,
			SectionText: entry.Text + ". " + content,
		})
	}
	return sections
}

// extractContent scans the entry's page window line by line. Accumulation
// starts after the first line containing the heading and stops at the first
// line containing the next heading.
func extractContent(pages map[int][]string, numPages int, entry outline.Entry, next *outline.Entry) string {
	endPage := numPages
	if next != nil {
		endPage = next.Page
	}

	heading := strings.ToLower(entry.Text)
	var nextHeading string
	if next != nil {
		nextHeading = strings.ToLower(next.Text)
	}

	var sb strings.Builder
	found := false
	for pageNum := entry.Page; pageNum <= endPage; pageNum++ {
		for _, ln := range pages[pageNum] {
			lower := strings.ToLower(ln)
			if !found {
				if strings.Contains(lower, heading) {
					found = true
				}
				continue
			}
			if next != nil && strings.Contains(lower, nextHeading) {
				return strings.TrimSpace(sb.String())
			}
			sb.WriteString(ln)
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}
