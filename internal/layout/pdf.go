// Package layout parses PDF documents into text blocks and derives the
// normalized geometric and typographic features used for heading detection.
package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Block is a paragraph-like group of text lines with style and position
// metadata. Coordinates are top-down page coordinates in points.
type Block struct {
	Text            string
	FontSize        float64
	X0, Y0, X1, Y1  float64
	PageIndex       int // 0-based
	BlockIndex      int // position within the page scan
	PageWidth       float64
	PageHeight      float64
	PageMaxFontSize float64
	Bold            bool
	Underlined      bool
	SpaceAbove      float64
	SpaceBelow      float64
}

// PageText holds the raw text lines of one page in reading order,
// used by the section segmenter.
type PageText struct {
	Number int // 1-based
	Lines  []string
}

// Document is the parsed layout of a whole PDF.
type Document struct {
	NumPages    int
	Pages       []PageText
	Blocks      []Block
	MaxFontSize float64
}

// line is one text row before block grouping.
type line struct {
	text     string
	x        float64
	top      float64 // top-down y of the line's top edge
	bottom   float64 // top-down y of the line's bottom edge
	fontSize float64
	font     string
}

// ExtractFile parses the PDF at path into blocks and page text.
func ExtractFile(path string) (*Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return extract(reader)
}

func extract(reader *pdflib.Reader) (*Document, error) {
	doc := &Document{NumPages: reader.NumPage()}

	maxDocFont := 0.0
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		width, height := pageSize(page)

		rows, err := page.GetTextByRow()
		if err != nil {
			// A page with unreadable content contributes nothing.
			continue
		}
		lines := rowsToLines(rows, height)
		if len(lines) == 0 {
			continue
		}

		pageMax := 0.0
		texts := make([]string, 0, len(lines))
		for _, ln := range lines {
			if ln.fontSize > pageMax {
				pageMax = ln.fontSize
			}
			texts = append(texts, ln.text)
		}
		if pageMax == 0 {
			pageMax = 1.0
		}
		doc.Pages = append(doc.Pages, PageText{Number: pageNum, Lines: texts})

		pageBlocks := buildBlocks(lines)
		kept := make([]Block, 0, len(pageBlocks))
		for idx, group := range pageBlocks {
			if isTabular(group) {
				continue
			}
			first := group[0]
			b := Block{
				Text:            smartJoin(lineTexts(group)),
				FontSize:        round2(first.fontSize),
				X0:              minStartX(group),
				Y0:              first.top,
				X1:              maxEndX(group),
				Y1:              group[len(group)-1].bottom,
				PageIndex:       pageNum - 1,
				BlockIndex:      idx,
				PageWidth:       width,
				PageHeight:      height,
				PageMaxFontSize: pageMax,
				Bold:            isBoldFont(first.font),
				Underlined:      isUnderlinedFont(first.font),
			}
			if b.Text == "" {
				continue
			}
			if b.FontSize > maxDocFont {
				maxDocFont = b.FontSize
			}
			kept = append(kept, b)
		}

		// Vertical spacing against neighbors, with the page edges as
		// the first and last boundaries.
		for i := range kept {
			if i > 0 {
				kept[i].SpaceAbove = kept[i].Y0 - kept[i-1].Y1
			} else {
				kept[i].SpaceAbove = kept[i].Y0
			}
			if i < len(kept)-1 {
				kept[i].SpaceBelow = kept[i+1].Y0 - kept[i].Y1
			} else {
				kept[i].SpaceBelow = height - kept[i].Y1
			}
		}
		doc.Blocks = append(doc.Blocks, kept...)
	}

	if maxDocFont == 0 {
		maxDocFont = 1.0
	}
	doc.MaxFontSize = maxDocFont
	return doc, nil
}

// pageSize resolves the page MediaBox, walking up the page tree for
// inherited attributes. Falls back to US Letter when absent.
func pageSize(page pdflib.Page) (width, height float64) {
	v := page.V
	for !v.IsNull() {
		if mb := v.Key("MediaBox"); !mb.IsNull() && mb.Len() == 4 {
			width = mb.Index(2).Float64() - mb.Index(0).Float64()
			height = mb.Index(3).Float64() - mb.Index(1).Float64()
			if width > 0 && height > 0 {
				return width, height
			}
		}
		v = v.Key("Parent")
	}
	return 612, 792
}

// rowsToLines converts the PDF engine's text rows (bottom-up coordinates)
// into top-down lines, joining the row's runs with gap-aware spacing.
func rowsToLines(rows pdflib.Rows, pageHeight float64) []line {
	sorted := make(pdflib.Rows, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})

	out := make([]line, 0, len(sorted))
	for _, row := range sorted {
		if len(row.Content) == 0 {
			continue
		}
		text := joinRuns(row.Content)
		if strings.TrimSpace(text) == "" {
			continue
		}
		first := row.Content[0]
		size := first.FontSize
		if size <= 0 {
			size = 1.0
		}
		baseline := pageHeight - first.Y
		out = append(out, line{
			text:     text,
			x:        first.X,
			top:      baseline - size,
			bottom:   baseline,
			fontSize: round2(size),
			font:     first.Font,
		})
	}
	return out
}

// joinRuns concatenates the text runs of a row, inserting a space when the
// horizontal gap between runs is wide enough to indicate a word break.
func joinRuns(runs pdflib.TextHorizontal) string {
	var sb strings.Builder
	for i := range runs {
		t := runs[i]
		if i > 0 {
			prev := runs[i-1]
			gap := t.X - (prev.X + prev.W)
			if gap > 0.3*t.FontSize && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(t.S)
	}
	return sb.String()
}

// buildBlocks groups consecutive lines into paragraph blocks by vertical gap.
func buildBlocks(lines []line) [][]line {
	var blocks [][]line
	var current []line
	for _, ln := range lines {
		if len(current) > 0 {
			prev := current[len(current)-1]
			gap := ln.top - prev.bottom
			if gap > 0.6*math.Max(prev.fontSize, ln.fontSize) {
				blocks = append(blocks, current)
				current = nil
			}
		}
		current = append(current, ln)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

// isTabular reports whether a multi-line block looks like a table layout:
// its lines start at more than one distinct horizontal position.
func isTabular(group []line) bool {
	if len(group) <= 1 {
		return false
	}
	starts := make(map[float64]struct{}, len(group))
	for _, ln := range group {
		starts[round1(ln.x)] = struct{}{}
	}
	return len(starts) > 1
}

// smartJoin merges the lines of a block into one logical line, inserting a
// single space at each join unless either side already carries whitespace.
func smartJoin(lines []string) string {
	var sb strings.Builder
	for i, ln := range lines {
		if i > 0 && !strings.HasSuffix(lines[i-1], " ") && !strings.HasPrefix(ln, " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(ln)
	}
	return strings.TrimSpace(sb.String())
}

func lineTexts(group []line) []string {
	out := make([]string, len(group))
	for i, ln := range group {
		out[i] = ln.text
	}
	return out
}

func minStartX(group []line) float64 {
	m := group[0].x
	for _, ln := range group[1:] {
		if ln.x < m {
			m = ln.x
		}
	}
	return m
}

func maxEndX(group []line) float64 {
	m := 0.0
	for _, ln := range group {
		if ln.x > m {
			m = ln.x
		}
	}
	return m
}

func isBoldFont(font string) bool {
	f := strings.ToLower(font)
	return strings.Contains(f, "bold") || strings.Contains(f, "black") || strings.Contains(f, "heavy")
}

func isUnderlinedFont(font string) bool {
	return strings.Contains(strings.ToLower(font), "underline")
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
