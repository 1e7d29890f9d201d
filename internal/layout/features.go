package layout

import (
	"strings"
	"unicode"
)

// Feature holds the normalized, resolution-independent values derived from
// one Block. These are the classifier's only view of the document.
type Feature struct {
	Text            string
	FontSizeRelDoc  float64 // font size / document max font size
	FontSizeRelPage float64 // font size / page max font size
	Bold            bool
	Underlined      bool
	NumWords        int
	Punctuation     string // trailing punctuation character, or "none"
	XPos            float64
	YPos            float64
	PageIndex       int // 0-based
	BlockIndex      int
	TitleCaseRatio  float64
	StopwordRatio   float64
	SpaceAbove      float64
	SpaceBelow      float64
}

// PunctuationNone is the category for blocks without trailing punctuation.
const PunctuationNone = "none"

const punctuationChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Features derives one Feature per block, in the document's block order.
func Features(doc *Document) []Feature {
	out := make([]Feature, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		out = append(out, deriveFeature(b, doc.MaxFontSize))
	}
	return out
}

func deriveFeature(b Block, maxDocFont float64) Feature {
	words := strings.Fields(b.Text)
	return Feature{
		Text:            b.Text,
		FontSizeRelDoc:  b.FontSize / nonZero(maxDocFont),
		FontSizeRelPage: b.FontSize / nonZero(b.PageMaxFontSize),
		Bold:            b.Bold,
		Underlined:      b.Underlined,
		NumWords:        len(words),
		Punctuation:     trailingPunctuation(b.Text),
		XPos:            b.X0 / nonZero(b.PageWidth),
		YPos:            b.Y0 / nonZero(b.PageHeight),
		PageIndex:       b.PageIndex,
		BlockIndex:      b.BlockIndex,
		TitleCaseRatio:  titleCaseRatio(words),
		StopwordRatio:   stopwordRatio(words),
		SpaceAbove:      b.SpaceAbove / nonZero(b.PageHeight),
		SpaceBelow:      b.SpaceBelow / nonZero(b.PageHeight),
	}
}

// trailingPunctuation returns the block's final character when it belongs to
// the fixed punctuation set, else PunctuationNone.
func trailingPunctuation(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return PunctuationNone
	}
	last := trimmed[len(trimmed)-1]
	if strings.IndexByte(punctuationChars, last) >= 0 {
		return string(last)
	}
	return PunctuationNone
}

// titleCaseRatio is the fraction of words starting with an uppercase letter.
func titleCaseRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	n := 0
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsUpper(r) {
			n++
		}
	}
	return float64(n) / float64(len(words))
}

// stopwordRatio is the fraction of words found in the stopword set.
func stopwordRatio(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	n := 0
	for _, w := range words {
		if _, ok := stopwords[strings.ToLower(w)]; ok {
			n++
		}
	}
	return float64(n) / float64(len(words))
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that", "these",
		"those", "from", "up", "down", "over", "under", "again", "further",
		"than", "so", "such", "into", "about", "between", "through",
		"during", "before", "after", "above", "below", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now",
		"i", "you", "he", "she", "we", "they", "them", "his", "her", "its",
		"our", "their", "what", "which", "who", "whom", "when", "where",
		"why", "how", "all", "any", "both", "each", "few", "more", "most",
		"other", "some", "no", "nor", "not", "only", "do", "does", "did",
		"have", "has", "had", "having",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
