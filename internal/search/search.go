// Package search ranks document sections against a query by cosine
// similarity over precomputed embeddings. The scan is brute force over
// every section of every supplied index, which is intentional at the corpus
// sizes this system targets (tens to low hundreds of sections).
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/AstikVerma/doclens/internal/embedding"
	"github.com/AstikVerma/doclens/internal/index"
)

// MinSectionWords filters out sections too short to rank reliably; very
// short sections score deceptively high from embedding length bias.
const MinSectionWords = 15

// DefaultTopN is used when the caller passes a non-positive top-n.
const DefaultTopN = 10

// Result is one ranked section. Rank is dense and 1-based.
type Result struct {
	Document        string  `json:"document"`
	SectionTitle    string  `json:"section_title"`
	Rank            int     `json:"rank"`
	PageNumber      int     `json:"page_number"`
	SimilarityScore float64 `json:"similarity_score"`
	Level           string  `json:"level"`
	Content         string  `json:"content"`
	WordCount       int     `json:"word_count"`
}

// Engine answers similarity queries against persisted indices.
type Engine struct {
	encoder embedding.Encoder
}

// NewEngine wires a search engine around an embedding encoder.
func NewEngine(encoder embedding.Encoder) *Engine {
	return &Engine{encoder: encoder}
}

// Search embeds the query once, scores every section, and returns up to
// topN results ordered by similarity. Sections under MinSectionWords are
// skipped; equal scores keep traversal order (document order, then section
// order). An empty corpus yields an empty slice, not an error. The supplied
// indices are never mutated.
func (e *Engine) Search(ctx context.Context, query string, corpus []*index.DocumentIndex, topN int) ([]Result, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	type candidate struct {
		document string
		section  *index.Section
		score    float64
	}
	var candidates []candidate
	for _, doc := range corpus {
		for i := range doc.Sections {
			candidates = append(candidates, candidate{
				document: doc.Metadata.Filename,
				section:  &doc.Sections[i],
			})
		}
	}
	if len(candidates) == 0 {
		return []Result{}, nil
	}

	queryVec, err := e.encoder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	for i := range candidates {
		candidates[i].score = Cosine(queryVec, candidates[i].section.Embedding)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	results := make([]Result, 0, topN)
	rank := 1
	for _, c := range candidates {
		wc := CountWords(c.section.Content)
		if wc < MinSectionWords {
			continue
		}
		results = append(results, Result{
			Document:        c.document,
			SectionTitle:    c.section.SectionTitle,
			Rank:            rank,
			PageNumber:      c.section.PageNumber,
			SimilarityScore: c.score,
			Level:           c.section.Level,
			Content:         c.section.Content,
			WordCount:       wc,
		})
		rank++
		if len(results) >= topN {
			break
		}
	}
	return results, nil
}

// Cosine computes the explicit cosine similarity (dot product over the
// product of norms). Embeddings carry no unit-norm guarantee, so a raw dot
// product would be wrong. Zero-magnitude vectors score zero.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// CountWords splits on whitespace and discards empty tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
