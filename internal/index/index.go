// Package index assembles and persists the per-document search index: the
// title, outline, per-section content with precomputed embeddings, and the
// full-document text with its embedding. One record per document; a record
// is immutable once written and replaced wholesale on reprocessing.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/AstikVerma/doclens/internal/embedding"
	"github.com/AstikVerma/doclens/internal/layout"
	"github.com/AstikVerma/doclens/internal/outline"
	"github.com/AstikVerma/doclens/internal/segment"
)

// Section is one outline entry with its extracted content and embedding.
type Section struct {
	SectionTitle string    `json:"section_title"`
	PageNumber   int       `json:"page_number"`
	Level        string    `json:"level"`
	Content      string    `json:"content"`
	Embedding    []float64 `json:"embedding"`
	SectionText  string    `json:"section_text"`
}

// Metadata records how a document was processed.
type Metadata struct {
	Filename      string    `json:"filename"`
	ProcessedAt   time.Time `json:"processed_at"`
	TotalBlocks   int       `json:"total_blocks"`
	TotalSections int       `json:"total_sections"`
	ModelUsed     string    `json:"model_used"`
}

// DocumentIndex is the persisted record for one document.
type DocumentIndex struct {
	Title             string          `json:"title"`
	Outline           []outline.Entry `json:"outline"`
	Metadata          Metadata        `json:"metadata"`
	Sections          []Section       `json:"sections"`
	FullText          string          `json:"full_text"`
	FullTextEmbedding []float64       `json:"full_text_embedding"`
}

// Builder runs the extraction, classification, segmentation and embedding
// steps for one document and assembles the index record.
type Builder struct {
	classifier    *outline.Classifier
	encoder       embedding.Encoder
	log           *slog.Logger
	maxConcurrent int
}

// NewBuilder wires a Builder. maxConcurrent bounds parallel section
// embedding calls; values below 1 mean sequential.
func NewBuilder(classifier *outline.Classifier, encoder embedding.Encoder, log *slog.Logger, maxConcurrent int) *Builder {
	return &Builder{
		classifier:    classifier,
		encoder:       encoder,
		log:           log,
		maxConcurrent: maxConcurrent,
	}
}

// Build processes one PDF into an index record. Processing is atomic for
// the document: any failure returns an error and no partial record.
func (b *Builder) Build(ctx context.Context, pdfPath string) (*DocumentIndex, error) {
	doc, err := layout.ExtractFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("extract layout: %w", err)
	}
	return b.BuildFromDocument(ctx, filepath.Base(pdfPath), doc)
}

// BuildFromDocument assembles the index for an already-extracted layout.
func (b *Builder) BuildFromDocument(ctx context.Context, filename string, doc *layout.Document) (*DocumentIndex, error) {
	features := layout.Features(doc)
	result, strategy := b.classifier.Classify(features)
	b.log.Info("classified document",
		"file", filename,
		"strategy", strategy,
		"blocks", len(features),
		"headings", len(result.Outline),
	)

	parts := segment.Sections(doc, result.Outline)

	texts := make([]string, len(parts))
	for i, s := range parts {
		texts[i] = s.SectionText
	}
	vectors, err := embedding.EmbedAll(ctx, b.encoder, texts, b.maxConcurrent)
	if err != nil {
		return nil, fmt.Errorf("embed sections: %w", err)
	}

	sections := make([]Section, len(parts))
	contents := make([]string, len(parts))
	for i, s := range parts {
		sections[i] = Section{
			SectionTitle: s.Title,
			PageNumber:   s.Page,
			Level:        s.Level,
			Content:      s.Content,
			Embedding:    vectors[i],
			SectionText:  s.SectionText,
		}
		contents[i] = s.Content
	}

	fullText := strings.Join(contents, " ")
	var fullEmbedding []float64
	if fullText != "" {
		fullEmbedding, err = b.encoder.Embed(ctx, fullText)
		if err != nil {
			return nil, fmt.Errorf("embed full text: %w", err)
		}
	}

	return &DocumentIndex{
		Title:   result.Title,
		Outline: result.Outline,
		Metadata: Metadata{
			Filename:      filename,
			ProcessedAt:   time.Now().UTC(),
			TotalBlocks:   len(features),
			TotalSections: len(sections),
			ModelUsed:     strategy,
		},
		Sections:          sections,
		FullText:          fullText,
		FullTextEmbedding: fullEmbedding,
	}, nil
}

// Stem returns the filename without directory or extension; it keys the
// 1:1 mapping between source PDFs and persisted index records.
func Stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
