// Package pipeline orchestrates batch document processing. Documents are
// processed strictly sequentially; one document's failure is logged and
// skipped, never aborting the batch. The Runner owns the only shared
// mutable state across documents: the progress of the active run.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/AstikVerma/doclens/internal/index"
)

// ErrRunInProgress is returned when a run is started while another is active.
var ErrRunInProgress = errors.New("a processing run is already in progress")

// Status is the lifecycle state of a batch run.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Progress is a point-in-time snapshot of the active (or last) run.
type Progress struct {
	IsProcessing   bool   `json:"is_processing"`
	TotalFiles     int    `json:"total_files"`
	ProcessedFiles int    `json:"processed_files"`
	CurrentFile    string `json:"current_file"`
	Status         Status `json:"status"`
	Percentage     int    `json:"percentage"`
}

// Builder processes one PDF into an index record.
type Builder interface {
	Build(ctx context.Context, pdfPath string) (*index.DocumentIndex, error)
}

// Store persists index records.
type Store interface {
	Put(*index.DocumentIndex) error
}

// ProcessedFile reports one successfully indexed document.
type ProcessedFile struct {
	Source string `json:"original_file"`
	Index  string `json:"index_file"`
}

// Runner executes batch runs. Progress updates happen under the runner's
// lock (single writer: the run itself); Snapshot reads are safe from any
// goroutine, e.g. a progress-polling HTTP handler.
type Runner struct {
	builder Builder
	store   Store
	log     *slog.Logger

	mu       sync.Mutex
	running  bool
	progress Progress
}

// NewRunner wires a batch runner.
func NewRunner(builder Builder, store Store, log *slog.Logger) *Runner {
	return &Runner{
		builder:  builder,
		store:    store,
		log:      log,
		progress: Progress{Status: StatusIdle},
	}
}

// Run processes the given PDFs in order, persisting one index record per
// document. A document that fails to process or persist is logged and
// skipped. Only one run may be active at a time; a second concurrent call
// returns ErrRunInProgress.
func (r *Runner) Run(ctx context.Context, pdfPaths []string) ([]ProcessedFile, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, ErrRunInProgress
	}
	r.running = true
	r.progress = Progress{
		IsProcessing: true,
		TotalFiles:   len(pdfPaths),
		Status:       StatusProcessing,
	}
	r.mu.Unlock()

	var processed []ProcessedFile
	for _, path := range pdfPaths {
		if err := ctx.Err(); err != nil {
			r.finish(StatusError)
			return processed, err
		}
		name := filepath.Base(path)
		r.setCurrent(name)

		idx, err := r.builder.Build(ctx, path)
		if err != nil {
			r.log.Error("document processing failed, skipping", "file", name, "error", err)
			r.advance()
			continue
		}
		if err := r.store.Put(idx); err != nil {
			r.log.Error("index write failed, skipping document", "file", name, "error", err)
			r.advance()
			continue
		}

		processed = append(processed, ProcessedFile{
			Source: name,
			Index:  index.Stem(name) + ".json",
		})
		r.log.Info("document indexed",
			"file", name,
			"sections", idx.Metadata.TotalSections,
			"model", idx.Metadata.ModelUsed,
		)
		r.advance()
	}

	r.finish(StatusCompleted)
	return processed, nil
}

// Snapshot returns the current progress.
func (r *Runner) Snapshot() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.progress
	if p.TotalFiles > 0 {
		p.Percentage = p.ProcessedFiles * 100 / p.TotalFiles
	}
	return p
}

func (r *Runner) setCurrent(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.CurrentFile = name
}

func (r *Runner) advance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.ProcessedFiles++
}

func (r *Runner) finish(status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
	r.progress.IsProcessing = false
	r.progress.Status = status
	r.progress.CurrentFile = ""
}
