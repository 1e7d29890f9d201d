package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/AstikVerma/doclens/internal/pipeline"
)

// handleProcess runs the indexing pipeline over every uploaded PDF that
// has no index record yet. The run is synchronous; clients poll
// /api/progress from another connection for live status.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	pdfs, err := s.listPDFs()
	if err != nil {
		jsonError(w, "failed to list files: "+err.Error(), http.StatusInternalServerError)
		return
	}

	indexed, err := s.indexedStems()
	if err != nil {
		jsonError(w, "failed to list indexes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var pending []string
	for _, name := range pdfs {
		stem := name[:len(name)-len(filepath.Ext(name))]
		if !indexed[stem] {
			pending = append(pending, filepath.Join(s.cfg.PDFDir, name))
		}
	}

	if len(pending) == 0 {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message":         "no new files to process",
			"processed_files": []pipeline.ProcessedFile{},
		})
		return
	}

	processed, err := s.runner.Run(r.Context(), pending)
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			jsonError(w, err.Error(), http.StatusConflict)
			return
		}
		jsonError(w, "processing failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if processed == nil {
		processed = []pipeline.ProcessedFile{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"message":         "processing complete",
		"processed_files": processed,
	})
}

// handleProgress reports the state of the active (or last) run.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.runner.Snapshot())
}

// handleStatus summarizes the stored corpus.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	pdfs, err := s.listPDFs()
	if err != nil {
		jsonError(w, "failed to list files: "+err.Error(), http.StatusInternalServerError)
		return
	}
	stems, err := s.store.Stems()
	if err != nil {
		jsonError(w, "failed to list indexes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonFiles := make([]string, 0, len(stems))
	for _, stem := range stems {
		jsonFiles = append(jsonFiles, stem+".json")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"pdf_files":    pdfs,
		"json_files":   jsonFiles,
		"is_processed": len(pdfs) > 0 && len(stems) >= len(pdfs),
	})
}
