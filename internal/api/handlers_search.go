package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type similarityRequest struct {
	SelectedText string `json:"selected_text"`
	TopN         int    `json:"top_n"`
}

// handleSimilarity ranks indexed sections against the selected text.
func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SelectedText) == "" {
		jsonError(w, "selected_text is required", http.StatusBadRequest)
		return
	}

	topN := req.TopN
	if topN <= 0 {
		topN = s.cfg.SearchTopN
	}

	corpus, err := s.store.LoadAll()
	if err != nil {
		jsonError(w, "failed to load indexes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	results, err := s.engine.Search(r.Context(), req.SelectedText, corpus, topN)
	if err != nil {
		jsonError(w, "similarity search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"selected_text":    req.SelectedText,
		"similar_sections": results,
	})
}

// handleInsights generates LLM commentary for the selected text, grounded
// in its most similar sections across the corpus.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SelectedText) == "" {
		jsonError(w, "selected_text is required", http.StatusBadRequest)
		return
	}

	corpus, err := s.store.LoadAll()
	if err != nil {
		jsonError(w, "failed to load indexes: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sections, err := s.engine.Search(r.Context(), req.SelectedText, corpus, s.cfg.InsightsSections)
	if err != nil {
		jsonError(w, "similarity search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	out, err := s.insights.Generate(r.Context(), req.SelectedText, sections)
	if err != nil {
		jsonError(w, "insights generation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
