package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

// handleUpload accepts one or more PDFs as multipart form files and
// stores them for later processing.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	var saved []string
	var errs []map[string]string
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
			errs = append(errs, map[string]string{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			errs = append(errs, map[string]string{"filename": filename, "error": "failed to open file"})
			continue
		}

		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			errs = append(errs, map[string]string{
				"filename": filename,
				"error":    fmt.Sprintf("file too large or read error (max %d bytes)", s.cfg.MaxUploadBytes),
			})
			continue
		}

		dst := filepath.Join(s.cfg.PDFDir, filename)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			s.log.Error("upload write failed", "file", filename, "error", err)
			errs = append(errs, map[string]string{"filename": filename, "error": "failed to store file"})
			continue
		}
		saved = append(saved, filename)
	}

	s.log.Info("upload complete", "saved", len(saved), "rejected", len(errs))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"uploaded": saved,
		"errors":   errs,
	})
}

// handleListFiles reports every uploaded PDF and whether an index record
// exists for it.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
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

	files := make([]map[string]any, 0, len(pdfs))
	for _, name := range pdfs {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		files = append(files, map[string]any{
			"filename":  name,
			"processed": indexed[stem],
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"files": files})
}

// handleServePDF streams a stored PDF back to the client.
func (s *Server) handleServePDF(w http.ResponseWriter, r *http.Request) {
	filename := sanitizeFilename(chi.URLParam(r, "filename"))
	path := filepath.Join(s.cfg.PDFDir, filename)

	if _, err := os.Stat(path); err != nil {
		jsonError(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (s *Server) listPDFs() ([]string, error) {
	entries, err := os.ReadDir(s.cfg.PDFDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Server) indexedStems() (map[string]bool, error) {
	stems, err := s.store.Stems()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(stems))
	for _, stem := range stems {
		set[stem] = true
	}
	return set, nil
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
