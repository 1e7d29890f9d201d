package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when no index record exists for a stem.
var ErrNotFound = errors.New("index record not found")

// Store persists one JSON index record per document under a directory,
// named by the source file's stem. Writes are atomic (temp file + rename)
// so readers never observe a partial record.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) an index directory.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string { return s.dir }

// Put writes the record for idx, replacing any previous record wholesale.
func (s *Store) Put(idx *DocumentIndex) error {
	stem := Stem(idx.Metadata.Filename)
	if stem == "" {
		return fmt.Errorf("index record has no source filename")
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index %s: %w", stem, err)
	}

	target := filepath.Join(s.dir, stem+".json")
	tmp, err := os.CreateTemp(s.dir, stem+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write index %s: %w", stem, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close index %s: %w", stem, err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("commit index %s: %w", stem, err)
	}
	return nil
}

// Get loads the record for a stem.
func (s *Store) Get(stem string) (*DocumentIndex, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, stem+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, stem)
		}
		return nil, fmt.Errorf("read index %s: %w", stem, err)
	}
	var idx DocumentIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("decode index %s: %w", stem, err)
	}
	return &idx, nil
}

// Stems lists the stems of all persisted records, sorted.
func (s *Store) Stems() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read index dir: %w", err)
	}
	var stems []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		stems = append(stems, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(stems)
	return stems, nil
}

// LoadAll loads every persisted record, ordered by stem.
func (s *Store) LoadAll() ([]*DocumentIndex, error) {
	stems, err := s.Stems()
	if err != nil {
		return nil, err
	}
	indices := make([]*DocumentIndex, 0, len(stems))
	for _, stem := range stems {
		idx, err := s.Get(stem)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}
	return indices, nil
}
