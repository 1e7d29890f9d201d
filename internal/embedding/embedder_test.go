package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// lenEncoder returns a one-element vector derived from the text length and
// tracks peak concurrency.
type lenEncoder struct {
	mu      sync.Mutex
	active  int
	peak    int
	failAll bool
	calls   atomic.Int64
}

func (e *lenEncoder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.active++
	if e.active > e.peak {
		e.peak = e.active
	}
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.active--
		e.mu.Unlock()
	}()
	if e.failAll {
		return nil, errors.New("model offline")
	}
	return []float64{float64(len(text))}, nil
}

func TestEmbedAll_PreservesOrder(t *testing.T) {
	texts := []string{"a", "bb", "ccc", "dddd"}
	vectors, err := EmbedAll(context.Background(), &lenEncoder{}, texts, 4)
	if err != nil {
		t.Fatalf("EmbedAll: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	for i, text := range texts {
		if vectors[i][0] != float64(len(text)) {
			t.Errorf("vector %d = %v, want length of %q", i, vectors[i], text)
		}
	}
}

func TestEmbedAll_BoundsConcurrency(t *testing.T) {
	enc := &lenEncoder{}
	texts := make([]string, 20)
	for i := range texts {
		texts[i] = "text"
	}
	if _, err := EmbedAll(context.Background(), enc, texts, 3); err != nil {
		t.Fatalf("EmbedAll: %v", err)
	}
	if enc.peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", enc.peak)
	}
}

func TestEmbedAll_ErrorWins(t *testing.T) {
	enc := &lenEncoder{failAll: true}
	if _, err := EmbedAll(context.Background(), enc, []string{"a", "b"}, 2); err == nil {
		t.Fatal("expected error from failing encoder")
	}
}

func TestEmbedAll_Empty(t *testing.T) {
	enc := &lenEncoder{}
	vectors, err := EmbedAll(context.Background(), enc, nil, 3)
	if err != nil {
		t.Fatalf("EmbedAll: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("vectors = %v, want empty", vectors)
	}
	if enc.calls.Load() != 0 {
		t.Errorf("encoder called %d times for empty input", enc.calls.Load())
	}
}

func TestEmbedAll_SequentialWhenUnbounded(t *testing.T) {
	// Non-positive bound degrades to one at a time, never zero workers.
	enc := &lenEncoder{}
	vectors, err := EmbedAll(context.Background(), enc, []string{"x", "yy"}, 0)
	if err != nil {
		t.Fatalf("EmbedAll: %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 2 {
		t.Errorf("vectors = %v", vectors)
	}
	if enc.peak > 1 {
		t.Errorf("peak concurrency = %d, want 1", enc.peak)
	}
}
