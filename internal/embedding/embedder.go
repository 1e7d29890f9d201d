// Package embedding provides the text embedding capability consumed by the
// index builder and the search engine. The encoder is an external model
// service; the core only calls it, it never trains or reimplements one.
package embedding

import (
	"context"
	"sync"
)

// Encoder converts text into a fixed-dimension vector. Implementations make
// no guarantee about vector normalization; consumers must compute cosine
// similarity explicitly.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// EmbedAll embeds every text with bounded concurrency. The encoder is
// stateless from the caller's perspective, so independent calls are safe to
// issue in parallel. Results keep the input order; the first error wins.
func EmbedAll(ctx context.Context, enc Encoder, texts []string, maxConcurrent int) ([][]float64, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrent)
	vectors := make([][]float64, len(texts))
	errCh := make(chan error, len(texts))

	for i := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			vec, err := enc.Embed(ctx, texts[i])
			if err != nil {
				errCh <- err
				return
			}
			vectors[i] = vec
		}(i)
	}

	wg.Wait()
	close(errCh)
	if err := <-errCh; err != nil {
		return nil, err
	}
	return vectors, nil
}
