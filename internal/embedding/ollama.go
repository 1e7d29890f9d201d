package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// Ollama generates embeddings through the Ollama API.
type Ollama struct {
	client     *api.Client
	model      string
	maxRetries int
	timeout    time.Duration
}

// NewOllama creates an Ollama-backed encoder. An empty host falls back to
// the OLLAMA_HOST environment default.
func NewOllama(host, model string) (*Ollama, error) {
	base := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
		}
		base = u
	}
	return &Ollama{
		client:     api.NewClient(base, http.DefaultClient),
		model:      model,
		maxRetries: 3,
		timeout:    30 * time.Second,
	}, nil
}

// Embed generates an embedding for a text, retrying transient failures.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float64, error) {
	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		vec, err := o.embedOnce(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("embed after %d retries: %w", o.maxRetries, lastErr)
}

func (o *Ollama) embedOnce(ctx context.Context, text string) ([]float64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Embeddings(reqCtx, &api.EmbeddingRequest{
		Model:  o.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding for model %s", o.model)
	}
	return resp.Embedding, nil
}
