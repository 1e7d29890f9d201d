package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Document storage
	PDFDir   string
	IndexDir string

	// Heading classifier
	HeadingModelPath string

	// Ollama
	OllamaHost string
	EmbedModel string
	LLMModel   string

	// Embedding concurrency
	EmbedMaxConcurrent int

	// Upload limits
	MaxUploadBytes int64

	// Retrieval
	SearchTopN       int
	InsightsSections int
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8080"),

		PDFDir:   envOr("PDF_DIR", "pdfs"),
		IndexDir: envOr("INDEX_DIR", "indexes"),

		HeadingModelPath: envOr("HEADING_MODEL_PATH", "models/heading_model.json"),

		OllamaHost: os.Getenv("OLLAMA_HOST"),
		EmbedModel: envOr("EMBED_MODEL", "nomic-embed-text"),
		LLMModel:   envOr("LLM_MODEL", "llama3.1"),

		EmbedMaxConcurrent: envInt("EMBED_MAX_CONCURRENT", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 16777216), // 16MB

		SearchTopN:       envInt("SEARCH_TOP_N", 10),
		InsightsSections: envInt("INSIGHTS_SECTIONS", 15),
	}

	if cfg.EmbedMaxConcurrent <= 0 {
		cfg.EmbedMaxConcurrent = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 16777216
	}
	if cfg.SearchTopN <= 0 {
		cfg.SearchTopN = 10
	}
	if cfg.InsightsSections <= 0 {
		cfg.InsightsSections = 15
	}

	return cfg
}

func (c Config) Validate() error {
	if c.PDFDir == "" {
		return fmt.Errorf("PDF_DIR is required")
	}
	if c.IndexDir == "" {
		return fmt.Errorf("INDEX_DIR is required")
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("EMBED_MODEL is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
