// Command indexer processes a directory of PDFs into index records from
// the shell, without running the HTTP server. With -query it also runs a
// similarity search against the resulting corpus.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/AstikVerma/doclens/internal/embedding"
	"github.com/AstikVerma/doclens/internal/index"
	"github.com/AstikVerma/doclens/internal/outline"
	"github.com/AstikVerma/doclens/internal/pipeline"
	"github.com/AstikVerma/doclens/internal/search"
)

func main() {
	pdfDir := flag.String("pdfs", "pdfs", "Directory of PDF files to process")
	indexDir := flag.String("index", "indexes", "Directory for index records")
	modelPath := flag.String("model", "models/heading_model.json", "Path to the heading classifier artifact")
	ollamaHost := flag.String("ollama", "", "Ollama host (default uses OLLAMA_HOST env var)")
	embedModel := flag.String("embed-model", "nomic-embed-text", "Ollama model for embeddings")
	maxConcurrent := flag.Int("max-concurrent", 3, "Maximum concurrent embedding requests")
	query := flag.String("query", "", "Optional similarity query to run after indexing")
	topN := flag.Int("top", search.DefaultTopN, "Number of similarity results to print")
	flag.Parse()

	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	ctx := context.Background()

	encoder, err := embedding.NewOllama(*ollamaHost, *embedModel)
	if err != nil {
		log.Error("embedding client init failed", "error", err)
		os.Exit(1)
	}

	store, err := index.NewStore(*indexDir)
	if err != nil {
		log.Error("index store init failed", "error", err)
		os.Exit(1)
	}

	classifier := outline.New(*modelPath, log)
	builder := index.NewBuilder(classifier, encoder, log, *maxConcurrent)
	runner := pipeline.NewRunner(builder, store, log)

	pdfs, err := listPDFs(*pdfDir)
	if err != nil {
		log.Error("list pdfs failed", "dir", *pdfDir, "error", err)
		os.Exit(1)
	}
	if len(pdfs) == 0 && *query == "" {
		log.Error("no PDF files found", "dir", *pdfDir)
		os.Exit(1)
	}

	if len(pdfs) > 0 {
		processed, err := runner.Run(ctx, pdfs)
		if err != nil {
			log.Error("processing run failed", "error", err)
			os.Exit(1)
		}
		log.Info("processing complete", "indexed", len(processed), "total", len(pdfs))
	}

	if *query == "" {
		return
	}

	corpus, err := store.LoadAll()
	if err != nil {
		log.Error("load indexes failed", "error", err)
		os.Exit(1)
	}
	results, err := search.NewEngine(encoder).Search(ctx, *query, corpus, *topN)
	if err != nil {
		log.Error("similarity search failed", "error", err)
		os.Exit(1)
	}

	for _, res := range results {
		fmt.Printf("%2d. [%.4f] %s / %s (page %d, %s)\n",
			res.Rank, res.SimilarityScore, res.Document, res.SectionTitle, res.PageNumber, res.Level)
	}
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
