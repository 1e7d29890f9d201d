// Package outline turns block features into a document title and an ordered
// outline of headings. Two strategies implement the same contract: a
// pretrained statistical model and deterministic heuristic rules. The model
// strategy falls back to the heuristics on any failure; the fallback is
// decided once per document and never surfaces as an error.
package outline

import (
	"log/slog"

	"github.com/AstikVerma/doclens/internal/layout"
)

// Heading levels.
const (
	LevelTitle = "Title"
	LevelH1    = "H1"
	LevelH2    = "H2"
	LevelH3    = "H3"
	LevelNone  = "None"
)

// Entry is one detected heading. Page is 1-based.
type Entry struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Result is a classified document: the title (possibly empty) and the
// outline in reading order, title excluded.
type Result struct {
	Title   string
	Outline []Entry
}

// Strategy classifies block features into a title and outline.
type Strategy interface {
	Name() string
	Classify(features []layout.Feature) (Result, error)
}

// Classifier selects the model strategy when a model artifact is available
// and substitutes the heuristic strategy on any model failure.
type Classifier struct {
	model     Strategy
	heuristic Strategy
	log       *slog.Logger
}

// New builds a Classifier. When modelPath is empty or the artifact cannot
// be loaded, only the heuristic strategy is used; a load failure is logged,
// never returned.
func New(modelPath string, log *slog.Logger) *Classifier {
	c := &Classifier{heuristic: Heuristic{}, log: log}
	if modelPath == "" {
		return c
	}
	model, err := LoadModel(modelPath)
	if err != nil {
		log.Warn("heading model unavailable, using heuristics", "path", modelPath, "error", err)
		return c
	}
	log.Info("loaded pretrained heading model", "path", modelPath)
	c.model = model
	return c
}

// Classify runs the preferred strategy and returns the result together with
// the name of the strategy that actually produced it.
func (c *Classifier) Classify(features []layout.Feature) (Result, string) {
	if c.model != nil {
		res, err := c.model.Classify(features)
		if err == nil {
			return res, c.model.Name()
		}
		c.log.Warn("model classification failed, falling back to heuristics", "error", err)
	}
	res, _ := c.heuristic.Classify(features)
	return res, c.heuristic.Name()
}
