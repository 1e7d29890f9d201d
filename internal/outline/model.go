package outline

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/AstikVerma/doclens/internal/layout"
)

// Artifact is the stored form of a heading model fitted elsewhere: the
// feature column schema it was trained against, one weight row plus
// intercept per class, and an optional class-index-to-level mapping.
type Artifact struct {
	FeatureNames []string          `json:"feature_names"`
	Weights      [][]float64       `json:"weights"`
	Intercepts   []float64         `json:"intercepts"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// fallbackLabels decodes class indices when the artifact stores no mapping.
var fallbackLabels = []string{LevelH1, LevelH2, LevelH3, LevelNone, LevelTitle}

// Model is the pretrained classification strategy. It scores each block
// against the stored linear weights and decodes the winning class into a
// heading level.
type Model struct {
	artifact Artifact
	columns  map[string]int
}

// LoadModel reads and validates a model artifact from disk.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("model artifact %s has no feature schema", path)
	}
	if len(a.Weights) == 0 || len(a.Intercepts) != len(a.Weights) {
		return nil, fmt.Errorf("model artifact %s has inconsistent weights", path)
	}
	for i, row := range a.Weights {
		if len(row) != len(a.FeatureNames) {
			return nil, fmt.Errorf("model artifact %s: class %d has %d weights, schema has %d columns",
				path, i, len(row), len(a.FeatureNames))
		}
	}
	columns := make(map[string]int, len(a.FeatureNames))
	for i, name := range a.FeatureNames {
		columns[name] = i
	}
	return &Model{artifact: a, columns: columns}, nil
}

// Name identifies this strategy in index metadata.
func (m *Model) Name() string { return "pretrained" }

// Classify encodes every feature row against the fitted schema (one-hot
// punctuation, missing columns zeroed, unexpected columns dropped, column
// order forced), scores it, and decodes the labels. Blocks labeled Title are
// space-joined into the title; None blocks are dropped; the rest become
// outline entries in block order.
func (m *Model) Classify(features []layout.Feature) (Result, error) {
	var res Result
	var titleParts []string
	for _, f := range features {
		row := m.encode(f)
		label, err := m.decode(argmax(m.score(row)))
		if err != nil {
			return Result{}, err
		}
		switch label {
		case LevelTitle:
			titleParts = append(titleParts, f.Text)
		case LevelNone:
			// dropped
		default:
			res.Outline = append(res.Outline, Entry{
				Level: label,
				Text:  f.Text,
				Page:  f.PageIndex + 1,
			})
		}
	}
	res.Title = strings.TrimSpace(strings.Join(titleParts, " "))
	return res, nil
}

// encode builds the aligned column vector for one feature. Columns the
// schema expects but the feature set lacks stay zero, which doubles as the
// constant imputation for missing values.
func (m *Model) encode(f layout.Feature) []float64 {
	values := map[string]float64{
		"font_size_relative_to_max_pdf":  f.FontSizeRelDoc,
		"font_size_relative_to_max_page": f.FontSizeRelPage,
		"is_bold":                        boolFeature(f.Bold),
		"is_underlined":                  boolFeature(f.Underlined),
		"num_words":                      float64(f.NumWords),
		"x_pos_relative":                 f.XPos,
		"y_pos_relative":                 f.YPos,
		"page_no":                        float64(f.PageIndex),
		"title_case_ratio":               f.TitleCaseRatio,
		"stopword_ratio":                 f.StopwordRatio,
		"space_above":                    f.SpaceAbove,
		"space_below":                    f.SpaceBelow,
		"punctuation_" + f.Punctuation:   1,
	}
	row := make([]float64, len(m.artifact.FeatureNames))
	for name, v := range values {
		idx, ok := m.columns[name]
		if !ok {
			continue // column the model was not fitted with
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		row[idx] = v
	}
	return row
}

func (m *Model) score(row []float64) []float64 {
	scores := make([]float64, len(m.artifact.Weights))
	for c, weights := range m.artifact.Weights {
		s := m.artifact.Intercepts[c]
		for i, w := range weights {
			s += w * row[i]
		}
		scores[c] = s
	}
	return scores
}

// decode maps a class index to a heading level using the stored label
// mapping, or the fixed fallback mapping when none is stored.
func (m *Model) decode(class int) (string, error) {
	if len(m.artifact.Labels) > 0 {
		label, ok := m.artifact.Labels[strconv.Itoa(class)]
		if !ok {
			return "", fmt.Errorf("model predicted unmapped class %d", class)
		}
		return label, nil
	}
	if class < 0 || class >= len(fallbackLabels) {
		return "", fmt.Errorf("model predicted class %d outside fallback mapping", class)
	}
	return fallbackLabels[class], nil
}

func argmax(scores []float64) int {
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return best
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
