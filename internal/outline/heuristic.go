package outline

import (
	"sort"
	"strings"

	"github.com/AstikVerma/doclens/internal/layout"
)

// Heuristic classifies headings with font-size, boldness and word-count
// thresholds. It is deterministic and never fails; it serves standalone when
// no model is available and as the fallback when the model errors.
type Heuristic struct{}

// Name identifies this strategy in index metadata.
func (Heuristic) Name() string { return "heuristic" }

// Classify sorts features into reading order (page, then vertical position,
// ties kept in original block order) and applies the threshold rules. On the
// first page a block near the top with near-maximal font size becomes the
// title and is excluded from the outline; the first qualifying block wins.
func (Heuristic) Classify(features []layout.Feature) (Result, error) {
	sorted := make([]layout.Feature, len(features))
	copy(sorted, features)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PageIndex != sorted[j].PageIndex {
			return sorted[i].PageIndex < sorted[j].PageIndex
		}
		return sorted[i].YPos < sorted[j].YPos
	})

	var res Result
	titleFound := false
	for _, f := range sorted {
		if !titleFound && f.PageIndex == 0 && f.YPos < 0.1 && f.FontSizeRelDoc > 0.9 {
			res.Title = strings.TrimSpace(f.Text)
			titleFound = true
			continue
		}

		level := headingLevel(f)
		if level == LevelNone {
			continue
		}
		res.Outline = append(res.Outline, Entry{
			Level: level,
			Text:  f.Text,
			Page:  f.PageIndex + 1,
		})
	}
	return res, nil
}

func headingLevel(f layout.Feature) string {
	switch {
	case f.FontSizeRelDoc > 0.8 && f.Bold && f.NumWords <= 10:
		return LevelH1
	case f.FontSizeRelDoc > 0.6 && (f.Bold || f.NumWords <= 15):
		return LevelH2
	case f.FontSizeRelDoc > 0.5 && f.NumWords <= 20:
		return LevelH3
	default:
		return LevelNone
	}
}
