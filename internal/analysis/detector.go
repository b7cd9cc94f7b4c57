package analysis

import (
	"strings"

	"github.com/freelancer-ai/analysis-api/internal/catalog"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

// Detector classifica descrições pelo peso das palavras-chave encontradas
type Detector struct {
	tables []catalog.TypeKeywords
}

// NewDetector cria um detector a partir das tabelas em ordem canônica.
// A ordem das tabelas define o desempate.
func NewDetector(tables []catalog.TypeKeywords) *Detector {
	return &Detector{tables: tables}
}

// Scores returns the accumulated weight per type, in table order
func (d *Detector) Scores(description string) []model.TypeScore {
	text := strings.ToLower(description)

	scores := make([]model.TypeScore, len(d.tables))
	for i, table := range d.tables {
		scores[i].ProjectType = table.Type
		for _, kw := range table.Keywords {
			if strings.Contains(text, kw.Term) {
				scores[i].Score += kw.Weight
			}
		}
	}
	return scores
}

// Detect returns the type with the strictly highest score. Ties keep the type
// seen first. ok is false when no keyword matched.
func (d *Detector) Detect(description string) (model.ProjectType, bool) {
	var (
		best      model.ProjectType
		bestScore int
	)
	for _, s := range d.Scores(description) {
		if s.Score > bestScore {
			best = s.ProjectType
			bestScore = s.Score
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return best, true
}
