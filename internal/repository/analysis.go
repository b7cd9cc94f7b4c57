package repository

import (
	"context"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

const (
	// DefaultListLimit é usado quando o chamador não informa limite
	DefaultListLimit = 20
	// MaxListLimit limita o tamanho de uma página do histórico
	MaxListLimit = 100
)

// ListOptions filtra a listagem do histórico
type ListOptions struct {
	Limit       int
	ProjectType model.ProjectType
}

// normalize aplica os limites padrão
func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	return o
}

// AnalysisStore persiste o histórico de análises.
// Get e Delete retornam model.ErrAnalysisNotFound para ids inexistentes.
type AnalysisStore interface {
	Save(ctx context.Context, record model.AnalysisRecord) error
	Get(ctx context.Context, id string) (model.AnalysisRecord, error)
	List(ctx context.Context, opts ListOptions) ([]model.AnalysisSummary, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
