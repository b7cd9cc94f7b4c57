package repository

import (
	"context"
	"sync"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

// MemoryAnalysisStore mantém o histórico em memória com capacidade fixa.
// Ao atingir o limite, a análise mais antiga é descartada.
type MemoryAnalysisStore struct {
	mu      sync.RWMutex
	limit   int
	order   []string
	records map[string]model.AnalysisRecord
}

// NewMemoryAnalysisStore cria um store com capacidade limit (<= 0 usa 500)
func NewMemoryAnalysisStore(limit int) *MemoryAnalysisStore {
	if limit <= 0 {
		limit = 500
	}
	return &MemoryAnalysisStore{
		limit:   limit,
		records: make(map[string]model.AnalysisRecord),
	}
}

// Save armazena uma cópia do registro
func (s *MemoryAnalysisStore) Save(ctx context.Context, record model.AnalysisRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	record = cloneRecord(record)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = record

	for len(s.order) > s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.records, oldest)
		logger.Get(ctx).Debug().Str("evicted_id", oldest).Msg("Histórico cheio, análise mais antiga descartada")
	}
	return nil
}

// Get retorna uma cópia do registro
func (s *MemoryAnalysisStore) Get(ctx context.Context, id string) (model.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return model.AnalysisRecord{}, model.ErrAnalysisNotFound
	}
	return cloneRecord(record), nil
}

// List retorna as análises mais recentes primeiro
func (s *MemoryAnalysisStore) List(ctx context.Context, opts ListOptions) ([]model.AnalysisSummary, error) {
	opts = opts.normalize()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AnalysisSummary, 0, opts.Limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < opts.Limit; i-- {
		record := s.records[s.order[i]]
		if opts.ProjectType != "" && record.ProjectType != opts.ProjectType {
			continue
		}
		out = append(out, record.Summary())
	}
	return out, nil
}

// Delete remove o registro
func (s *MemoryAnalysisStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return model.ErrAnalysisNotFound
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count retorna quantas análises estão guardadas
func (s *MemoryAnalysisStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Ping sempre funciona para o store em memória
func (s *MemoryAnalysisStore) Ping(ctx context.Context) error {
	return nil
}

func cloneRecord(r model.AnalysisRecord) model.AnalysisRecord {
	r.QuizAnswers = r.QuizAnswers.Clone()
	r.Result = r.Result.Clone()
	return r
}
