package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

// PostgresAnalysisStore guarda o histórico na tabela analyses
type PostgresAnalysisStore struct {
	db *sql.DB
}

// NewPostgresAnalysisStore cria um novo repositório de análises
func NewPostgresAnalysisStore(db *sql.DB) *PostgresAnalysisStore {
	return &PostgresAnalysisStore{db: db}
}

// Save insere ou substitui uma análise
func (r *PostgresAnalysisStore) Save(ctx context.Context, record model.AnalysisRecord) error {
	log := logger.Get(ctx)

	var answers []byte
	if record.QuizAnswers != nil {
		var err error
		answers, err = json.Marshal(record.QuizAnswers)
		if err != nil {
			return fmt.Errorf("erro ao serializar respostas: %w", err)
		}
	}

	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("erro ao serializar resultado: %w", err)
	}

	query := `
		INSERT INTO analyses (id, description, project_type, quiz_answers, fingerprint, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			description = EXCLUDED.description,
			project_type = EXCLUDED.project_type,
			quiz_answers = EXCLUDED.quiz_answers,
			fingerprint = EXCLUDED.fingerprint,
			result = EXCLUDED.result
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, record.Description, string(record.ProjectType),
		nullableJSON(answers), record.Fingerprint, result, record.CreatedAt)
	if err != nil {
		log.Error().Err(err).Str("analysis_id", record.ID).Msg("Erro ao salvar análise")
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	log.Debug().Str("analysis_id", record.ID).Msg("Análise salva")
	return nil
}

// Get busca uma análise pelo id
func (r *PostgresAnalysisStore) Get(ctx context.Context, id string) (model.AnalysisRecord, error) {
	query := `
		SELECT id, description, project_type, quiz_answers, fingerprint, result, created_at
		FROM analyses
		WHERE id = $1
	`

	var (
		record      model.AnalysisRecord
		projectType string
		answers     []byte
		result      []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Description, &projectType, &answers,
		&record.Fingerprint, &result, &record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AnalysisRecord{}, model.ErrAnalysisNotFound
	}
	if err != nil {
		return model.AnalysisRecord{}, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	record.ProjectType = model.ProjectType(projectType)
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &record.QuizAnswers); err != nil {
			return model.AnalysisRecord{}, fmt.Errorf("erro ao decodificar respostas: %w", err)
		}
	}
	record.Result = &model.AnalysisResult{}
	if err := json.Unmarshal(result, record.Result); err != nil {
		return model.AnalysisRecord{}, fmt.Errorf("erro ao decodificar resultado: %w", err)
	}
	return record, nil
}

// List retorna os resumos mais recentes, extraídos do JSONB do resultado
func (r *PostgresAnalysisStore) List(ctx context.Context, opts ListOptions) ([]model.AnalysisSummary, error) {
	opts = opts.normalize()

	query := `
		SELECT id,
			project_type,
			COALESCE(result->>'projectName', ''),
			COALESCE((result->'budget'->>'total')::int, 0),
			COALESCE((result->'estimatedDuration'->>'weeks')::int, 0),
			created_at
		FROM analyses
		WHERE ($1::text = '' OR project_type = $1::text)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, string(opts.ProjectType), opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var summaries []model.AnalysisSummary
	for rows.Next() {
		var (
			s           model.AnalysisSummary
			projectType string
		)
		if err := rows.Scan(&s.ID, &projectType, &s.ProjectName, &s.Total, &s.Weeks, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("erro ao ler análise: %w", err)
		}
		s.ProjectType = model.ProjectType(projectType)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Delete remove uma análise
func (r *PostgresAnalysisStore) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrAnalysisNotFound
	}
	return nil
}

// Count retorna o total de análises
func (r *PostgresAnalysisStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return n, nil
}

// Ping verifica a conexão
func (r *PostgresAnalysisStore) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return b
}
