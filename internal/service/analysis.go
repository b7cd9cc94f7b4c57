package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freelancer-ai/analysis-api/internal/analysis"
	"github.com/freelancer-ai/analysis-api/internal/cache"
	"github.com/freelancer-ai/analysis-api/internal/catalog"
	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/metrics"
	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/repository"
	"github.com/freelancer-ai/analysis-api/internal/websocket"
)

// Etapas publicadas durante uma análise
const (
	StageDetecting  = "detecting"
	StageMatching   = "matching"
	StageScaling    = "scaling"
	StageBudgeting  = "budgeting"
	StageFinalizing = "finalizing"
	StageCompleted  = "completed"
)

type stage struct {
	name    string
	message string
}

// Mensagens exibidas ao cliente em cada etapa
var stages = []stage{
	{StageDetecting, "Analyzuji požadavky..."},
	{StageMatching, "Identifikuji potřebné dovednosti..."},
	{StageScaling, "Sestavuji harmonogram..."},
	{StageBudgeting, "Kalkuluji rozpočet..."},
	{StageFinalizing, "Hledám nejlepší freelancery..."},
	{StageCompleted, "Analýza dokončena"},
}

// delayedStages são as etapas entre as quais o atraso artificial é dividido
const delayedStages = 5

const asyncTimeout = 2 * time.Minute

// ProgressNotifier recebe as etapas de uma análise
type ProgressNotifier interface {
	SendProgress(sessionID string, update websocket.StageUpdate)
}

// AnalysisOptions configura o AnalysisService
type AnalysisOptions struct {
	Delay                time.Duration
	CacheTTL             time.Duration
	MinDescriptionLength int
	MaxDescriptionLength int
	// AllowPrivateWebhooks libera webhooks para localhost e redes internas
	AllowPrivateWebhooks bool
}

// AnalyzeInput é uma solicitação de análise já decodificada
type AnalyzeInput struct {
	Description string
	Answers     model.QuizAnswers
	SessionID   string
}

// AnalyzeOutput é o registro salvo e se veio do cache
type AnalyzeOutput struct {
	Record model.AnalysisRecord
	Cached bool
}

// AnalysisService orquestra detecção, escala, histórico e notificações
type AnalysisService struct {
	analyzer *analysis.Analyzer
	store    repository.AnalysisStore
	cache    *cache.Cache[string]
	notifier ProgressNotifier
	webhook  *WebhookService
	excel    *ExcelGenerator
	opts     AnalysisOptions

	now   func() time.Time
	newID func() string
	wg    sync.WaitGroup
}

// NewAnalysisService cria o serviço; notifier pode ser nil
func NewAnalysisService(analyzer *analysis.Analyzer, store repository.AnalysisStore, notifier ProgressNotifier, opts AnalysisOptions) *AnalysisService {
	if opts.MaxDescriptionLength <= 0 {
		opts.MaxDescriptionLength = 5000
	}
	return &AnalysisService{
		analyzer: analyzer,
		store:    store,
		cache:    cache.New[string](opts.CacheTTL),
		notifier: notifier,
		webhook:  NewWebhookService(opts.AllowPrivateWebhooks),
		excel:    NewExcelGenerator(),
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Catalog expõe o catálogo usado pelo analisador
func (s *AnalysisService) Catalog() *catalog.Catalog {
	return s.analyzer.Catalog()
}

// AllowPrivateWebhooks indica se webhook_url pode apontar para redes internas
func (s *AnalysisService) AllowPrivateWebhooks() bool {
	return s.opts.AllowPrivateWebhooks
}

// Store expõe o armazenamento do histórico
func (s *AnalysisService) Store() repository.AnalysisStore {
	return s.store
}

// CacheStats retorna as estatísticas do cache de resultados
func (s *AnalysisService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Validate aplica os limites de tamanho e valida as respostas do questionário
func (s *AnalysisService) Validate(input AnalyzeInput) error {
	n := utf8.RuneCountInString(strings.TrimSpace(input.Description))
	if n < s.opts.MinDescriptionLength {
		return fmt.Errorf("%w: minimálně %d znaků", model.ErrDescriptionTooShort, s.opts.MinDescriptionLength)
	}
	if n > s.opts.MaxDescriptionLength {
		return fmt.Errorf("%w: maximálně %d znaků", model.ErrDescriptionTooLong, s.opts.MaxDescriptionLength)
	}

	if input.Answers == nil {
		return nil
	}
	typeKey, ok := s.analyzer.DetectProjectType(input.Description)
	if !ok {
		typeKey = model.ProjectTypeGeneric
	}
	return s.Catalog().ValidateAnswers(typeKey, input.Answers)
}

// Detect retorna o tipo detectado e a pontuação de cada tipo
func (s *AnalysisService) Detect(description string) model.DetectResponse {
	typeKey, ok := s.analyzer.DetectProjectType(description)
	if !ok {
		typeKey = model.ProjectTypeGeneric
	}
	return model.DetectResponse{
		ProjectType: typeKey,
		Label:       s.Catalog().Label(typeKey),
		Matched:     ok,
		Scores:      s.analyzer.Detector().Scores(description),
	}
}

// Analyze executa a análise de forma síncrona
func (s *AnalysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error) {
	if err := s.Validate(input); err != nil {
		return nil, err
	}
	return s.run(ctx, s.newID(), input)
}

// AnalyzeAsync valida a entrada, devolve o id da análise e entrega o resultado
// ao webhook quando terminar
func (s *AnalysisService) AnalyzeAsync(ctx context.Context, input AnalyzeInput, webhookURL string) (string, error) {
	if err := s.Validate(input); err != nil {
		return "", err
	}

	id := s.newID()
	bg := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		runCtx, cancel := context.WithTimeout(logger.WithAnalysisID(bg, id), asyncTimeout)
		defer cancel()

		out, err := s.run(runCtx, id, input)
		if err != nil {
			logger.Get(runCtx).Error().Err(err).Msg("Análise assíncrona falhou")
			if werr := s.webhook.SendError(runCtx, webhookURL, id, err); werr != nil {
				logger.Get(runCtx).Error().Err(werr).Msg("Erro ao notificar webhook")
			}
			return
		}
		if werr := s.webhook.SendResult(runCtx, webhookURL, out.Record); werr != nil {
			logger.Get(runCtx).Error().Err(werr).Msg("Erro ao enviar resultado ao webhook")
		}
	}()

	return id, nil
}

// Wait bloqueia até as análises assíncronas terminarem ou ctx expirar
func (s *AnalysisService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close libera o cache
func (s *AnalysisService) Close() {
	s.cache.Stop()
}

func (s *AnalysisService) run(ctx context.Context, id string, input AnalyzeInput) (*AnalyzeOutput, error) {
	start := s.now()
	fingerprint := Fingerprint(input.Description, input.Answers)
	ctx = logger.WithSessionID(ctx, input.SessionID)

	if cachedID, ok := s.cache.Get(fingerprint); ok {
		record, err := s.store.Get(ctx, cachedID)
		if err == nil {
			logger.Get(ctx).Debug().Str("analysis_id", cachedID).Msg("Análise servida do cache")
			metrics.Get().IncrementCacheHit()
			s.notify(input.SessionID, cachedID, len(stages)-1)
			return &AnalyzeOutput{Record: record, Cached: true}, nil
		}
		s.cache.Delete(fingerprint)
	}

	ctx = logger.WithAnalysisID(ctx, id)
	log := logger.Get(ctx)
	log.Info().
		Int("description_length", utf8.RuneCountInString(input.Description)).
		Bool("quiz", input.Answers != nil).
		Msg("Iniciando análise")

	stepDelay := s.opts.Delay / delayedStages
	// o núcleo é puro e roda uma vez; as etapas só espaçam o progresso
	result, trace := s.analyzer.GenerateTraced(input.Description, input.Answers)

	for step := 0; step < delayedStages; step++ {
		s.notify(input.SessionID, id, step)

		switch stages[step].name {
		case StageDetecting:
			log.Debug().Str("project_type", string(trace.ProjectType)).Bool("matched", trace.Matched).Msg("Tipo de projeto detectado")
		case StageScaling:
			logScaling(log, trace)
		}

		if err := sleepCtx(ctx, stepDelay); err != nil {
			metrics.Get().IncrementAnalysisCanceled()
			log.Warn().Str("stage", stages[step].name).Msg("Análise cancelada")
			return nil, fmt.Errorf("%w: %v", model.ErrCanceled, err)
		}
	}

	record := model.AnalysisRecord{
		ID:          id,
		Description: input.Description,
		ProjectType: result.ProjectType,
		QuizAnswers: input.Answers.Clone(),
		Fingerprint: fingerprint,
		Result:      result,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.store.Save(ctx, record); err != nil {
		logger.AuditAnalysis(ctx, logger.AuditActionAnalysisCreate, id, err, nil)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", model.ErrCanceled, err)
		}
		return nil, err
	}
	s.cache.Set(fingerprint, id)

	latency := s.now().Sub(start).Milliseconds()
	metrics.Get().RecordAnalysis(string(result.ProjectType), trace.Scaled, trace.OverCap, latency)
	logger.AuditAnalysis(ctx, logger.AuditActionAnalysisCreate, id, nil, map[string]interface{}{
		"project_type": result.ProjectType,
		"total":        result.Budget.Total,
		"weeks":        result.EstimatedDuration.Weeks,
	})

	s.notify(input.SessionID, id, len(stages)-1)

	log.Info().
		Str("project_type", string(result.ProjectType)).
		Int("total", result.Budget.Total).
		Int64("duration_ms", latency).
		Msg("Análise concluída")

	return &AnalyzeOutput{Record: record}, nil
}

// logScaling registra os parâmetros de escala e o resultado do laço de teto
func logScaling(log *zerolog.Logger, trace analysis.Trace) {
	if !trace.Scaled {
		log.Debug().Msg("Sem questionário, template usado sem escala")
		return
	}
	log.Debug().
		Str("budget_tier", trace.Inputs.BudgetTier).
		Int("budget_cap", trace.Inputs.BudgetCap).
		Float64("scale_factor", trace.Inputs.ScaleFactor).
		Float64("timeline_multiplier", trace.Inputs.TimelineMultiplier).
		Float64("design_multiplier", trace.Inputs.DesignMultiplier).
		Int("iterations", trace.Iterations).
		Bool("over_cap", trace.OverCap).
		Msg("Parâmetros de escala")
}

func (s *AnalysisService) notify(sessionID, analysisID string, step int) {
	if s.notifier == nil || sessionID == "" {
		return
	}
	st := stages[step]
	s.notifier.SendProgress(sessionID, websocket.StageUpdate{
		AnalysisID: analysisID,
		Stage:      st.name,
		Step:       step + 1,
		TotalSteps: len(stages),
		Message:    st.message,
	})
}

// sleepCtx espera d ou até ctx ser cancelado
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get busca uma análise do histórico
func (s *AnalysisService) Get(ctx context.Context, id string) (model.AnalysisRecord, error) {
	return s.store.Get(ctx, id)
}

// List lista as análises mais recentes
func (s *AnalysisService) List(ctx context.Context, opts repository.ListOptions) ([]model.AnalysisSummary, error) {
	return s.store.List(ctx, opts)
}

// Delete remove a análise do histórico e do cache
func (s *AnalysisService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	logger.AuditAnalysis(ctx, logger.AuditActionAnalysisDelete, id, err, nil)
	if err != nil {
		return err
	}
	s.cache.DeleteFunc(func(v string) bool { return v == id })
	return nil
}

// Export gera a planilha de uma análise salva
func (s *AnalysisService) Export(ctx context.Context, id string) (*bytes.Buffer, string, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}

	buf, err := s.excel.Generate(record.Result)
	metrics.Get().IncrementExport(err == nil)
	logger.AuditAnalysis(ctx, logger.AuditActionAnalysisExport, id, err, nil)
	if err != nil {
		return nil, "", fmt.Errorf("gerar export: %w", err)
	}

	return buf, ExportFilename(record), nil
}

// ExportFilename monta o nome do arquivo xlsx
func ExportFilename(record model.AnalysisRecord) string {
	short := record.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("analyza-%s-%s.xlsx", record.ProjectType, short)
}

// Template retorna uma cópia do template do tipo
func (s *AnalysisService) Template(t model.ProjectType) (model.Template, error) {
	if !t.Valid() {
		return model.Template{}, fmt.Errorf("%w: %s", model.ErrUnknownProjectType, t)
	}
	tpl, ok := s.Catalog().Template(t)
	if !ok {
		return model.Template{}, fmt.Errorf("%w: %s", model.ErrUnknownProjectType, t)
	}
	return tpl, nil
}

// Questions retorna o questionário de um tipo
func (s *AnalysisService) Questions(t model.ProjectType) (catalog.QuestionSet, error) {
	if !t.Valid() {
		return catalog.QuestionSet{}, fmt.Errorf("%w: %s", model.ErrUnknownProjectType, t)
	}
	return s.Catalog().QuestionsForType(t), nil
}
