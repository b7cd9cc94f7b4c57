package analysis

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/freelancer-ai/analysis-api/internal/catalog"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

const (
	// MinMeaningfulDescription é o tamanho mínimo (após trim) para tentar detectar o tipo
	MinMeaningfulDescription = 10
	maxQuizRisks             = 3

	genericProjectName    = "Webový projekt na míru"
	genericProjectSummary = "Na základě vašeho zadání navrhuji projekt pokrývající kompletní vývoj od UX návrhu přes implementaci až po nasazení. Řešení je optimalizované pro český trh."
)

// Analyzer gera análises simuladas a partir do catálogo de templates.
// É seguro para uso concorrente: não guarda estado mutável.
type Analyzer struct {
	catalog  *catalog.Catalog
	detector *Detector
}

// New cria um Analyzer sobre o catálogo informado
func New(c *catalog.Catalog) *Analyzer {
	return &Analyzer{
		catalog:  c,
		detector: NewDetector(c.Keywords()),
	}
}

var (
	defaultOnce     sync.Once
	defaultAnalyzer *Analyzer
)

// Default returns an Analyzer over the embedded catalog
func Default() *Analyzer {
	defaultOnce.Do(func() {
		defaultAnalyzer = New(catalog.Default())
	})
	return defaultAnalyzer
}

// GenerateMockAnalysis runs the default analyzer. answers == nil selects the
// unscaled path; any non-nil map, even empty, scales the template.
func GenerateMockAnalysis(description string, answers model.QuizAnswers) *model.AnalysisResult {
	return Default().Generate(description, answers)
}

// Detector exposes the keyword detector used by the analyzer
func (a *Analyzer) Detector() *Detector {
	return a.detector
}

// Catalog returns the catalog backing the analyzer
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog
}

// DetectProjectType returns the detected type, or false when nothing matched
func (a *Analyzer) DetectProjectType(description string) (model.ProjectType, bool) {
	return a.detector.Detect(description)
}

// Trace descreve o caminho que Generate seguiu
type Trace struct {
	ProjectType model.ProjectType
	// Matched é falso quando a descrição caiu no plano genérico
	Matched bool
	Scaled  bool
	Inputs  ScaleInputs
	// Iterations e OverCap vêm do laço de teto; zero sem questionário
	Iterations int
	OverCap    bool
}

// Generate produces the analysis for description. It never fails: short or
// unrecognised descriptions get the generic plan.
func (a *Analyzer) Generate(description string, answers model.QuizAnswers) *model.AnalysisResult {
	result, _ := a.GenerateTraced(description, answers)
	return result
}

// GenerateTraced is Generate plus the detection and scaling details of the run
func (a *Analyzer) GenerateTraced(description string, answers model.QuizAnswers) (*model.AnalysisResult, Trace) {
	generic := Trace{ProjectType: model.ProjectTypeGeneric}
	if utf8.RuneCountInString(strings.TrimSpace(description)) < MinMeaningfulDescription {
		return a.GenericAnalysis(description), generic
	}

	typeKey, ok := a.detector.Detect(description)
	if !ok {
		return a.GenericAnalysis(description), generic
	}

	tpl, ok := a.catalog.Template(typeKey)
	if !ok {
		return a.GenericAnalysis(description), generic
	}

	name := ProjectName(description, &tpl, typeKey)

	if answers != nil {
		scaled := ScaleProjectToQuiz(tpl, typeKey, answers)
		trace := Trace{
			ProjectType: typeKey,
			Matched:     true,
			Scaled:      true,
			Inputs:      scaled.ScaleInputs,
			Iterations:  scaled.Iterations,
			OverCap:     scaled.OverCap(),
		}
		return &model.AnalysisResult{
			ProjectName:    name,
			ProjectSummary: ScaledSummary(typeKey, answers, scaled.ScaleFactor),
			ProjectType:    typeKey,
			Complexity:     scaled.Complexity,
			EstimatedDuration: model.EstimatedDuration{
				Weeks:       scaled.Weeks,
				Description: durationText(scaled.Weeks, len(scaled.Team)),
			},
			Tasks:           scaled.Tasks,
			SuggestedTeam:   scaled.Team,
			Budget:          scaled.Budget,
			Milestones:      scaled.Milestones,
			Risks:           model.CloneRisks(tpl.Risks[:minInt(len(tpl.Risks), maxQuizRisks)]),
			Recommendations: scaled.Recommendations,
			QuizContext: &model.QuizContext{
				BudgetTier: answers.String(model.QuizKeyBudget),
				Timeline:   answers.String(model.QuizKeyTimeline),
				Answers:    answers.Clone(),
			},
		}, trace
	}

	return &model.AnalysisResult{
		ProjectName:    name,
		ProjectSummary: ProjectSummary(description, typeKey),
		ProjectType:    typeKey,
		Complexity:     tpl.Complexity,
		EstimatedDuration: model.EstimatedDuration{
			Weeks:       tpl.Weeks,
			Description: durationText(tpl.Weeks, len(tpl.Team)),
		},
		Tasks:           tpl.Tasks,
		SuggestedTeam:   tpl.Team,
		Budget:          CalculateBudget(tpl.Team, tpl.Tasks, tpl.Complexity),
		Milestones:      tpl.Milestones,
		Risks:           tpl.Risks,
		Recommendations: tpl.Recommendations,
	}, Trace{ProjectType: typeKey, Matched: true}
}

// GenericAnalysis returns the fixed plan used when no project type applies.
// The description does not influence it.
func (a *Analyzer) GenericAnalysis(description string) *model.AnalysisResult {
	tpl, ok := a.catalog.Template(model.ProjectTypeGeneric)
	if !ok {
		// o catálogo valida a presença do generic na carga
		panic("analysis: template generic ausente")
	}

	return &model.AnalysisResult{
		ProjectName:    genericProjectName,
		ProjectSummary: genericProjectSummary,
		ProjectType:    model.ProjectTypeGeneric,
		Complexity:     model.ComplexityMedium,
		EstimatedDuration: model.EstimatedDuration{
			Weeks:       tpl.Weeks,
			Description: durationText(tpl.Weeks, len(tpl.Team)),
		},
		Tasks:           tpl.Tasks,
		SuggestedTeam:   tpl.Team,
		Budget:          CalculateBudget(tpl.Team, tpl.Tasks, model.ComplexityMedium),
		Milestones:      tpl.Milestones,
		Risks:           tpl.Risks,
		Recommendations: tpl.Recommendations,
	}
}

func durationText(weeks, teamSize int) string {
	return fmt.Sprintf("Přibližně %d týdnů s %dčlenným týmem", weeks, teamSize)
}
