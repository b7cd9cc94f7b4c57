package analysis

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/freelancer-ai/analysis-api/internal/catalog"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

func TestGenerateGenericForShortOrUnknown(t *testing.T) {
	for _, desc := range []string{
		"",
		"   e-shop  ",
		"Potřebuji jednoduchý web pro naši kavárnu s menu a kontaktem",
		"Chci vytvořit aplikaci pro správu rezervací v kadeřnictví.",
	} {
		res := GenerateMockAnalysis(desc, nil)
		if res.ProjectType != model.ProjectTypeGeneric {
			t.Errorf("%q: type = %s, want generic", desc, res.ProjectType)
		}
		if res.ProjectName != genericProjectName || res.ProjectSummary != genericProjectSummary {
			t.Errorf("%q: unexpected generic narrative %q", desc, res.ProjectName)
		}
		if len(res.Tasks) != 5 || len(res.SuggestedTeam) != 4 {
			t.Errorf("%q: generic plan has %d tasks and %d members", desc, len(res.Tasks), len(res.SuggestedTeam))
		}
		if res.Complexity != model.ComplexityMedium {
			t.Errorf("%q: complexity = %s", desc, res.Complexity)
		}
		if res.Budget.Total != 273456 {
			t.Errorf("%q: total = %d, want 273456", desc, res.Budget.Total)
		}
		if res.QuizContext != nil {
			t.Errorf("%q: generic analysis must not carry quiz context", desc)
		}
	}
}

func TestGenerateGenericIgnoresAnswers(t *testing.T) {
	a := answers("budget", "micro")
	res := GenerateMockAnalysis("krátký", a)
	if res.ProjectType != model.ProjectTypeGeneric || res.Budget.Total != 273456 {
		t.Errorf("short description with answers: %+v", res.Budget)
	}
}

func TestGenerateUnscaledTemplate(t *testing.T) {
	res := GenerateMockAnalysis("Potřebuji e-shop s GoPay platbou a Zásilkovnou", nil)
	tpl := mustTemplate(t, model.ProjectTypeEcommerce)

	if res.ProjectType != model.ProjectTypeEcommerce {
		t.Fatalf("type = %s", res.ProjectType)
	}
	if res.ProjectName != "E-shop: GoPay platbou a" {
		t.Errorf("name = %q", res.ProjectName)
	}
	if !reflect.DeepEqual(res.Tasks, tpl.Tasks) || !reflect.DeepEqual(res.SuggestedTeam, tpl.Team) {
		t.Error("unscaled analysis must reuse the template plan")
	}
	if res.EstimatedDuration.Weeks != tpl.Weeks {
		t.Errorf("weeks = %d, want %d", res.EstimatedDuration.Weeks, tpl.Weeks)
	}
	if res.EstimatedDuration.Description != "Přibližně 8 týdnů s 5členným týmem" {
		t.Errorf("duration = %q", res.EstimatedDuration.Description)
	}
	if !reflect.DeepEqual(res.Budget, CalculateBudget(tpl.Team, tpl.Tasks, tpl.Complexity)) {
		t.Error("budget differs from the template calculation")
	}
	if res.QuizContext != nil {
		t.Error("unscaled analysis must not carry quiz context")
	}
}

func TestGenerateScaledCarriesQuizContext(t *testing.T) {
	a := answers("budget", "micro", "timeline", "asap", "designLevel", "template")
	a["payments"] = model.MultiAnswer("gopay")

	res := GenerateMockAnalysis("Potřebuji e-shop s GoPay platbou a Zásilkovnou", a)

	if res.QuizContext == nil {
		t.Fatal("missing quiz context")
	}
	if res.QuizContext.BudgetTier != "micro" || res.QuizContext.Timeline != "asap" {
		t.Errorf("quiz context = %+v", res.QuizContext)
	}
	if res.Budget.Total != 29549 {
		t.Errorf("total = %d, want 29549", res.Budget.Total)
	}
	if len(res.Risks) > maxQuizRisks {
		t.Errorf("risks = %d, want at most %d", len(res.Risks), maxQuizRisks)
	}
	if res.EstimatedDuration.Description != "Přibližně 2 týdnů s 2členným týmem" {
		t.Errorf("duration = %q", res.EstimatedDuration.Description)
	}

	a["budget"] = model.SingleAnswer("enterprise")
	if res.QuizContext.BudgetTier != "micro" || res.QuizContext.Answers.String("budget") != "micro" {
		t.Error("quiz context shares the caller's answers map")
	}
}

func TestGenerateEmptyAnswersStillScale(t *testing.T) {
	desc := "Potřebuji e-shop s GoPay platbou a Zásilkovnou"
	res := GenerateMockAnalysis(desc, model.QuizAnswers{})
	if res.QuizContext == nil {
		t.Fatal("empty answers must take the scaled path")
	}
	if res.Budget.Total != 149148 {
		t.Errorf("total = %d, want 149148", res.Budget.Total)
	}
}

func TestGenerateTracedReportsScaling(t *testing.T) {
	a := Default()
	desc := "Potřebuji e-shop s GoPay platbou a Zásilkovnou"
	quiz := answers("budget", "micro", "timeline", "asap", "designLevel", "template")
	quiz["payments"] = model.MultiAnswer("gopay")

	res, trace := a.GenerateTraced(desc, quiz)
	if !reflect.DeepEqual(res, a.Generate(desc, quiz)) {
		t.Fatal("GenerateTraced and Generate disagree")
	}
	if trace.ProjectType != model.ProjectTypeEcommerce || !trace.Matched || !trace.Scaled {
		t.Fatalf("trace = %+v", trace)
	}
	if trace.Inputs.BudgetCap != 30000 || trace.Iterations != 1 || trace.OverCap {
		t.Errorf("scaling trace = %+v", trace)
	}
	if res.Budget.Total != 29549 {
		t.Errorf("total = %d, want 29549", res.Budget.Total)
	}

	_, unscaled := a.GenerateTraced(desc, nil)
	if !unscaled.Matched || unscaled.Scaled || unscaled.Iterations != 0 {
		t.Errorf("unscaled trace = %+v", unscaled)
	}

	_, generic := a.GenerateTraced("krátký", quiz)
	if generic.Matched || generic.Scaled || generic.ProjectType != model.ProjectTypeGeneric {
		t.Errorf("generic trace = %+v", generic)
	}
}

func TestGenerateResultsAreIsolated(t *testing.T) {
	desc := "Multi-tenant SaaS s předplatným a dashboardem"
	first := GenerateMockAnalysis(desc, nil)
	first.Tasks[0].Title = "mexido"
	first.SuggestedTeam[0].RequiredSkills[0] = "mexido"
	first.Recommendations[0] = "mexido"

	second := GenerateMockAnalysis(desc, nil)
	if second.Tasks[0].Title == "mexido" || second.SuggestedTeam[0].RequiredSkills[0] == "mexido" || second.Recommendations[0] == "mexido" {
		t.Fatal("mutating a result leaked into the catalog")
	}
}

func TestAnalyzerOverCustomCatalog(t *testing.T) {
	a := New(catalog.Default())
	if got, ok := a.DetectProjectType("chatbot s LLM"); !ok || got != model.ProjectTypeAIML {
		t.Errorf("detect = %s, %v", got, ok)
	}
	if a.Catalog() != catalog.Default() {
		t.Error("catalog accessor")
	}
}

// Para qualquer descrição a análise é determinística e respeita a escolha
// entre caminho escalado e não escalado.
func TestGenerateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	prompts := make([]interface{}, 0)
	for _, e := range catalog.Default().Examples() {
		prompts = append(prompts, e.Prompt)
	}
	prompts = append(prompts, "", "web", "Potřebuji jednoduchý web pro naši kavárnu s menu a kontaktem")

	properties.Property("mesma entrada gera o mesmo resultado", prop.ForAll(
		func(desc string, a model.QuizAnswers) bool {
			return reflect.DeepEqual(GenerateMockAnalysis(desc, a), GenerateMockAnalysis(desc, a))
		},
		gen.OneConstOf(prompts...), genAnswers(),
	))

	properties.Property("texto arbitrário nunca falha", prop.ForAll(
		func(desc string) bool {
			res := GenerateMockAnalysis(desc, nil)
			return res != nil && res.ProjectType.Valid() && len(res.Tasks) > 0 && res.Budget.Total > 0
		},
		gen.AnyString(),
	))

	properties.Property("contexto do quiz só existe no caminho escalado", prop.ForAll(
		func(desc string, a model.QuizAnswers) bool {
			res := GenerateMockAnalysis(desc, a)
			if res.ProjectType == model.ProjectTypeGeneric {
				return res.QuizContext == nil
			}
			return res.QuizContext != nil && len(res.Recommendations) <= maxRecommendations
		},
		gen.OneConstOf(prompts...), genAnswers(),
	))

	properties.TestingRun(t)
}
