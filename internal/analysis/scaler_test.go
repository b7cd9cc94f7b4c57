package analysis

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/freelancer-ai/analysis-api/internal/catalog"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

func mustTemplate(t *testing.T, typeKey model.ProjectType) model.Template {
	t.Helper()
	tpl, ok := catalog.Default().Template(typeKey)
	if !ok {
		t.Fatalf("template %s ausente", typeKey)
	}
	return tpl
}

func answers(pairs ...string) model.QuizAnswers {
	a := model.QuizAnswers{}
	for i := 0; i+1 < len(pairs); i += 2 {
		a[pairs[i]] = model.SingleAnswer(pairs[i+1])
	}
	return a
}

func TestScaleFactor(t *testing.T) {
	tests := []struct {
		cap  int
		want float64
	}{
		{30000, 0.25},
		{30001, 0.5},
		{80000, 0.5},
		{150000, 0.75},
		{300000, 1.0},
		{600000, 1.2},
	}
	for _, tt := range tests {
		if got := ScaleFactor(tt.cap); got != tt.want {
			t.Errorf("ScaleFactor(%d) = %v, want %v", tt.cap, got, tt.want)
		}
	}
}

func TestResolveScaleInputsTables(t *testing.T) {
	tests := []struct {
		budget, timeline, design string
		cap                      int
		timelineMult, designMult float64
	}{
		{"micro", "asap", "template", 30000, 0.6, 0.4},
		{"small", "normal", "basic", 80000, 1.0, 0.5},
		{"medium", "relaxed", "mvp", 150000, 1.2, 0.5},
		{"large", "flexible", "polished", 300000, 1.0, 1.0},
		{"enterprise", "normal", "premium", 600000, 1.0, 1.5},
	}
	for _, tt := range tests {
		in := ResolveScaleInputs(answers("budget", tt.budget, "timeline", tt.timeline, "designLevel", tt.design))
		if in.BudgetCap != tt.cap || in.TimelineMultiplier != tt.timelineMult || in.DesignMultiplier != tt.designMult {
			t.Errorf("%s/%s/%s: %+v", tt.budget, tt.timeline, tt.design, in)
		}
	}
}

func TestResolveScaleInputsDefaults(t *testing.T) {
	for _, a := range []model.QuizAnswers{nil, {}, answers("budget", "gigantic", "timeline", "yesterday", "designLevel", "??")} {
		in := ResolveScaleInputs(a)
		if in.BudgetCap != 150000 || in.ScaleFactor != 0.75 || in.TimelineMultiplier != 1.0 || in.DesignMultiplier != 1.0 {
			t.Errorf("ResolveScaleInputs(%v) = %+v", a, in)
		}
	}
}

func TestScaleMicroEcommerce(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeEcommerce)
	a := answers("budget", "micro", "timeline", "asap", "designLevel", "template")
	a["payments"] = model.MultiAnswer("gopay")

	res := ScaleProjectToQuiz(tpl, model.ProjectTypeEcommerce, a)

	if res.Budget.Total != 29549 {
		t.Errorf("total = %d, want 29549", res.Budget.Total)
	}
	if res.OverCap() {
		t.Error("micro budget should fit under the cap")
	}
	if res.Iterations != 1 {
		t.Errorf("iterations = %d, want 1", res.Iterations)
	}
	if res.Weeks != 2 {
		t.Errorf("weeks = %d, want 2", res.Weeks)
	}
	if res.Complexity != model.ComplexityLow {
		t.Errorf("complexity = %s, want low", res.Complexity)
	}
	if len(res.Team) != 2 {
		t.Fatalf("team size = %d, want 2", len(res.Team))
	}
	if res.Team[0].EstimatedHourlyRate.Min != 640 || res.Team[0].EstimatedHourlyRate.Max != 880 {
		t.Errorf("junior rate not applied: %+v", res.Team[0].EstimatedHourlyRate)
	}

	wantHours := []int{8, 8, 19, 17, 8}
	if len(res.Tasks) != len(wantHours) {
		t.Fatalf("tasks = %d, want %d", len(res.Tasks), len(wantHours))
	}
	for i, task := range res.Tasks {
		if task.EstimatedHours != wantHours[i] {
			t.Errorf("task %d hours = %d, want %d", i+1, task.EstimatedHours, wantHours[i])
		}
	}

	if len(res.Milestones) != 1 || res.Milestones[0].WeekNumber != 1 {
		t.Errorf("milestones = %+v", res.Milestones)
	}

	foundPayments := false
	for _, r := range res.Recommendations {
		if strings.Contains(r, "gopay") {
			foundPayments = true
		}
	}
	if !foundPayments {
		t.Errorf("missing payment recommendation in %v", res.Recommendations)
	}
	if len(res.Recommendations) != 5 {
		t.Errorf("recommendations = %d, want 5", len(res.Recommendations))
	}
}

func TestScaleEnterprisePremiumDesign(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeEcommerce)
	res := ScaleProjectToQuiz(tpl, model.ProjectTypeEcommerce, answers("budget", "enterprise", "designLevel", "premium"))

	if res.ScaleFactor != 1.2 {
		t.Fatalf("scale = %v", res.ScaleFactor)
	}
	if res.Iterations != 0 {
		t.Errorf("iterations = %d, want 0", res.Iterations)
	}
	if res.Complexity != tpl.Complexity {
		t.Errorf("complexity = %s, want template's %s", res.Complexity, tpl.Complexity)
	}
	if len(res.Tasks) != len(tpl.Tasks) {
		t.Fatalf("no task should be pruned at scale 1.2")
	}
	for i, task := range res.Tasks {
		orig := tpl.Tasks[i]
		if orig.Category != model.CategoryDesign {
			continue
		}
		want := int(math.Round(float64(orig.EstimatedHours) * 1.2 * 1.5))
		if task.EstimatedHours != want {
			t.Errorf("design task %s hours = %d, want %d", task.ID, task.EstimatedHours, want)
		}
	}
}

func TestScaleSmallBudgetPrunesTasks(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeSaaS)
	res := ScaleProjectToQuiz(tpl, model.ProjectTypeSaaS, answers("budget", "small"))

	for _, task := range res.Tasks {
		if task.Priority != model.PriorityHigh && task.Category != model.CategoryDesign {
			t.Errorf("task %q should have been pruned", task.Title)
		}
	}
	if len(res.Team) > 3 {
		t.Errorf("team = %d members, want at most 3", len(res.Team))
	}
}

func TestScaleRenumbersTaskIDs(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeMarketing)
	res := ScaleProjectToQuiz(tpl, model.ProjectTypeMarketing, answers("budget", "large"))
	for i, task := range res.Tasks {
		if want := fmt.Sprintf("task-%d", i+1); task.ID != want {
			t.Errorf("task[%d].ID = %s, want %s", i, task.ID, want)
		}
	}
}

func TestScaleEmptyAnswersUseDefaults(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeEcommerce)
	withNil := ScaleProjectToQuiz(tpl, model.ProjectTypeEcommerce, nil)
	withEmpty := ScaleProjectToQuiz(tpl, model.ProjectTypeEcommerce, model.QuizAnswers{})

	if !reflect.DeepEqual(withNil, withEmpty) {
		t.Fatal("nil and empty answers must scale identically")
	}
	if withNil.Budget.Total != 149148 || withNil.Iterations != 1 || withNil.Weeks != 2 {
		t.Errorf("unexpected default scaling: total=%d iterations=%d weeks=%d",
			withNil.Budget.Total, withNil.Iterations, withNil.Weeks)
	}
	if len(withNil.Team) != 5 {
		t.Errorf("team = %d, want 5", len(withNil.Team))
	}
}

func TestScaleDoesNotMutateTemplate(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeBlockchain)
	before := tpl.Clone()

	ScaleProjectToQuiz(tpl, model.ProjectTypeBlockchain, answers("budget", "micro", "designLevel", "premium"))

	if !reflect.DeepEqual(tpl, before) {
		t.Fatal("ScaleProjectToQuiz modified its template argument")
	}
	fresh := mustTemplate(t, model.ProjectTypeBlockchain)
	if !reflect.DeepEqual(fresh, before) {
		t.Fatal("catalog template changed after scaling")
	}
}

func TestScaleWithZeroWeekTemplate(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeGeneric)
	tpl.Weeks = 0
	res := ScaleProjectToQuiz(tpl, model.ProjectTypeGeneric, answers("budget", "medium"))
	if res.Weeks < minWeeks {
		t.Errorf("weeks = %d", res.Weeks)
	}
	for _, ms := range res.Milestones {
		if ms.WeekNumber > res.Weeks {
			t.Errorf("milestone %q at week %d beyond %d", ms.Title, ms.WeekNumber, res.Weeks)
		}
	}
}

func TestScaleSingleTaskTemplateKeepsMinimumWeeks(t *testing.T) {
	for _, typeKey := range []model.ProjectType{model.ProjectTypeGeneric, model.ProjectTypeEcommerce, model.ProjectTypeMobileApp} {
		t.Run(string(typeKey), func(t *testing.T) {
			tpl := mustTemplate(t, typeKey)
			tpl.Tasks = tpl.Tasks[:1]
			tpl.Team = tpl.Team[:1]

			res := ScaleProjectToQuiz(tpl, typeKey, answers("budget", "micro", "timeline", "asap"))

			if res.Weeks < minWeeks {
				t.Errorf("weeks = %d, want at least %d", res.Weeks, minWeeks)
			}
			if len(res.Team) != 1 {
				t.Fatalf("team = %d, want 1", len(res.Team))
			}
			if res.Team[0].EstimatedHours < minMemberHours {
				t.Errorf("member hours = %d", res.Team[0].EstimatedHours)
			}
			for _, task := range res.Tasks {
				if task.EstimatedHours < minShrunkTaskHours {
					t.Errorf("task %s hours = %d", task.ID, task.EstimatedHours)
				}
			}
			if res.Budget.Total < 0 {
				t.Errorf("total = %d", res.Budget.Total)
			}
		})
	}
}

func TestScaleSaaSMicroRespectsIterationBound(t *testing.T) {
	tpl := mustTemplate(t, model.ProjectTypeSaaS)
	res := ScaleProjectToQuiz(tpl, model.ProjectTypeSaaS, answers("budget", "micro"))

	if res.BudgetCap != 30000 {
		t.Fatalf("cap = %d, want 30000", res.BudgetCap)
	}
	if res.Iterations > MaxBudgetIterations {
		t.Errorf("iterations = %d, want at most %d", res.Iterations, MaxBudgetIterations)
	}
	if res.Budget.Total > 30000 && res.Iterations != MaxBudgetIterations {
		t.Errorf("total %d above cap after only %d iterations", res.Budget.Total, res.Iterations)
	}
	if res.OverCap() != (res.Budget.Total > res.BudgetCap) {
		t.Error("OverCap disagrees with the budget")
	}
}

var (
	budgetTiers = []interface{}{"micro", "small", "medium", "large", "enterprise", "unknown", ""}
	timelines   = []interface{}{"asap", "normal", "relaxed", "flexible", "", "later"}
	designs     = []interface{}{"template", "basic", "mvp", "custom", "polished", "premium", ""}
)

func genAnswers() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf(budgetTiers...),
		gen.OneConstOf(timelines...),
		gen.OneConstOf(designs...),
	).Map(func(values []interface{}) model.QuizAnswers {
		a := model.QuizAnswers{}
		keys := []string{model.QuizKeyBudget, model.QuizKeyTimeline, model.QuizKeyDesignLevel}
		for i, v := range values {
			if s := v.(string); s != "" {
				a[keys[i]] = model.SingleAnswer(s)
			}
		}
		return a
	})
}

func genType() gopter.Gen {
	types := make([]interface{}, 0, 7)
	for _, t := range catalog.Default().Types() {
		types = append(types, t)
	}
	return gen.OneConstOf(types...)
}

// Para qualquer template e respostas, os pisos de horas e semanas valem e o
// orçamento fica abaixo do teto ou o laço esgota as iterações.
func TestScaleProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("pisos de horas e semanas são respeitados", prop.ForAll(
		func(typeKey model.ProjectType, a model.QuizAnswers) bool {
			tpl, _ := catalog.Default().Template(typeKey)
			res := ScaleProjectToQuiz(tpl, typeKey, a)
			for _, task := range res.Tasks {
				if task.EstimatedHours < minShrunkTaskHours {
					return false
				}
			}
			for _, m := range res.Team {
				if m.EstimatedHours < minMemberHours {
					return false
				}
			}
			return res.Weeks >= minWeeks && res.Budget.Total >= 0
		},
		genType(), genAnswers(),
	))

	properties.Property("orçamento cabe no teto ou esgota as iterações", prop.ForAll(
		func(typeKey model.ProjectType, a model.QuizAnswers) bool {
			tpl, _ := catalog.Default().Template(typeKey)
			res := ScaleProjectToQuiz(tpl, typeKey, a)
			return res.Budget.Total <= res.BudgetCap || res.Iterations == MaxBudgetIterations
		},
		genType(), genAnswers(),
	))

	properties.Property("escala é determinística", prop.ForAll(
		func(typeKey model.ProjectType, a model.QuizAnswers) bool {
			tpl, _ := catalog.Default().Template(typeKey)
			first := ScaleProjectToQuiz(tpl, typeKey, a)
			second := ScaleProjectToQuiz(tpl, typeKey, a)
			return reflect.DeepEqual(first, second)
		},
		genType(), genAnswers(),
	))

	properties.Property("marcos nunca passam do prazo escalado", prop.ForAll(
		func(typeKey model.ProjectType, a model.QuizAnswers) bool {
			tpl, _ := catalog.Default().Template(typeKey)
			res := ScaleProjectToQuiz(tpl, typeKey, a)
			if len(res.Milestones) == 0 {
				return false
			}
			for _, ms := range res.Milestones {
				if ms.WeekNumber > res.Weeks {
					return false
				}
			}
			return len(res.Recommendations) <= maxRecommendations
		},
		genType(), genAnswers(),
	))

	properties.TestingRun(t)
}
