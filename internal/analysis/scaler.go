package analysis

import (
	"fmt"
	"math"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// Tetos de orçamento em CZK por faixa do questionário
var budgetCaps = map[string]int{
	"micro":      30000,
	"small":      80000,
	"medium":     150000,
	"large":      300000,
	"enterprise": 600000,
}

var timelineMultipliers = map[string]float64{
	"asap":     0.6,
	"normal":   1.0,
	"relaxed":  1.2,
	"flexible": 1.0,
}

var designMultipliers = map[string]float64{
	"template": 0.4,
	"basic":    0.5,
	"mvp":      0.5,
	"custom":   1.0,
	"polished": 1.0,
	"premium":  1.5,
}

const (
	defaultBudgetTier = "medium"
	defaultTimeline   = "normal"
	defaultDesign     = "custom"
	defaultBudgetCap  = 150000

	// MaxBudgetIterations limita o laço de ajuste ao teto; o resultado pode ficar
	// acima do teto quando o limite é atingido.
	MaxBudgetIterations = 5

	minTaskHours       = 8
	minShrunkTaskHours = 4
	minMemberHours     = 8
	minWeeks           = 2
	hoursPerMemberWeek = 30
	juniorRateFactor   = 0.8
)

// ScaleFactor maps a budget cap to the scope multiplier
func ScaleFactor(budgetCap int) float64 {
	switch {
	case budgetCap <= 30000:
		return 0.25
	case budgetCap <= 80000:
		return 0.5
	case budgetCap <= 150000:
		return 0.75
	case budgetCap <= 300000:
		return 1.0
	default:
		return 1.2
	}
}

// ScaleInputs são os parâmetros resolvidos a partir das respostas
type ScaleInputs struct {
	BudgetTier         string
	BudgetCap          int
	ScaleFactor        float64
	TimelineMultiplier float64
	DesignMultiplier   float64
}

// ResolveScaleInputs applies the defaults for missing or unknown answers
func ResolveScaleInputs(answers model.QuizAnswers) ScaleInputs {
	budgetKey := answerOr(answers, model.QuizKeyBudget, defaultBudgetTier)
	timelineKey := answerOr(answers, model.QuizKeyTimeline, defaultTimeline)
	designKey := answerOr(answers, model.QuizKeyDesignLevel, defaultDesign)

	budgetCap, ok := budgetCaps[budgetKey]
	if !ok {
		budgetCap = defaultBudgetCap
	}
	timelineMult, ok := timelineMultipliers[timelineKey]
	if !ok {
		timelineMult = 1.0
	}
	designMult, ok := designMultipliers[designKey]
	if !ok {
		designMult = 1.0
	}

	return ScaleInputs{
		BudgetTier:         budgetKey,
		BudgetCap:          budgetCap,
		ScaleFactor:        ScaleFactor(budgetCap),
		TimelineMultiplier: timelineMult,
		DesignMultiplier:   designMult,
	}
}

func answerOr(answers model.QuizAnswers, key, fallback string) string {
	if v := answers.String(key); v != "" {
		return v
	}
	return fallback
}

// ScaleResult é o plano ajustado ao questionário
type ScaleResult struct {
	ScaleInputs
	Tasks           []model.Task
	Team            []model.TeamMember
	Budget          model.Budget
	Weeks           int
	Milestones      []model.Milestone
	Recommendations []string
	Complexity      model.Complexity
	// Iterations é quantas vezes o laço de teto reduziu as horas
	Iterations int
}

// OverCap reports whether the budget stayed above the cap after the loop
func (r ScaleResult) OverCap() bool {
	return r.Budget.Total > r.BudgetCap
}

// ScaleProjectToQuiz rescales a copy of tpl to the constraints in answers.
// tpl itself is never modified.
func ScaleProjectToQuiz(tpl model.Template, typeKey model.ProjectType, answers model.QuizAnswers) ScaleResult {
	in := ResolveScaleInputs(answers)
	scale := in.ScaleFactor

	// Horas das tasks: fator de escala e multiplicador de design nas tasks de design
	tasks := make([]model.Task, 0, len(tpl.Tasks))
	for i, t := range tpl.Tasks {
		mult := 1.0
		if t.Category == model.CategoryDesign {
			mult = in.DesignMultiplier
		}
		scaled := t.Clone()
		scaled.ID = fmt.Sprintf("task-%d", i+1)
		scaled.EstimatedHours = maxInt(roundInt(float64(t.EstimatedHours)*scale*mult), minTaskHours)
		tasks = append(tasks, scaled)
	}

	// Orçamentos pequenos mantêm só tasks de alta prioridade e de design
	if scale <= 0.5 {
		kept := tasks[:0]
		for _, t := range tasks {
			if t.Priority == model.PriorityHigh || t.Category == model.CategoryDesign {
				kept = append(kept, t)
			}
		}
		tasks = kept
	}

	rateMult := 1.0
	if scale <= 0.5 {
		rateMult = juniorRateFactor
	}

	team := make([]model.TeamMember, 0, len(tpl.Team))
	for _, m := range tpl.Team {
		hours := 0
		for _, t := range tasks {
			if m.WorksOn(t.ID) || m.HasSkill(t.Skills) {
				hours += t.EstimatedHours
			}
		}
		if hours == 0 {
			hours = roundInt(float64(m.EstimatedHours) * scale)
		}

		scaled := m.Clone()
		scaled.EstimatedHours = maxInt(hours, minMemberHours)
		scaled.EstimatedHourlyRate = model.HourlyRate{
			Min:      roundInt(float64(m.EstimatedHourlyRate.Min) * rateMult),
			Max:      roundInt(float64(m.EstimatedHourlyRate.Max) * rateMult),
			Currency: Currency,
		}
		team = append(team, scaled)
	}

	switch {
	case scale <= 0.25:
		team = team[:minInt(len(team), 2)]
	case scale <= 0.5:
		team = team[:minInt(len(team), 3)]
	}

	// Reduz as horas até caber no teto ou esgotar as iterações
	budget := CalculateBudget(team, tasks, tpl.Complexity)
	iterations := 0
	for budget.Total > in.BudgetCap && iterations < MaxBudgetIterations {
		iterations++
		ratio := float64(in.BudgetCap) / float64(budget.Total)
		for i := range team {
			team[i].EstimatedHours = maxInt(roundInt(float64(team[i].EstimatedHours)*ratio), minMemberHours)
		}
		for i := range tasks {
			tasks[i].EstimatedHours = maxInt(roundInt(float64(tasks[i].EstimatedHours)*ratio), minShrunkTaskHours)
		}
		budget = CalculateBudget(team, tasks, tpl.Complexity)
	}

	weeks := scaledWeeks(team, in.TimelineMultiplier)

	return ScaleResult{
		ScaleInputs:     in,
		Tasks:           tasks,
		Team:            team,
		Budget:          budget,
		Weeks:           weeks,
		Milestones:      scaleMilestones(tpl, scale, weeks),
		Recommendations: ScaledRecommendations(tpl, typeKey, answers, scale),
		Complexity:      scaledComplexity(tpl.Complexity, scale),
		Iterations:      iterations,
	}
}

func scaledWeeks(team []model.TeamMember, timelineMult float64) int {
	total := 0
	for _, m := range team {
		total += m.EstimatedHours
	}
	weeks := 0
	if capacity := len(team) * hoursPerMemberWeek; capacity > 0 {
		weeks = int(math.Ceil(float64(total) / float64(capacity)))
	}
	weeks = roundInt(float64(weeks) * timelineMult)
	return maxInt(weeks, minWeeks)
}

// scaleMilestones mantém os primeiros ceil(n*scale) marcos, sempre o primeiro,
// e reposiciona as semanas proporcionalmente ao novo prazo.
func scaleMilestones(tpl model.Template, scale float64, weeks int) []model.Milestone {
	keep := int(math.Ceil(float64(len(tpl.Milestones)) * scale))
	ratio := 1.0
	if tpl.Weeks > 0 {
		ratio = float64(weeks) / float64(tpl.Weeks)
	}

	out := make([]model.Milestone, 0, len(tpl.Milestones))
	for i, ms := range tpl.Milestones {
		if i >= keep && i != 0 {
			continue
		}
		scaled := ms.Clone()
		scaled.WeekNumber = minInt(roundInt(float64(ms.WeekNumber)*ratio), weeks)
		out = append(out, scaled)
	}
	return out
}

func scaledComplexity(original model.Complexity, scale float64) model.Complexity {
	switch {
	case scale <= 0.5:
		return model.ComplexityLow
	case scale >= 1.0:
		return original
	default:
		return model.ComplexityMedium
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
