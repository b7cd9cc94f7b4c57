package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/freelancer-ai/analysis-api/internal/catalog"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

var (
	titleColor   = color.New(color.FgMagenta, color.Bold)
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow)
	mutedColor   = color.New(color.Faint)
)

func printSuccess(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, format+"\n", args...)
}

func printDetect(w io.Writer, t model.ProjectType, label string, matched bool, scores []model.TypeScore) {
	titleColor.Fprintf(w, "%s (%s)\n", label, t)
	if !matched {
		warningColor.Fprintln(w, "Žádné klíčové slovo nenalezeno, použije se obecný plán")
	}
	for _, s := range scores {
		line := fmt.Sprintf("  %-12s %d", s.ProjectType, s.Score)
		if s.ProjectType == t && matched {
			successColor.Fprintln(w, line)
			continue
		}
		mutedColor.Fprintln(w, line)
	}
}

func printResult(w io.Writer, r *model.AnalysisResult) {
	titleColor.Fprintln(w, r.ProjectName)
	fmt.Fprintln(w, r.ProjectSummary)
	fmt.Fprintf(w, "Typ: %s  Složitost: %s  %s\n", r.ProjectType, r.Complexity, r.EstimatedDuration.Description)

	headerColor.Fprintln(w, "\nÚkoly")
	for _, t := range r.Tasks {
		fmt.Fprintf(w, "  %-8s %-45s %4dh  %s\n", t.ID, t.Title, t.EstimatedHours, t.Priority)
	}

	headerColor.Fprintln(w, "\nTým")
	for _, m := range r.SuggestedTeam {
		fmt.Fprintf(w, "  %-30s %-7s %4dh  %d-%d %s/h\n",
			m.Role, m.SeniorityLevel, m.EstimatedHours,
			m.EstimatedHourlyRate.Min, m.EstimatedHourlyRate.Max, m.EstimatedHourlyRate.Currency)
	}

	headerColor.Fprintln(w, "\nRozpočet")
	for _, item := range r.Budget.Breakdown {
		fmt.Fprintf(w, "  %-30s %10d %s  (%d %%)\n", item.Category, item.Amount, r.Budget.Currency, item.Percentage)
	}
	fmt.Fprintf(w, "  %-30s %10d %s\n", "Poplatek platformy", r.Budget.PlatformFee, r.Budget.Currency)
	successColor.Fprintf(w, "  %-30s %10d %s\n", "Celkem", r.Budget.Total, r.Budget.Currency)
	if r.Budget.Note != "" {
		mutedColor.Fprintf(w, "  %s\n", r.Budget.Note)
	}

	if len(r.Milestones) > 0 {
		headerColor.Fprintln(w, "\nMilníky")
		for _, ms := range r.Milestones {
			fmt.Fprintf(w, "  týden %-3d %s\n", ms.WeekNumber, ms.Title)
		}
	}

	if len(r.Risks) > 0 {
		headerColor.Fprintln(w, "\nRizika")
		for _, risk := range r.Risks {
			fmt.Fprintf(w, "  [%s] %s\n", risk.Severity, risk.Description)
		}
	}

	headerColor.Fprintln(w, "\nDoporučení")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
}

func printQuiz(w io.Writer, set catalog.QuestionSet) {
	titleColor.Fprintf(w, "%s (%s)\n", set.Label, set.ProjectType)
	if set.MarketInfo.Title != "" {
		mutedColor.Fprintf(w, "%s: %s, %s\n", set.MarketInfo.Title, set.MarketInfo.AverageBudget, set.MarketInfo.AverageTimeline)
	}

	for _, q := range set.Questions {
		kind := ""
		if q.Type == catalog.QuestionMulti {
			kind = " (více možností)"
		}
		headerColor.Fprintf(w, "\n%s%s\n", q.Question, kind)
		values := make([]string, 0, len(q.Options))
		for _, o := range q.Options {
			fmt.Fprintf(w, "  %-12s %s\n", o.Value, o.Label)
			values = append(values, o.Value)
		}
		mutedColor.Fprintf(w, "  %s: %s\n", q.ID, strings.Join(values, " | "))
	}
}
