package catalog

import (
	"errors"
	"fmt"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// Validate checks the loaded data for consistency: every enum value is known,
// task ids follow the task-N positional scheme and every reference resolves
// within its own template.
func (c *Catalog) Validate() error {
	var errs []error

	if _, ok := c.templates[model.ProjectTypeGeneric]; !ok {
		errs = append(errs, errors.New("template generic ausente"))
	}

	seen := make(map[model.ProjectType]bool)
	for _, tk := range c.keywords {
		if tk.Type == model.ProjectTypeGeneric || !tk.Type.Valid() {
			errs = append(errs, fmt.Errorf("keywords: tipo inválido %q", tk.Type))
			continue
		}
		if seen[tk.Type] {
			errs = append(errs, fmt.Errorf("keywords: tipo %s repetido", tk.Type))
		}
		seen[tk.Type] = true
		if _, ok := c.templates[tk.Type]; !ok {
			errs = append(errs, fmt.Errorf("keywords: tipo %s sem template", tk.Type))
		}
		for _, kw := range tk.Keywords {
			if kw.Term == "" || kw.Weight <= 0 {
				errs = append(errs, fmt.Errorf("keywords %s: termo %q com peso %d", tk.Type, kw.Term, kw.Weight))
			}
		}
	}

	for key, tpl := range c.templates {
		if err := ValidateTemplate(tpl); err != nil {
			errs = append(errs, fmt.Errorf("template %s: %w", key, err))
		}
	}

	if err := c.validateQuiz(); err != nil {
		errs = append(errs, err)
	}

	for _, e := range c.examples {
		if !e.ProjectType.Valid() {
			errs = append(errs, fmt.Errorf("example %s: tipo inválido %q", e.ID, e.ProjectType))
		}
	}

	return errors.Join(errs...)
}

// ValidateTemplate checks a single template for referential integrity
func ValidateTemplate(tpl model.Template) error {
	var errs []error

	if !tpl.Complexity.Valid() {
		errs = append(errs, fmt.Errorf("complexity inválida %q", tpl.Complexity))
	}
	if tpl.Weeks <= 0 {
		errs = append(errs, fmt.Errorf("weeks deve ser positivo, recebido %d", tpl.Weeks))
	}
	if len(tpl.Tasks) == 0 || len(tpl.Team) == 0 {
		errs = append(errs, errors.New("template precisa de tasks e team"))
	}

	ids := make(map[string]int, len(tpl.Tasks))
	for i, t := range tpl.Tasks {
		want := fmt.Sprintf("task-%d", i+1)
		if t.ID != want {
			errs = append(errs, fmt.Errorf("task na posição %d tem id %q, esperado %q", i, t.ID, want))
		}
		ids[t.ID] = i
		if !t.Difficulty.Valid() || !t.Priority.Valid() || !t.Category.Valid() {
			errs = append(errs, fmt.Errorf("%s: enum inválido", t.ID))
		}
		if t.EstimatedHours <= 0 {
			errs = append(errs, fmt.Errorf("%s: estimatedHours deve ser positivo", t.ID))
		}
	}

	for i, t := range tpl.Tasks {
		for _, dep := range t.Dependencies {
			pos, ok := ids[dep]
			if !ok {
				errs = append(errs, fmt.Errorf("%s: dependência desconhecida %q", t.ID, dep))
				continue
			}
			if pos >= i {
				errs = append(errs, fmt.Errorf("%s: dependência %q não é anterior", t.ID, dep))
			}
		}
	}

	for _, m := range tpl.Team {
		if !m.SeniorityLevel.Valid() {
			errs = append(errs, fmt.Errorf("%s: seniority inválida %q", m.Role, m.SeniorityLevel))
		}
		if m.EstimatedHourlyRate.Min <= 0 || m.EstimatedHourlyRate.Max < m.EstimatedHourlyRate.Min {
			errs = append(errs, fmt.Errorf("%s: faixa de valor/hora inválida", m.Role))
		}
		for _, id := range m.TaskIDs {
			if _, ok := ids[id]; !ok {
				errs = append(errs, fmt.Errorf("%s: taskId desconhecido %q", m.Role, id))
			}
		}
	}

	for _, ms := range tpl.Milestones {
		for _, id := range ms.TaskIDs {
			if _, ok := ids[id]; !ok {
				errs = append(errs, fmt.Errorf("milestone %q: taskId desconhecido %q", ms.Title, id))
			}
		}
	}

	for _, r := range tpl.Risks {
		if !r.Severity.Valid() {
			errs = append(errs, fmt.Errorf("risco %q: severity inválida %q", r.Description, r.Severity))
		}
	}

	return errors.Join(errs...)
}
