package catalog

import (
	"errors"
	"fmt"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// QuestionKind diferencia escolha única de múltipla escolha
type QuestionKind string

const (
	QuestionSingle QuestionKind = "single"
	QuestionMulti  QuestionKind = "multi"
)

type Option struct {
	Value       string `yaml:"value" json:"value"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
}

type Question struct {
	ID          string       `yaml:"id" json:"id"`
	Question    string       `yaml:"question" json:"question"`
	Description string       `yaml:"description" json:"description"`
	Type        QuestionKind `yaml:"type" json:"type"`
	Options     []Option     `yaml:"options" json:"options"`
}

// HasOption reports whether value is one of the question's options
func (q Question) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// MarketInfo descreve preços e prazos típicos do mercado tcheco
type MarketInfo struct {
	Title           string `yaml:"title" json:"title"`
	Description     string `yaml:"description" json:"description"`
	AverageBudget   string `yaml:"averageBudget" json:"averageBudget"`
	AverageTimeline string `yaml:"averageTimeline" json:"averageTimeline"`
}

// QuestionSet é o questionário completo de um tipo de projeto
type QuestionSet struct {
	ProjectType model.ProjectType `json:"projectType"`
	Label       string            `json:"label"`
	MarketInfo  MarketInfo        `json:"marketInfo"`
	Questions   []Question        `json:"questions"`
}

type typeQuiz struct {
	MarketInfo MarketInfo `yaml:"marketInfo"`
	Questions  []Question `yaml:"questions"`
}

type quizFile struct {
	Common []Question                     `yaml:"common"`
	Types  map[model.ProjectType]typeQuiz `yaml:"types"`
	Labels map[model.ProjectType]string   `yaml:"labels"`
}

// QuestionsForType returns the common questions followed by the type-specific
// ones. Unknown types get the generic questionnaire.
func (c *Catalog) QuestionsForType(t model.ProjectType) QuestionSet {
	tq, ok := c.quiz.Types[t]
	if !ok {
		t = model.ProjectTypeGeneric
		tq = c.quiz.Types[t]
	}

	questions := make([]Question, 0, len(c.quiz.Common)+len(tq.Questions))
	for _, q := range c.quiz.Common {
		questions = append(questions, q.clone())
	}
	for _, q := range tq.Questions {
		questions = append(questions, q.clone())
	}

	return QuestionSet{
		ProjectType: t,
		Label:       c.Label(t),
		MarketInfo:  tq.MarketInfo,
		Questions:   questions,
	}
}

// Label returns the Czech display label for t
func (c *Catalog) Label(t model.ProjectType) string {
	if l, ok := c.quiz.Labels[t]; ok {
		return l
	}
	return c.quiz.Labels[model.ProjectTypeGeneric]
}

// ProjectTypeLabels returns a copy of the label table
func (c *Catalog) ProjectTypeLabels() map[model.ProjectType]string {
	out := make(map[model.ProjectType]string, len(c.quiz.Labels))
	for k, v := range c.quiz.Labels {
		out[k] = v
	}
	return out
}

// ValidateAnswers checks answers against the questionnaire for t. Values of
// known questions must be one of their options; a single value is accepted for
// a multi-select question. Keys the questionnaire does not know are ignored.
func (c *Catalog) ValidateAnswers(t model.ProjectType, answers model.QuizAnswers) error {
	set := c.QuestionsForType(t)
	byID := make(map[string]Question, len(set.Questions))
	for _, q := range set.Questions {
		byID[q.ID] = q
	}

	var errs []error
	for _, key := range answers.Keys() {
		q, ok := byID[key]
		if !ok {
			continue
		}
		answer := answers[key]
		if answer.IsMulti() && q.Type == QuestionSingle {
			errs = append(errs, fmt.Errorf("%w: %s aceita apenas uma opção", model.ErrInvalidQuizAnswer, key))
			continue
		}
		for _, v := range answers.List(key) {
			if !q.HasOption(v) {
				errs = append(errs, fmt.Errorf("%w: opção %q inválida para %s", model.ErrInvalidQuizAnswer, v, key))
			}
		}
	}
	return errors.Join(errs...)
}

func (c *Catalog) validateQuiz() error {
	var errs []error
	if _, ok := c.quiz.Types[model.ProjectTypeGeneric]; !ok {
		errs = append(errs, errors.New("quiz: questionário generic ausente"))
	}
	check := func(scope string, qs []Question) {
		ids := make(map[string]bool, len(qs))
		for _, q := range qs {
			if ids[q.ID] {
				errs = append(errs, fmt.Errorf("quiz %s: pergunta %s repetida", scope, q.ID))
			}
			ids[q.ID] = true
			if q.Type != QuestionSingle && q.Type != QuestionMulti {
				errs = append(errs, fmt.Errorf("quiz %s: %s com tipo %q", scope, q.ID, q.Type))
			}
			if len(q.Options) == 0 {
				errs = append(errs, fmt.Errorf("quiz %s: %s sem opções", scope, q.ID))
			}
		}
	}
	check("common", c.quiz.Common)
	for t, tq := range c.quiz.Types {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("quiz: tipo inválido %q", t))
		}
		check(string(t), tq.Questions)
	}
	return errors.Join(errs...)
}

func (q Question) clone() Question {
	q.Options = append([]Option(nil), q.Options...)
	return q
}
