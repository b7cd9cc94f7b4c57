package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Chaves comuns do questionário
const (
	QuizKeyBudget      = "budget"
	QuizKeyTimeline    = "timeline"
	QuizKeyDesignLevel = "designLevel"
)

// QuizAnswer holds either a single selected option or a multi-select list.
type QuizAnswer struct {
	Single string
	Multi  []string
	multi  bool
}

// SingleAnswer builds a single-choice answer
func SingleAnswer(v string) QuizAnswer {
	return QuizAnswer{Single: v}
}

// MultiAnswer builds a multi-select answer
func MultiAnswer(v ...string) QuizAnswer {
	if v == nil {
		v = []string{}
	}
	return QuizAnswer{Multi: v, multi: true}
}

// IsMulti reports whether the answer came from a multi-select question
func (a QuizAnswer) IsMulti() bool {
	return a.multi
}

func (a QuizAnswer) Clone() QuizAnswer {
	if a.multi {
		return MultiAnswer(cloneStrings(a.Multi)...)
	}
	return a
}

func (a QuizAnswer) MarshalJSON() ([]byte, error) {
	if a.multi {
		if a.Multi == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.Multi)
	}
	return json.Marshal(a.Single)
}

func (a *QuizAnswer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = SingleAnswer(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%w: esperado texto ou lista de textos", ErrInvalidQuizAnswer)
	}
	*a = MultiAnswer(list...)
	return nil
}

// QuizAnswers mapeia o id da pergunta para a resposta escolhida.
// Um mapa nil significa "sem questionário"; um mapa vazio ainda ativa o escalonamento.
type QuizAnswers map[string]QuizAnswer

// String returns the single-choice value for key, or "" when absent or multi.
func (q QuizAnswers) String(key string) string {
	a, ok := q[key]
	if !ok || a.multi {
		return ""
	}
	return a.Single
}

// List returns the multi-select values for key. A single answer is returned as
// a one-element list.
func (q QuizAnswers) List(key string) []string {
	a, ok := q[key]
	if !ok {
		return nil
	}
	if a.multi {
		return cloneStrings(a.Multi)
	}
	if a.Single == "" {
		return nil
	}
	return []string{a.Single}
}

func (q QuizAnswers) Has(key string) bool {
	_, ok := q[key]
	return ok
}

// Clone returns a deep copy. nil stays nil.
func (q QuizAnswers) Clone() QuizAnswers {
	if q == nil {
		return nil
	}
	out := make(QuizAnswers, len(q))
	for k, v := range q {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the answered question ids in sorted order
func (q QuizAnswers) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// QuizAnswersFromMap converts loosely typed values (as decoded from YAML) into
// QuizAnswers. Scalars become single answers and sequences become multi answers.
func QuizAnswersFromMap(raw map[string]interface{}) (QuizAnswers, error) {
	out := make(QuizAnswers, len(raw))
	for key, v := range raw {
		switch val := v.(type) {
		case string:
			out[key] = SingleAnswer(val)
		case []interface{}:
			items := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s contém valor não textual", ErrInvalidQuizAnswer, key)
				}
				items = append(items, s)
			}
			out[key] = MultiAnswer(items...)
		case []string:
			out[key] = MultiAnswer(cloneStrings(val)...)
		case nil:
			continue
		default:
			out[key] = SingleAnswer(fmt.Sprint(val))
		}
	}
	return out, nil
}

// QuizContext é anexado ao resultado quando o questionário foi respondido
type QuizContext struct {
	BudgetTier string      `json:"budgetTier"`
	Timeline   string      `json:"timeline"`
	Answers    QuizAnswers `json:"answers"`
}
