package model

// ProjectType identifica a categoria de projeto usada para escolher o template
type ProjectType string

const (
	ProjectTypeEcommerce  ProjectType = "ecommerce"
	ProjectTypeMobileApp  ProjectType = "mobileApp"
	ProjectTypeSaaS       ProjectType = "saas"
	ProjectTypeMarketing  ProjectType = "marketing"
	ProjectTypeAIML       ProjectType = "aiml"
	ProjectTypeBlockchain ProjectType = "blockchain"
	ProjectTypeGeneric    ProjectType = "generic"
)

// DetectableProjectTypes is the canonical detection order. Ties resolve to the
// earliest entry.
var DetectableProjectTypes = []ProjectType{
	ProjectTypeEcommerce,
	ProjectTypeMobileApp,
	ProjectTypeSaaS,
	ProjectTypeMarketing,
	ProjectTypeAIML,
	ProjectTypeBlockchain,
}

// Valid reports whether t is one of the known project types, generic included
func (t ProjectType) Valid() bool {
	if t == ProjectTypeGeneric {
		return true
	}
	for _, known := range DetectableProjectTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseProjectType converts a raw string into a ProjectType
func ParseProjectType(s string) (ProjectType, bool) {
	t := ProjectType(s)
	return t, t.Valid()
}

type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

func (c Complexity) Valid() bool {
	return c == ComplexityLow || c == ComplexityMedium || c == ComplexityHigh
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Category agrupa as tarefas por tipo de trabalho
type Category string

const (
	CategoryDesign      Category = "design"
	CategoryDevelopment Category = "development"
	CategoryTesting     Category = "testing"
	CategoryDevOps      Category = "devops"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDesign, CategoryDevelopment, CategoryTesting, CategoryDevOps:
		return true
	}
	return false
}

type Seniority string

const (
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
)

func (s Seniority) Valid() bool {
	return s == SeniorityJunior || s == SeniorityMid || s == SenioritySenior
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Task representa uma tarefa do plano de projeto
type Task struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Description    string     `json:"description" yaml:"description"`
	Skills         []string   `json:"skills" yaml:"skills"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	EstimatedHours int        `json:"estimatedHours" yaml:"estimatedHours"`
	Priority       Priority   `json:"priority" yaml:"priority"`
	Dependencies   []string   `json:"dependencies" yaml:"dependencies"`
	Category       Category   `json:"category" yaml:"category"`
	Deliverables   []string   `json:"deliverables" yaml:"deliverables"`
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	t.Skills = cloneStrings(t.Skills)
	t.Dependencies = cloneStrings(t.Dependencies)
	t.Deliverables = cloneStrings(t.Deliverables)
	return t
}

// HourlyRate is a CZK rate range
type HourlyRate struct {
	Min      int    `json:"min" yaml:"min"`
	Max      int    `json:"max" yaml:"max"`
	Currency string `json:"currency" yaml:"currency"`
}

// Mid returns the midpoint of the range
func (r HourlyRate) Mid() float64 {
	return float64(r.Min+r.Max) / 2
}

// TeamMember representa um papel sugerido para o time
type TeamMember struct {
	Role                string     `json:"role" yaml:"role"`
	TaskIDs             []string   `json:"taskIds" yaml:"taskIds"`
	RequiredSkills      []string   `json:"requiredSkills" yaml:"requiredSkills"`
	SeniorityLevel      Seniority  `json:"seniorityLevel" yaml:"seniorityLevel"`
	EstimatedHourlyRate HourlyRate `json:"estimatedHourlyRate" yaml:"estimatedHourlyRate"`
	EstimatedHours      int        `json:"estimatedHours" yaml:"estimatedHours"`
}

func (m TeamMember) Clone() TeamMember {
	m.TaskIDs = cloneStrings(m.TaskIDs)
	m.RequiredSkills = cloneStrings(m.RequiredSkills)
	return m
}

// HasSkill reports whether any of skills is required by the member
func (m TeamMember) HasSkill(skills []string) bool {
	for _, want := range m.RequiredSkills {
		for _, s := range skills {
			if s == want {
				return true
			}
		}
	}
	return false
}

// WorksOn reports whether the member is assigned to the task id
func (m TeamMember) WorksOn(taskID string) bool {
	for _, id := range m.TaskIDs {
		if id == taskID {
			return true
		}
	}
	return false
}

type Milestone struct {
	Title       string   `json:"title" yaml:"title"`
	WeekNumber  int      `json:"weekNumber" yaml:"weekNumber"`
	TaskIDs     []string `json:"taskIds" yaml:"taskIds"`
	Description string   `json:"description" yaml:"description"`
}

func (m Milestone) Clone() Milestone {
	m.TaskIDs = cloneStrings(m.TaskIDs)
	return m
}

type Risk struct {
	Description string   `json:"description" yaml:"description"`
	Mitigation  string   `json:"mitigation" yaml:"mitigation"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// Template é o plano de referência de um tipo de projeto.
// Os templates do catálogo são somente leitura; use Clone antes de alterar.
type Template struct {
	NamePrefix      string       `json:"namePrefix" yaml:"namePrefix"`
	Complexity      Complexity   `json:"complexity" yaml:"complexity"`
	Weeks           int          `json:"weeks" yaml:"weeks"`
	Tasks           []Task       `json:"tasks" yaml:"tasks"`
	Team            []TeamMember `json:"team" yaml:"team"`
	Milestones      []Milestone  `json:"milestones" yaml:"milestones"`
	Risks           []Risk       `json:"risks" yaml:"risks"`
	Recommendations []string     `json:"recommendations" yaml:"recommendations"`
}

// Clone returns a structural deep copy of the template
func (t Template) Clone() Template {
	out := t
	out.Tasks = CloneTasks(t.Tasks)
	out.Team = CloneTeam(t.Team)
	out.Milestones = CloneMilestones(t.Milestones)
	out.Risks = CloneRisks(t.Risks)
	out.Recommendations = cloneStrings(t.Recommendations)
	return out
}

func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func CloneTeam(team []TeamMember) []TeamMember {
	if team == nil {
		return nil
	}
	out := make([]TeamMember, len(team))
	for i, m := range team {
		out[i] = m.Clone()
	}
	return out
}

func CloneMilestones(milestones []Milestone) []Milestone {
	if milestones == nil {
		return nil
	}
	out := make([]Milestone, len(milestones))
	for i, m := range milestones {
		out[i] = m.Clone()
	}
	return out
}

func CloneRisks(risks []Risk) []Risk {
	if risks == nil {
		return nil
	}
	out := make([]Risk, len(risks))
	copy(out, risks)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
