package model

import "time"

// BudgetItem é uma linha do orçamento agrupada por papel
type BudgetItem struct {
	Category   string `json:"category"`
	Amount     int    `json:"amount"`
	Percentage int    `json:"percentage"`
}

// Budget é o orçamento calculado a partir do time
type Budget struct {
	Breakdown   []BudgetItem `json:"breakdown"`
	Subtotal    int          `json:"subtotal"`
	PlatformFee int          `json:"platformFee"`
	Total       int          `json:"total"`
	Currency    string       `json:"currency"`
	Note        string       `json:"note"`
}

func (b Budget) Clone() Budget {
	if b.Breakdown != nil {
		b.Breakdown = append([]BudgetItem(nil), b.Breakdown...)
	}
	return b
}

type EstimatedDuration struct {
	Weeks       int    `json:"weeks"`
	Description string `json:"description"`
}

// AnalysisResult é o resultado final entregue à camada de apresentação
type AnalysisResult struct {
	ProjectName       string            `json:"projectName"`
	ProjectSummary    string            `json:"projectSummary"`
	ProjectType       ProjectType       `json:"projectType"`
	Complexity        Complexity        `json:"complexity"`
	EstimatedDuration EstimatedDuration `json:"estimatedDuration"`
	Tasks             []Task            `json:"tasks"`
	SuggestedTeam     []TeamMember      `json:"suggestedTeam"`
	Budget            Budget            `json:"budget"`
	Milestones        []Milestone       `json:"milestones"`
	Risks             []Risk            `json:"risks"`
	Recommendations   []string          `json:"recommendations"`
	QuizContext       *QuizContext      `json:"quizContext,omitempty"`
}

// Clone returns a deep copy of the result
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Tasks = CloneTasks(r.Tasks)
	out.SuggestedTeam = CloneTeam(r.SuggestedTeam)
	out.Budget = r.Budget.Clone()
	out.Milestones = CloneMilestones(r.Milestones)
	out.Risks = CloneRisks(r.Risks)
	out.Recommendations = cloneStrings(r.Recommendations)
	if r.QuizContext != nil {
		qc := *r.QuizContext
		qc.Answers = r.QuizContext.Answers.Clone()
		out.QuizContext = &qc
	}
	return &out
}

// AnalysisRecord é uma análise persistida no histórico
type AnalysisRecord struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	ProjectType ProjectType     `json:"project_type"`
	QuizAnswers QuizAnswers     `json:"quiz_answers,omitempty"`
	Fingerprint string          `json:"fingerprint"`
	Result      *AnalysisResult `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AnalysisSummary é a versão resumida usada na listagem do histórico
type AnalysisSummary struct {
	ID          string      `json:"id"`
	ProjectName string      `json:"project_name"`
	ProjectType ProjectType `json:"project_type"`
	Total       int         `json:"total"`
	Weeks       int         `json:"weeks"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Summary builds the list view of a record
func (r AnalysisRecord) Summary() AnalysisSummary {
	s := AnalysisSummary{ID: r.ID, ProjectType: r.ProjectType, CreatedAt: r.CreatedAt}
	if r.Result != nil {
		s.ProjectName = r.Result.ProjectName
		s.Total = r.Result.Budget.Total
		s.Weeks = r.Result.EstimatedDuration.Weeks
	}
	return s
}
