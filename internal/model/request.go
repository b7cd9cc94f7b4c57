package model

// AnalyzeRequest representa o payload de entrada para análise de projeto
type AnalyzeRequest struct {
	Description string      `json:"description" binding:"required"`
	QuizAnswers QuizAnswers `json:"quiz_answers,omitempty"`
	SessionID   string      `json:"session_id,omitempty"`
	WebhookURL  string      `json:"webhook_url" binding:"omitempty,url"`
}

// DetectRequest representa o payload para detecção do tipo de projeto
type DetectRequest struct {
	Description string `json:"description" binding:"required"`
}

// DetectResponse é o tipo detectado e o rótulo em tcheco
type DetectResponse struct {
	ProjectType ProjectType `json:"project_type"`
	Label       string      `json:"label"`
	Matched     bool        `json:"matched"`
	Scores      []TypeScore `json:"scores"`
}

// TypeScore é a pontuação acumulada de um tipo
type TypeScore struct {
	ProjectType ProjectType `json:"project_type"`
	Score       int         `json:"score"`
}

// AcceptedResponse é devolvido quando o resultado será entregue via webhook
type AcceptedResponse struct {
	AnalysisID string `json:"analysis_id"`
	Status     string `json:"status"`
}

// Response representa a resposta padrão da API
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// Meta contém metadados da resposta
type Meta struct {
	AnalysisID  string `json:"analysis_id,omitempty"`
	Cached      bool   `json:"cached,omitempty"`
	Total       int    `json:"total,omitempty"`
	ProjectType string `json:"project_type,omitempty"`
}

// ErrorResponse representa uma resposta de erro
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WebhookPayload representa o payload enviado para o webhook
type WebhookPayload struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	AnalysisID string          `json:"analysis_id,omitempty"`
	Result     *AnalysisResult `json:"result,omitempty"`
}
