package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/middleware"
	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/service"
)

// AnalysisHandler manipula requisições de análise
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler cria um novo handler de análises
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Analyze gera a análise de um zadání
// @Summary      Analisa a descrição do projeto
// @Description  Retorna tarefas, time, orçamento e marcos. Com webhook_url responde 202 e entrega o resultado depois
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.AnalyzeRequest true "Descrição e respostas do questionário"
// @Success      200 {object} model.Response
// @Success      202 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Failure      429 {object} model.ErrorResponse
// @Router       /api/v1/analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	if req.WebhookURL != "" && !middleware.ValidateWebhookURL(req.WebhookURL, h.analysisService.AllowPrivateWebhooks()) {
		badRequest(c, "webhook_url inválida", nil)
		return
	}

	input := service.AnalyzeInput{
		Description: middleware.SanitizeDescription(req.Description),
		Answers:     req.QuizAnswers,
		SessionID:   req.SessionID,
	}

	if req.WebhookURL != "" {
		id, err := h.analysisService.AnalyzeAsync(c.Request.Context(), input, req.WebhookURL)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, model.Response{
			Success: true,
			Data:    model.AcceptedResponse{AnalysisID: id, Status: "processing"},
			Meta:    &model.Meta{AnalysisID: id},
		})
		return
	}

	out, err := h.analysisService.Analyze(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    out.Record.Result,
		Meta: &model.Meta{
			AnalysisID:  out.Record.ID,
			Cached:      out.Cached,
			ProjectType: string(out.Record.ProjectType),
		},
	})
}

// Detect retorna o tipo de projeto detectado
// @Summary      Detecta o tipo de projeto
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request body model.DetectRequest true "Descrição"
// @Success      200 {object} model.Response
// @Failure      400 {object} model.ErrorResponse
// @Router       /api/v1/detect [post]
func (h *AnalysisHandler) Detect(c *gin.Context) {
	var req model.DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "payload inválido", err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    h.analysisService.Detect(middleware.SanitizeDescription(req.Description)),
	})
}
