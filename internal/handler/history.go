package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/middleware"
	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/repository"
	"github.com/freelancer-ai/analysis-api/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryHandler handles analysis history HTTP requests
type HistoryHandler struct {
	analysisService *service.AnalysisService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(analysisService *service.AnalysisService) *HistoryHandler {
	return &HistoryHandler{analysisService: analysisService}
}

// analysisID lê e valida o :id da rota
func analysisID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !middleware.ValidateID(id) {
		badRequest(c, "ID da análise inválido", nil)
		return "", false
	}
	return id, true
}

// ListAnalyses returns the most recent analyses
// @Summary List analyses
// @Description Returns the most recent analyses, newest first
// @Tags history
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param type query string false "Project type filter"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/analyses [get]
func (h *HistoryHandler) ListAnalyses(c *gin.Context) {
	opts := repository.ListOptions{}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "limit inválido", err)
			return
		}
		opts.Limit = limit
	}

	if raw := c.Query("type"); raw != "" {
		t, ok := model.ParseProjectType(raw)
		if !ok {
			respondError(c, fmt.Errorf("%w: %s", model.ErrUnknownProjectType, raw))
			return
		}
		opts.ProjectType = t
	}

	summaries, err := h.analysisService.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    summaries,
		Meta:    &model.Meta{Total: len(summaries)},
	})
}

// GetAnalysis returns a stored analysis by ID
// @Summary Get analysis by ID
// @Tags history
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} model.Response
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/analyses/{id} [get]
func (h *HistoryHandler) GetAnalysis(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}

	record, err := h.analysisService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    record,
		Meta:    &model.Meta{AnalysisID: record.ID, ProjectType: string(record.ProjectType)},
	})
}

// DeleteAnalysis removes an analysis from the history
// @Summary Delete analysis
// @Tags history
// @Param id path string true "Analysis ID"
// @Success 200 {object} model.Response
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/analyses/{id} [delete]
func (h *HistoryHandler) DeleteAnalysis(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}

	if err := h.analysisService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	logger.Get(c.Request.Context()).Info().Str("analysis_id", id).Msg("Análise removida")
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Meta:    &model.Meta{AnalysisID: id},
	})
}

// ExportAnalysis returns the analysis as an xlsx attachment
// @Summary Export analysis to Excel
// @Tags history
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Analysis ID"
// @Success 200 {file} binary
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/analyses/{id}/export [get]
func (h *HistoryHandler) ExportAnalysis(c *gin.Context) {
	id, ok := analysisID(c)
	if !ok {
		return
	}

	buf, filename, err := h.analysisService.Export(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", middleware.SanitizeFilename(filename)))
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
