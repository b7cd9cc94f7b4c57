package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/service"
)

// CatalogHandler expõe questionários, templates e exemplos
type CatalogHandler struct {
	analysisService *service.AnalysisService
}

// NewCatalogHandler cria um novo handler do catálogo
func NewCatalogHandler(analysisService *service.AnalysisService) *CatalogHandler {
	return &CatalogHandler{analysisService: analysisService}
}

// projectTypeParam lê :type e rejeita tipos desconhecidos
func projectTypeParam(c *gin.Context) (model.ProjectType, error) {
	t, ok := model.ParseProjectType(c.Param("type"))
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrUnknownProjectType, c.Param("type"))
	}
	return t, nil
}

// ListProjectTypes lista os tipos com seus rótulos
// @Summary      Lista tipos de projeto
// @Tags         catalog
// @Produce      json
// @Success      200 {object} model.Response
// @Router       /api/v1/project-types [get]
func (h *CatalogHandler) ListProjectTypes(c *gin.Context) {
	cat := h.analysisService.Catalog()

	type typeInfo struct {
		ProjectType model.ProjectType `json:"project_type"`
		Label       string            `json:"label"`
	}

	types := cat.Types()
	out := make([]typeInfo, 0, len(types))
	for _, t := range types {
		out = append(out, typeInfo{ProjectType: t, Label: cat.Label(t)})
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    out,
		Meta:    &model.Meta{Total: len(out)},
	})
}

// GetQuiz retorna o questionário de um tipo
// @Summary      Questionário do tipo de projeto
// @Tags         catalog
// @Produce      json
// @Param        type path string true "Tipo de projeto"
// @Success      200 {object} model.Response
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/quiz/{type} [get]
func (h *CatalogHandler) GetQuiz(c *gin.Context) {
	t, err := projectTypeParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	questions, err := h.analysisService.Questions(t)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Data: questions})
}

// GetTemplate retorna uma cópia do template de um tipo
// @Summary      Template do tipo de projeto
// @Tags         catalog
// @Produce      json
// @Param        type path string true "Tipo de projeto"
// @Success      200 {object} model.Response
// @Failure      404 {object} model.ErrorResponse
// @Router       /api/v1/templates/{type} [get]
func (h *CatalogHandler) GetTemplate(c *gin.Context) {
	t, err := projectTypeParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	tpl, err := h.analysisService.Template(t)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    tpl,
		Meta:    &model.Meta{ProjectType: string(t)},
	})
}

// ListExamples retorna os exemplos de zadání
// @Summary      Exemplos de projetos
// @Tags         catalog
// @Produce      json
// @Success      200 {object} model.Response
// @Router       /api/v1/examples [get]
func (h *CatalogHandler) ListExamples(c *gin.Context) {
	examples := h.analysisService.Catalog().Examples()
	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Data:    examples,
		Meta:    &model.Meta{Total: len(examples)},
	})
}
