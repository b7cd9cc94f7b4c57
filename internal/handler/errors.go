package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

// StatusClientClosedRequest é usado quando o cliente desiste antes da resposta
const StatusClientClosedRequest = 499

// statusFor mapeia os erros de domínio para status HTTP
func statusFor(c *gin.Context, err error) int {
	switch {
	case errors.Is(err, model.ErrDescriptionTooShort),
		errors.Is(err, model.ErrDescriptionTooLong),
		errors.Is(err, model.ErrInvalidQuizAnswer):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnknownProjectType),
		errors.Is(err, model.ErrAnalysisNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrCanceled):
		if c.Request.Context().Err() != nil {
			return StatusClientClosedRequest
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError escreve o ErrorResponse e registra erros internos
func respondError(c *gin.Context, err error) {
	status := statusFor(c, err)

	log := logger.Get(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Erro ao processar requisição")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("Requisição rejeitada")
	}

	resp := model.ErrorResponse{Success: false, Error: err.Error()}
	if status == http.StatusInternalServerError {
		resp.Error = "erro interno"
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := model.ErrorResponse{Success: false, Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}
