package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

// AuthConfig contém a configuração do middleware de autenticação
type AuthConfig struct {
	TokenAPI string
}

// Enabled indica se a autenticação está ligada
func (c AuthConfig) Enabled() bool {
	return c.TokenAPI != ""
}

// BearerAuth retorna um middleware que valida o token Bearer.
// Sem TOKEN_API configurado todas as requisições passam.
func BearerAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "header Authorization ausente")
			return
		}

		// Extrai o token do formato "Bearer {token}"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortUnauthorized(c, "formato inválido, esperado: Bearer {token}")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.TokenAPI)) != 1 {
			abortUnauthorized(c, "token inválido")
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Success: false,
		Error:   msg,
	})
}
