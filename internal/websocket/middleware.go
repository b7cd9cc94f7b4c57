package websocket

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// SessionContextKey é a chave do gin.Context com a sessão validada
const SessionContextKey = "session_id"

// SessionHeader permite enviar a sessão fora da query string
const SessionHeader = "X-Session-ID"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// ValidSessionID reports whether id can key a websocket session
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// SessionMiddleware extrai e valida o session_id da query ou do header
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			sessionID = c.GetHeader(SessionHeader)
		}

		if sessionID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Chybí session_id",
				"code":    "SESSION_REQUIRED",
			})
			return
		}

		if !ValidSessionID(sessionID) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Neplatné session_id",
				"code":    "SESSION_INVALID",
			})
			return
		}

		c.Set(SessionContextKey, sessionID)
		c.Next()
	}
}
