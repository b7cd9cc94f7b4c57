package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/metrics"
)

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start).Milliseconds()
		statusCode := c.Writer.Status()
		success := statusCode < 400

		metrics.Get().IncrementRequests(success, latency)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.Get().TrackEndpoint(path, c.Request.Method, statusCode, latency)
	}
}

// auditPrefixes são as rotas que alteram o histórico
var auditPrefixes = []string{
	"/api/v1/analyze",
	"/api/v1/analyses",
}

// AuditMiddleware logs audit events for state-changing operations
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		shouldAudit := false
		for _, prefix := range auditPrefixes {
			if strings.HasPrefix(path, prefix) {
				shouldAudit = true
				break
			}
		}

		c.Next()

		if !shouldAudit {
			return
		}
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			logger.AuditRequest(
				c.Request.Context(),
				c.Request.Method,
				path,
				c.Writer.Status(),
				time.Since(start).Milliseconds(),
				c.ClientIP(),
			)
		}
	}
}
