package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/database"
	"github.com/freelancer-ai/analysis-api/internal/metrics"
	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/websocket"
)

const (
	maxHeapMB         = 512
	maxWSConnections  = 1000
	storeCheckTimeout = 2 * time.Second
)

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	store     metrics.Pinger
	db        *sql.DB
	wsHub     *websocket.Hub
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler; wsHub may be nil
func NewHealthHandler(store metrics.Pinger, wsHub *websocket.Hub, version string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		wsHub:     wsHub,
		version:   version,
		startTime: time.Now(),
	}
}

// WithDB expõe as estatísticas do pool quando o histórico usa PostgreSQL
func (h *HealthHandler) WithDB(db *sql.DB) *HealthHandler {
	h.db = db
	return h
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck returns readiness status including the analysis store
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"store":  h.checkStore(c.Request.Context()),
		"memory": metrics.CheckMemoryHealth(maxHeapMB),
	}
	h.respond(c, components)
}

// DetailedHealthCheck returns comprehensive health information
// @Summary Detailed health check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	components := map[string]metrics.HealthStatus{
		"store":    h.checkStore(c.Request.Context()),
		"memory":   metrics.CheckMemoryHealth(maxHeapMB),
		"analyses": h.checkAnalyses(),
	}
	if h.wsHub != nil {
		components["websocket"] = h.checkWebSocketHealth()
	}
	h.respond(c, components)
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

func (h *HealthHandler) checkStore(ctx context.Context) metrics.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, storeCheckTimeout)
	defer cancel()
	return metrics.CheckStoreHealth(ctx, h.store)
}

// checkWebSocketHealth checks WebSocket hub health
func (h *HealthHandler) checkWebSocketHealth() metrics.HealthStatus {
	if h.wsHub.GetConnectionCount() > maxWSConnections {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "WebSocket connections near limit",
		}
	}
	return metrics.HealthStatus{Status: "healthy"}
}

// checkAnalyses sinaliza muitas análises canceladas
func (h *HealthHandler) checkAnalyses() metrics.HealthStatus {
	snapshot := metrics.Get().Snapshot()

	total := snapshot.Analyses.Created + snapshot.Analyses.Canceled
	if total > 10 {
		cancelRate := float64(snapshot.Analyses.Canceled) / float64(total) * 100
		if cancelRate > 50 {
			return metrics.HealthStatus{
				Status:  "degraded",
				Message: "High analysis cancel rate",
			}
		}
	}

	return metrics.HealthStatus{Status: "healthy"}
}

// GetDatabaseStats returns the PostgreSQL connection pool statistics
// @Summary Database pool statistics
// @Tags health
// @Produce json
// @Success 200 {object} database.PoolStats
// @Failure 404 {object} model.ErrorResponse
// @Router /health/db [get]
func (h *HealthHandler) GetDatabaseStats(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Error:   "histórico em memória, sem banco configurado",
		})
		return
	}
	c.JSON(http.StatusOK, database.GetPoolStats(h.db))
}

// GetMetrics returns application metrics
// @Summary Get application metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

// GetMetricsSummary returns a summary of key metrics
// @Summary Get metrics summary
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	requestSuccessRate := float64(0)
	if snapshot.Requests.Total > 0 {
		requestSuccessRate = float64(snapshot.Requests.Successful) / float64(snapshot.Requests.Total) * 100
	}

	cacheHitRate := float64(0)
	if served := snapshot.Analyses.Created + snapshot.Analyses.CacheHits; served > 0 {
		cacheHitRate = float64(snapshot.Analyses.CacheHits) / float64(served) * 100
	}

	summary := gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": requestSuccessRate,
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
			"rate_limited": snapshot.RateLimited,
		},
		"analyses": gin.H{
			"created":        snapshot.Analyses.Created,
			"scaled":         snapshot.Analyses.Scaled,
			"generic":        snapshot.Analyses.Generic,
			"over_cap":       snapshot.Analyses.OverCap,
			"cache_hit_rate": cacheHitRate,
			"by_type":        snapshot.Analyses.ByType,
		},
		"websocket": gin.H{
			"connections": snapshot.WebSocket.Connections,
		},
		"system": gin.H{
			"goroutines":  snapshot.System.Goroutines,
			"heap_mb":     snapshot.System.HeapAllocMB,
			"heap_use_mb": snapshot.System.HeapInUseMB,
		},
	}

	c.JSON(http.StatusOK, summary)
}

// GetEndpointMetrics returns metrics for specific endpoints
// @Summary Get endpoint metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/endpoints [get]
func (h *HealthHandler) GetEndpointMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"endpoints": metrics.Get().Snapshot().Endpoints,
	})
}
