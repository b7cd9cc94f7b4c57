package handler

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/middleware"
	"github.com/freelancer-ai/analysis-api/internal/service"
	"github.com/freelancer-ai/analysis-api/internal/websocket"
)

// bodyLimitFactor dá folga ao JSON além da descrição (respostas, escapes)
const bodyLimitFactor = 8

// RouterConfig reúne as dependências das rotas
type RouterConfig struct {
	Analysis             *service.AnalysisService
	Hub                  *websocket.Hub
	DB                   *sql.DB // opcional, só com PostgreSQL
	Version              string
	TokenAPI             string
	RateLimitPerMinute   int
	MaxDescriptionLength int
}

// NewRouter monta o engine gin com middlewares e rotas
func NewRouter(cfg RouterConfig) *gin.Engine {
	analysisHandler := NewAnalysisHandler(cfg.Analysis)
	catalogHandler := NewCatalogHandler(cfg.Analysis)
	historyHandler := NewHistoryHandler(cfg.Analysis)
	healthHandler := NewHealthHandler(cfg.Analysis.Store(), cfg.Hub, cfg.Version).WithDB(cfg.DB)

	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware())

	// Health e métricas (públicos)
	r.GET("/health", healthHandler.DetailedHealthCheck)
	r.GET("/health/live", healthHandler.LivenessCheck)
	r.GET("/health/ready", healthHandler.ReadinessCheck)
	r.GET("/health/db", healthHandler.GetDatabaseStats)
	r.GET("/metrics", healthHandler.GetMetrics)
	r.GET("/metrics/summary", healthHandler.GetMetricsSummary)
	r.GET("/metrics/endpoints", healthHandler.GetEndpointMetrics)

	if cfg.Hub != nil {
		wsHandler := NewWebSocketHandler(cfg.Hub)
		r.GET("/ws", websocket.SessionMiddleware(), wsHandler.HandleConnection)
		r.GET("/ws/stats", wsHandler.GetConnectionStats)
	}

	// Grupo de rotas protegidas
	api := r.Group("/api/v1")
	api.Use(middleware.BearerAuth(middleware.AuthConfig{TokenAPI: cfg.TokenAPI}))
	{
		limited := api.Group("")
		if cfg.RateLimitPerMinute > 0 {
			limited.Use(middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)))
		}
		if cfg.MaxDescriptionLength > 0 {
			limited.Use(middleware.BodyLimit(int64(cfg.MaxDescriptionLength) * bodyLimitFactor))
		}
		limited.POST("/analyze", analysisHandler.Analyze)
		limited.POST("/detect", analysisHandler.Detect)

		api.GET("/project-types", catalogHandler.ListProjectTypes)
		api.GET("/quiz/:type", catalogHandler.GetQuiz)
		api.GET("/templates/:type", catalogHandler.GetTemplate)
		api.GET("/examples", catalogHandler.ListExamples)

		api.GET("/analyses", historyHandler.ListAnalyses)
		api.GET("/analyses/:id", historyHandler.GetAnalysis)
		api.DELETE("/analyses/:id", historyHandler.DeleteAnalysis)
		api.GET("/analyses/:id/export", limitedExport(cfg), historyHandler.ExportAnalysis)
	}

	return r
}

// limitedExport aplica o rate limit também ao export, que gera planilhas
func limitedExport(cfg RouterConfig) gin.HandlerFunc {
	if cfg.RateLimitPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(middleware.NewIPRateLimiter(cfg.RateLimitPerMinute))
}
