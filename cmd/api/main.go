package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/freelancer-ai/analysis-api/internal/analysis"
	"github.com/freelancer-ai/analysis-api/internal/config"
	"github.com/freelancer-ai/analysis-api/internal/database"
	"github.com/freelancer-ai/analysis-api/internal/handler"
	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/migration"
	"github.com/freelancer-ai/analysis-api/internal/repository"
	"github.com/freelancer-ai/analysis-api/internal/service"
	"github.com/freelancer-ai/analysis-api/internal/websocket"
)

const Version = "1.0.0"

const shutdownTimeout = 30 * time.Second

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Dur("analysis_delay", cfg.AnalysisDelay).
		Bool("auth", cfg.TokenAPI != "").
		Msg("Freelancer Analysis API iniciando")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao inicializar o histórico")
	}
	if db != nil {
		defer database.Close(db)
	}

	hub := websocket.NewHub()
	go hub.Run()

	analysisService := service.NewAnalysisService(analysis.Default(), store, hub, service.AnalysisOptions{
		Delay:                cfg.AnalysisDelay,
		CacheTTL:             cfg.CacheTTL,
		MinDescriptionLength: cfg.MinDescriptionLength,
		MaxDescriptionLength: cfg.MaxDescriptionLength,
		AllowPrivateWebhooks: cfg.WebhookAllowPrivate,
	})
	defer analysisService.Close()

	gin.SetMode(cfg.GinMode)
	router := handler.NewRouter(handler.RouterConfig{
		Analysis:             analysisService,
		Hub:                  hub,
		DB:                   db,
		Version:              Version,
		TokenAPI:             cfg.TokenAPI,
		RateLimitPerMinute:   cfg.RateLimitPerMinute,
		MaxDescriptionLength: cfg.MaxDescriptionLength,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Servidor iniciando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Encerrando servidor")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Broadcast(websocket.Message{Type: "server_shutdown", Timestamp: time.Now()})
	hub.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Erro ao encerrar servidor HTTP")
	}
	// análises assíncronas ainda podem estar entregando webhooks
	if err := analysisService.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Análises assíncronas não terminaram a tempo")
	}

	log.Info().Msg("Servidor encerrado")
}

// openStore usa o PostgreSQL quando DB_HOST está definido, senão memória
func openStore(ctx context.Context, cfg *config.Config) (repository.AnalysisStore, *sql.DB, error) {
	log := logger.Global()

	if !cfg.DB.Enabled() {
		log.Info().Int("limit", cfg.HistoryLimit).Msg("Histórico em memória")
		return repository.NewMemoryAnalysisStore(cfg.HistoryLimit), nil, nil
	}

	db, err := database.Connect(ctx, database.FromConfig(cfg.DB))
	if err != nil {
		return nil, nil, err
	}

	if err := migration.NewMigrator(db).Run(); err != nil {
		database.Close(db)
		return nil, nil, err
	}

	log.Info().Str("host", cfg.DB.Host).Str("database", cfg.DB.Name).Msg("Histórico no PostgreSQL")
	return repository.NewPostgresAnalysisStore(db), db, nil
}
