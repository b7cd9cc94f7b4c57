package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config armazena as configurações da aplicação
type Config struct {
	Port     string
	GinMode  string
	TokenAPI string

	LogLevel string
	LogJSON  bool

	AnalysisDelay        time.Duration
	MinDescriptionLength int
	MaxDescriptionLength int
	CacheTTL             time.Duration
	RateLimitPerMinute   int
	HistoryLimit         int
	WebhookAllowPrivate  bool

	DB DBConfig
}

// DBConfig é a conexão opcional com o PostgreSQL
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Enabled indica se o histórico deve ir para o banco
func (d DBConfig) Enabled() bool {
	return d.Host != ""
}

// Load carrega as configurações do ambiente
func Load() (*Config, error) {
	// Tenta carregar .env de múltiplos locais
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	return FromEnv(os.Getenv)
}

// FromEnv monta a configuração a partir de uma função de lookup
func FromEnv(getenv func(string) string) (*Config, error) {
	r := reader{getenv: getenv}

	cfg := &Config{
		Port:     r.str("PORT", "8080"),
		GinMode:  r.str("GIN_MODE", "debug"),
		TokenAPI: getenv("TOKEN_API"),
		LogLevel: r.str("LOG_LEVEL", "info"),
		LogJSON:  r.boolean("LOG_JSON", false),

		AnalysisDelay:        r.duration("ANALYSIS_DELAY", 2*time.Second),
		MinDescriptionLength: r.integer("MIN_DESCRIPTION_LENGTH", 20),
		MaxDescriptionLength: r.integer("MAX_DESCRIPTION_LENGTH", 5000),
		CacheTTL:             r.duration("CACHE_TTL", 10*time.Minute),
		RateLimitPerMinute:   r.integer("RATE_LIMIT_PER_MINUTE", 60),
		HistoryLimit:         r.integer("HISTORY_LIMIT", 500),
		WebhookAllowPrivate:  r.boolean("WEBHOOK_ALLOW_PRIVATE", false),

		DB: DBConfig{
			Host:     getenv("DB_HOST"),
			Port:     r.integer("DB_PORT", 5432),
			User:     r.str("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD"),
			Name:     r.str("DB_NAME", "freelancer_analysis"),
			SSLMode:  r.str("DB_SSLMODE", "disable"),
		},
	}

	if r.err != nil {
		return nil, r.err
	}

	// Validações
	if cfg.MinDescriptionLength < 0 || cfg.MaxDescriptionLength <= 0 {
		return nil, fmt.Errorf("config: limites de descrição inválidos (%d, %d)", cfg.MinDescriptionLength, cfg.MaxDescriptionLength)
	}
	if cfg.MinDescriptionLength > cfg.MaxDescriptionLength {
		return nil, fmt.Errorf("config: MIN_DESCRIPTION_LENGTH maior que MAX_DESCRIPTION_LENGTH")
	}
	if cfg.AnalysisDelay < 0 {
		return nil, fmt.Errorf("config: ANALYSIS_DELAY negativo")
	}

	return cfg, nil
}

// reader guarda o primeiro erro de conversão
type reader struct {
	getenv func(string) string
	err    error
}

func (r *reader) str(key, def string) string {
	if v := r.getenv(key); v != "" {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return d
}

func (r *reader) boolean(key string, def bool) bool {
	v := r.getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, err)
		return def
	}
	return b
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("config: %s inválido: %w", key, err)
	}
}
