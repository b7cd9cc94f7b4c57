package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ctxKey string

const (
	RequestIDKey  ctxKey = "request_id"
	LoggerKey     ctxKey = "logger"
	AnalysisIDKey ctxKey = "analysis_id"
	SessionIDKey  ctxKey = "session_id"
	TraceIDKey    ctxKey = "trace_id"
)

const serviceName = "freelancer-analysis-api"

var globalLogger = zerolog.New(io.Discard)

// Init inicializa o logger global
func Init(level string, jsonFormat bool) {
	InitWithWriter(level, jsonFormat, os.Stdout)
}

// InitWithWriter inicializa o logger global escrevendo em out
func InitWithWriter(level string, jsonFormat bool, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	output := out
	if !jsonFormat {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	globalLogger = zerolog.New(output).
		Level(lvl).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	InitAudit()
}

// Global retorna o logger global
func Global() *zerolog.Logger {
	return &globalLogger
}

// Get retorna logger do contexto ou global
func Get(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if l, ok := ctx.Value(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	return &globalLogger
}

// FromGin extrai o logger do contexto Gin
func FromGin(c *gin.Context) *zerolog.Logger {
	return Get(c.Request.Context())
}

// WithRequestID adiciona request_id ao logger e contexto
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := globalLogger.With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithAnalysisID adiciona o id da análise ao logger existente
func WithAnalysisID(ctx context.Context, analysisID string) context.Context {
	l := Get(ctx).With().Str("analysis_id", analysisID).Logger()
	ctx = context.WithValue(ctx, AnalysisIDKey, analysisID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithSessionID associa a sessão websocket que acompanha a análise
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	l := Get(ctx).With().Str("session_id", sessionID).Logger()
	ctx = context.WithValue(ctx, SessionIDKey, sessionID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

// WithTraceID adiciona um trace ID para rastreamento distribuído
func WithTraceID(ctx context.Context, traceID string) context.Context {
	l := Get(ctx).With().Str("trace_id", traceID).Logger()
	ctx = context.WithValue(ctx, TraceIDKey, traceID)
	ctx = context.WithValue(ctx, LoggerKey, &l)
	return ctx
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetRequestID extrai request_id do contexto
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, RequestIDKey)
}

// GetAnalysisID extrai analysis_id do contexto
func GetAnalysisID(ctx context.Context) string {
	return stringValue(ctx, AnalysisIDKey)
}

// GetSessionID extrai session_id do contexto
func GetSessionID(ctx context.Context) string {
	return stringValue(ctx, SessionIDKey)
}

// GetTraceID extrai trace_id do contexto
func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDKey)
}

// TraceContext retorna todas as informações de rastreamento do contexto
func TraceContext(ctx context.Context) map[string]string {
	return map[string]string{
		"request_id":  GetRequestID(ctx),
		"analysis_id": GetAnalysisID(ctx),
		"session_id":  GetSessionID(ctx),
		"trace_id":    GetTraceID(ctx),
	}
}
