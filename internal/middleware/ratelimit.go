package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/metrics"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

const (
	// limiterIdleTTL remove limitadores de IPs que pararam de chamar
	limiterIdleTTL     = 10 * time.Minute
	limiterSweepPeriod = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter mantém um token bucket por IP de cliente
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	now      func() time.Time
	swept    time.Time
}

// NewIPRateLimiter cria um limitador de perMinute requisições por minuto por IP
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	burst := perMinute
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(burst)),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow consome um token do bucket do IP
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now

	if now.Sub(l.swept) > limiterSweepPeriod {
		l.sweepLocked(now)
	}

	return v.limiter.AllowN(now, 1)
}

// sweepLocked remove visitantes ociosos
func (l *IPRateLimiter) sweepLocked(now time.Time) {
	l.swept = now
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(l.visitors, ip)
		}
	}
}

// Visitors retorna quantos IPs estão sendo acompanhados
func (l *IPRateLimiter) Visitors() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit retorna 429 quando o IP excede o limite
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		metrics.Get().IncrementRateLimited()
		logger.Get(c.Request.Context()).Warn().
			Str("client_ip", c.ClientIP()).
			Msg("Limite de requisições excedido")

		c.Header("Retry-After", strconv.Itoa(int(time.Minute/time.Second)/l.burst+1))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
			Success: false,
			Error:   model.ErrRateLimited.Error(),
		})
	}
}
