package metrics

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Analysis metrics
	AnalysesCreated  int64
	AnalysesScaled   int64
	AnalysesGeneric  int64
	AnalysesCanceled int64
	CacheHits        int64
	BudgetOverCap    int64
	AnalysisLatency  int64

	// Per project type counters
	ProjectTypes map[string]int64

	// Export and webhook metrics
	ExportsGenerated int64
	ExportErrors     int64
	WebhooksSent     int64
	WebhookErrors    int64

	// WebSocket metrics
	WSConnections int64
	WSMessagesIn  int64
	WSMessagesOut int64

	// Rate limiting
	RateLimited int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

// global metrics instance
var globalMetrics *Metrics
var once sync.Once

// New creates an isolated metrics instance
func New() *Metrics {
	return &Metrics{
		StartTime:       time.Now(),
		EndpointMetrics: make(map[string]*EndpointMetrics),
		ProjectTypes:    make(map[string]int64),
	}
}

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = New()
	})
}

// Get returns the global metrics instance
func Get() *Metrics {
	Init()
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// RecordAnalysis registra uma análise concluída
func (m *Metrics) RecordAnalysis(projectType string, scaled, overCap bool, latencyMs int64) {
	atomic.AddInt64(&m.AnalysesCreated, 1)
	atomic.AddInt64(&m.AnalysisLatency, latencyMs)
	if scaled {
		atomic.AddInt64(&m.AnalysesScaled, 1)
	}
	if overCap {
		atomic.AddInt64(&m.BudgetOverCap, 1)
	}
	if projectType == "generic" {
		atomic.AddInt64(&m.AnalysesGeneric, 1)
	}

	m.mu.Lock()
	if m.ProjectTypes == nil {
		m.ProjectTypes = make(map[string]int64)
	}
	m.ProjectTypes[projectType]++
	m.mu.Unlock()
}

// IncrementCacheHit conta análises servidas do cache
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}

// IncrementAnalysisCanceled conta análises interrompidas pelo cliente
func (m *Metrics) IncrementAnalysisCanceled() {
	atomic.AddInt64(&m.AnalysesCanceled, 1)
}

// IncrementExport increments export counters
func (m *Metrics) IncrementExport(success bool) {
	if success {
		atomic.AddInt64(&m.ExportsGenerated, 1)
	} else {
		atomic.AddInt64(&m.ExportErrors, 1)
	}
}

// IncrementWebhook increments webhook delivery counters
func (m *Metrics) IncrementWebhook(success bool) {
	if success {
		atomic.AddInt64(&m.WebhooksSent, 1)
	} else {
		atomic.AddInt64(&m.WebhookErrors, 1)
	}
}

// IncrementRateLimited counts rejected requests
func (m *Metrics) IncrementRateLimited() {
	atomic.AddInt64(&m.RateLimited, 1)
}

// IncrementWSConnection increments WebSocket connection counter
func (m *Metrics) IncrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, 1)
}

// DecrementWSConnection decrements WebSocket connection counter
func (m *Metrics) DecrementWSConnection() {
	atomic.AddInt64(&m.WSConnections, -1)
}

// IncrementWSMessageIn increments WebSocket incoming message counter
func (m *Metrics) IncrementWSMessageIn() {
	atomic.AddInt64(&m.WSMessagesIn, 1)
}

// IncrementWSMessageOut increments WebSocket outgoing message counter
func (m *Metrics) IncrementWSMessageOut() {
	atomic.AddInt64(&m.WSMessagesOut, 1)
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndpointMetrics == nil {
		m.EndpointMetrics = make(map[string]*EndpointMetrics)
	}

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetEndpointMetrics returns a copy of endpoint metrics
func (m *Metrics) GetEndpointMetrics() map[string]EndpointMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]EndpointMetrics)
	for k, v := range m.EndpointMetrics {
		result[k] = EndpointMetrics{
			Requests:     atomic.LoadInt64(&v.Requests),
			Errors:       atomic.LoadInt64(&v.Errors),
			TotalLatency: atomic.LoadInt64(&v.TotalLatency),
		}
	}
	return result
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	total := atomic.LoadInt64(&m.TotalLatency)
	return float64(total) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	// Uptime
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	// Request metrics
	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	// Analysis metrics
	Analyses struct {
		Created      int64            `json:"created"`
		Scaled       int64            `json:"scaled"`
		Generic      int64            `json:"generic"`
		Canceled     int64            `json:"canceled"`
		CacheHits    int64            `json:"cache_hits"`
		OverCap      int64            `json:"over_cap"`
		AvgLatencyMs float64          `json:"avg_latency_ms"`
		ByType       map[string]int64 `json:"by_type"`
	} `json:"analyses"`

	// Export and webhook metrics
	Exports struct {
		Generated int64 `json:"generated"`
		Errors    int64 `json:"errors"`
	} `json:"exports"`

	Webhooks struct {
		Sent   int64 `json:"sent"`
		Errors int64 `json:"errors"`
	} `json:"webhooks"`

	// WebSocket metrics
	WebSocket struct {
		Connections int64 `json:"connections"`
		MessagesIn  int64 `json:"messages_in"`
		MessagesOut int64 `json:"messages_out"`
	} `json:"websocket"`

	RateLimited int64 `json:"rate_limited"`

	// System metrics
	System struct {
		Goroutines   int    `json:"goroutines"`
		HeapAllocMB  uint64 `json:"heap_alloc_mb"`
		HeapInUseMB  uint64 `json:"heap_inuse_mb"`
		StackInUseMB uint64 `json:"stack_inuse_mb"`
		NumGC        uint32 `json:"num_gc"`
	} `json:"system"`

	// Endpoint-specific metrics (top endpoints by request count)
	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	// Uptime
	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	// Request metrics
	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	// Analysis metrics
	created := atomic.LoadInt64(&m.AnalysesCreated)
	snapshot.Analyses.Created = created
	snapshot.Analyses.Scaled = atomic.LoadInt64(&m.AnalysesScaled)
	snapshot.Analyses.Generic = atomic.LoadInt64(&m.AnalysesGeneric)
	snapshot.Analyses.Canceled = atomic.LoadInt64(&m.AnalysesCanceled)
	snapshot.Analyses.CacheHits = atomic.LoadInt64(&m.CacheHits)
	snapshot.Analyses.OverCap = atomic.LoadInt64(&m.BudgetOverCap)
	if created > 0 {
		snapshot.Analyses.AvgLatencyMs = float64(atomic.LoadInt64(&m.AnalysisLatency)) / float64(created)
	}
	m.mu.RLock()
	snapshot.Analyses.ByType = make(map[string]int64, len(m.ProjectTypes))
	for k, v := range m.ProjectTypes {
		snapshot.Analyses.ByType[k] = v
	}
	m.mu.RUnlock()

	// Export and webhook metrics
	snapshot.Exports.Generated = atomic.LoadInt64(&m.ExportsGenerated)
	snapshot.Exports.Errors = atomic.LoadInt64(&m.ExportErrors)
	snapshot.Webhooks.Sent = atomic.LoadInt64(&m.WebhooksSent)
	snapshot.Webhooks.Errors = atomic.LoadInt64(&m.WebhookErrors)

	// WebSocket metrics
	snapshot.WebSocket.Connections = atomic.LoadInt64(&m.WSConnections)
	snapshot.WebSocket.MessagesIn = atomic.LoadInt64(&m.WSMessagesIn)
	snapshot.WebSocket.MessagesOut = atomic.LoadInt64(&m.WSMessagesOut)

	snapshot.RateLimited = atomic.LoadInt64(&m.RateLimited)

	// System metrics
	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	snapshot.System.StackInUseMB = memStats.StackInuse / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	// Endpoint metrics
	endpointMetrics := m.GetEndpointMetrics()
	if len(endpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for k, v := range endpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: v.Requests,
				Errors:   v.Errors,
			}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"` // "healthy", "degraded", "unhealthy"
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// Pinger is anything whose connectivity can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckStoreHealth checks the analysis store connectivity
func CheckStoreHealth(ctx context.Context, store Pinger) HealthStatus {
	start := time.Now()

	if store == nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "store not initialized",
		}
	}

	err := store.Ping(ctx)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency,
		}
	}

	// Check if latency is acceptable (< 100ms)
	if latency > 100 {
		return HealthStatus{
			Status:  "degraded",
			Message: "high latency",
			Latency: latency,
		}
	}

	return HealthStatus{
		Status:  "healthy",
		Latency: latency,
	}
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	// Warn if using more than 80% of limit
	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{
		Status: "healthy",
	}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
