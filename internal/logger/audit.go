package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	// Analysis operations
	AuditActionAnalysisCreate AuditAction = "ANALYSIS_CREATE"
	AuditActionAnalysisDelete AuditAction = "ANALYSIS_DELETE"
	AuditActionAnalysisExport AuditAction = "ANALYSIS_EXPORT"

	// Webhook delivery
	AuditActionWebhookDelivery AuditAction = "WEBHOOK_DELIVERY"

	// WebSocket operations
	AuditActionWSConnect    AuditAction = "WS_CONNECT"
	AuditActionWSDisconnect AuditAction = "WS_DISCONNECT"

	// API operations
	AuditActionAPIRequest AuditAction = "API_REQUEST"
	AuditActionAPIError   AuditAction = "API_ERROR"
)

// AuditEvent represents an audit log entry
type AuditEvent struct {
	Action     AuditAction
	Resource   string
	ResourceID string
	Details    map[string]interface{}
	ClientIP   string
	RequestID  string
	AnalysisID string
	Success    bool
	Error      string
	Duration   int64 // Duration in milliseconds
	Method     string
	Path       string
	StatusCode int
}

// auditLogger is a specialized logger for audit events
var auditLogger = globalLogger

// InitAudit initializes the audit logger
func InitAudit() {
	auditLogger = globalLogger.With().Bool("audit", true).Logger()
}

// Audit logs an audit event
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.AnalysisID == "" {
		event.AnalysisID = GetAnalysisID(ctx)
	}

	var logEvent *zerolog.Event
	if event.Success {
		logEvent = auditLogger.Info()
	} else {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("client_ip", event.ClientIP).
		Str("request_id", event.RequestID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.AnalysisID != "" {
		logEvent.Str("analysis_id", event.AnalysisID)
	}

	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}

	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}

	if event.Method != "" {
		logEvent.Str("method", event.Method)
	}

	if event.Path != "" {
		logEvent.Str("path", event.Path)
	}

	if event.StatusCode > 0 {
		logEvent.Int("status_code", event.StatusCode)
	}

	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditAnalysis logs a create/delete/export of an analysis record
func AuditAnalysis(ctx context.Context, action AuditAction, analysisID string, err error, details map[string]interface{}) {
	event := AuditEvent{
		Action:     action,
		Resource:   "analysis",
		ResourceID: analysisID,
		AnalysisID: analysisID,
		Success:    err == nil,
		Details:    details,
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditRequest logs an API request audit event
func AuditRequest(ctx context.Context, method, path string, statusCode int, duration int64, clientIP string) {
	success := statusCode < 400
	action := AuditActionAPIRequest
	if !success {
		action = AuditActionAPIError
	}

	Audit(ctx, AuditEvent{
		Action:     action,
		Resource:   "api",
		ResourceID: path,
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Duration:   duration,
		ClientIP:   clientIP,
		Success:    success,
	})
}

// AuditWebhook logs the outcome of a webhook delivery
func AuditWebhook(ctx context.Context, analysisID, url string, statusCode int, err error) {
	event := AuditEvent{
		Action:     AuditActionWebhookDelivery,
		Resource:   "webhook",
		ResourceID: url,
		AnalysisID: analysisID,
		StatusCode: statusCode,
		Success:    err == nil,
	}
	if err != nil {
		event.Error = err.Error()
	}
	Audit(ctx, event)
}

// AuditWebSocket logs WebSocket connection events
func AuditWebSocket(ctx context.Context, action AuditAction, sessionID, clientIP string, details map[string]interface{}) {
	Audit(ctx, AuditEvent{
		Action:     action,
		Resource:   "websocket",
		ResourceID: sessionID,
		ClientIP:   clientIP,
		Success:    true,
		Details:    details,
	})
}
