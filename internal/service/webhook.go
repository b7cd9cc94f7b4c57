package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/metrics"
	"github.com/freelancer-ai/analysis-api/internal/middleware"
	"github.com/freelancer-ai/analysis-api/internal/model"
)

const (
	webhookTimeout     = 15 * time.Second
	webhookDialTimeout = 5 * time.Second
)

var errInternalAddress = errors.New("webhook aponta para endereço interno")

// WebhookService envia resultados para webhooks
type WebhookService struct {
	httpClient *http.Client
}

// NewWebhookService cria um novo serviço de webhook. Sem allowPrivate a
// conexão é recusada quando o host resolve para loopback, rede privada ou
// link-local, inclusive depois de redirecionamentos.
func NewWebhookService(allowPrivate bool) *WebhookService {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !allowPrivate {
		transport.Proxy = nil
		dialer := &net.Dialer{Timeout: webhookDialTimeout, Control: refuseInternal}
		transport.DialContext = dialer.DialContext
	}
	return &WebhookService{
		httpClient: &http.Client{Timeout: webhookTimeout, Transport: transport},
	}
}

// refuseInternal roda com o endereço já resolvido, antes do connect
func refuseInternal(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || middleware.IsInternalIP(ip) {
		return fmt.Errorf("%w: %s", errInternalAddress, host)
	}
	return nil
}

// SendResult envia a análise concluída para o webhook
func (w *WebhookService) SendResult(ctx context.Context, webhookURL string, record model.AnalysisRecord) error {
	payload := model.WebhookPayload{
		Success:    true,
		AnalysisID: record.ID,
		Result:     record.Result,
	}

	return w.send(ctx, webhookURL, payload)
}

// SendError envia o resultado de erro para o webhook
func (w *WebhookService) SendError(ctx context.Context, webhookURL, analysisID string, err error) error {
	payload := model.WebhookPayload{
		Success:    false,
		Error:      err.Error(),
		AnalysisID: analysisID,
	}

	return w.send(ctx, webhookURL, payload)
}

// send envia o payload para o webhook
func (w *WebhookService) send(ctx context.Context, webhookURL string, payload model.WebhookPayload) (err error) {
	status := 0
	defer func() {
		metrics.Get().IncrementWebhook(err == nil)
		logger.AuditWebhook(ctx, payload.AnalysisID, webhookURL, status, err)
	}()

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("enviar webhook: %w", err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook retornou status %d: %s", resp.StatusCode, string(respBody))
	}

	logger.Get(ctx).Info().
		Str("url", webhookURL).
		Int("status", resp.StatusCode).
		Msg("Webhook enviado com sucesso")

	return nil
}
