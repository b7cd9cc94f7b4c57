package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/freelancer-ai/analysis-api/internal/analysis"
	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/repository"
	"github.com/freelancer-ai/analysis-api/internal/service"
	"github.com/freelancer-ai/analysis-api/internal/websocket"
)

const ecommerceDescription = "Potřebuji e-shop s GoPay platbou a Zásilkovnou"

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	svc    *service.AnalysisService
	hub    *websocket.Hub
}

// newTestEnv libera webhooks locais para os servidores httptest
func newTestEnv(t *testing.T, cfg RouterConfig) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, cfg, service.AnalysisOptions{
		CacheTTL:             time.Minute,
		MinDescriptionLength: 20,
		MaxDescriptionLength: 5000,
		AllowPrivateWebhooks: true,
	})
}

func newTestEnvWithOptions(t *testing.T, cfg RouterConfig, opts service.AnalysisOptions) *testEnv {
	t.Helper()

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	svc := service.NewAnalysisService(analysis.Default(), repository.NewMemoryAnalysisStore(100), hub, opts)
	t.Cleanup(svc.Close)

	cfg.Analysis = svc
	cfg.Hub = hub
	cfg.Version = "test"
	return &testEnv{router: NewRouter(cfg), svc: svc, hub: hub}
}

func (e *testEnv) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// analyzeResponse decodifica model.Response com o resultado tipado
type analyzeResponse struct {
	Success bool                 `json:"success"`
	Data    model.AnalysisResult `json:"data"`
	Meta    model.Meta           `json:"meta"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAnalyzeEndpoint(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	w := env.do(http.MethodPost, "/api/v1/analyze", gin.H{
		"description": ecommerceDescription,
		"quiz_answers": gin.H{
			"budget":      "micro",
			"timeline":    "asap",
			"designLevel": "template",
			"payments":    []string{"gopay"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[analyzeResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, model.ProjectTypeEcommerce, resp.Data.ProjectType)
	assert.Equal(t, 29549, resp.Data.Budget.Total)
	assert.NotEmpty(t, resp.Meta.AnalysisID)
	assert.False(t, resp.Meta.Cached)
	require.NotNil(t, resp.Data.QuizContext)
	assert.Equal(t, []string{"gopay"}, resp.Data.QuizContext.Answers.List("payments"))
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"sem descrição", gin.H{}, http.StatusBadRequest},
		{"descrição curta", gin.H{"description": "e-shop"}, http.StatusBadRequest},
		{"opção inválida", gin.H{"description": ecommerceDescription, "quiz_answers": gin.H{"budget": "unlimited"}}, http.StatusBadRequest},
		{"webhook inválido", gin.H{"description": ecommerceDescription, "webhook_url": "ftp://x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/v1/analyze", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			resp := decode[model.ErrorResponse](t, w)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestAnalyzeEndpointWebhookAccepted(t *testing.T) {
	received := make(chan model.WebhookPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p model.WebhookPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		received <- p
	}))
	defer srv.Close()

	env := newTestEnv(t, RouterConfig{})
	w := env.do(http.MethodPost, "/api/v1/analyze", gin.H{
		"description": ecommerceDescription,
		"webhook_url": srv.URL,
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var resp struct {
		Data model.AcceptedResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "processing", resp.Data.Status)

	select {
	case p := <-received:
		assert.True(t, p.Success)
		assert.Equal(t, resp.Data.AnalysisID, p.AnalysisID)
	case <-time.After(5 * time.Second):
		t.Fatal("webhook não foi chamado")
	}
}

func TestAnalyzeEndpointRejectsInternalWebhook(t *testing.T) {
	env := newTestEnvWithOptions(t, RouterConfig{}, service.AnalysisOptions{
		CacheTTL:             time.Minute,
		MinDescriptionLength: 20,
		MaxDescriptionLength: 5000,
	})

	for _, hook := range []string{
		"http://127.0.0.1:9000/cb",
		"http://localhost/cb",
		"http://169.254.169.254/latest/meta-data",
		"http://10.0.0.5/hook",
		"http://[::1]:8080/hook",
	} {
		w := env.do(http.MethodPost, "/api/v1/analyze", gin.H{
			"description": ecommerceDescription,
			"webhook_url": hook,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, hook)
	}
	n, err := env.svc.Store().Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "nenhuma análise deve começar")
}

func TestAnalyzeEndpointRequiresToken(t *testing.T) {
	env := newTestEnv(t, RouterConfig{TokenAPI: "s3cret"})

	w := env.do(http.MethodPost, "/api/v1/detect", gin.H{"description": ecommerceDescription})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/v1/detect", gin.H{"description": ecommerceDescription}, "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, w.Code)

	// health continua público
	w = env.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeEndpointRateLimited(t *testing.T) {
	env := newTestEnv(t, RouterConfig{RateLimitPerMinute: 2})

	body := gin.H{"description": ecommerceDescription}
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/detect", body).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/api/v1/detect", body).Code)
	w := env.do(http.MethodPost, "/api/v1/detect", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestDetectEndpoint(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	w := env.do(http.MethodPost, "/api/v1/detect", gin.H{"description": "Chci mobilní aplikaci pro iOS a Android"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.DetectResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.ProjectTypeMobileApp, resp.Data.ProjectType)
	assert.True(t, resp.Data.Matched)
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	w := env.do(http.MethodGet, "/api/v1/quiz/ecommerce", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"marketInfo"`)
	assert.Contains(t, w.Body.String(), `"payments"`)

	w = env.do(http.MethodGet, "/api/v1/templates/saas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tplResp struct {
		Data model.Template `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tplResp))
	assert.NotEmpty(t, tplResp.Data.Tasks)

	for _, path := range []string{"/api/v1/quiz/unknown", "/api/v1/templates/unknown"} {
		w = env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	w = env.do(http.MethodGet, "/api/v1/examples", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var exResp struct {
		Meta model.Meta `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exResp))
	assert.Equal(t, 6, exResp.Meta.Total)

	w = env.do(http.MethodGet, "/api/v1/project-types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generic"`)
}

func TestHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	w := env.do(http.MethodPost, "/api/v1/analyze", gin.H{"description": ecommerceDescription})
	require.Equal(t, http.StatusOK, w.Code)
	id := decode[analyzeResponse](t, w).Meta.AnalysisID

	w = env.do(http.MethodGet, "/api/v1/analyses?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []model.AnalysisSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, id, list.Data[0].ID)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/analyses?limit=abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/analyses?type=web", nil).Code)

	w = env.do(http.MethodGet, "/api/v1/analyses/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ecommerceDescription)

	w = env.do(http.MethodGet, "/api/v1/analyses/"+id+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment; filename=\"analyza-ecommerce-"))
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Contains(t, f.GetSheetList(), service.SheetBudget)
	f.Close()

	assert.Equal(t, http.StatusOK, env.do(http.MethodDelete, "/api/v1/analyses/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/analyses/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/v1/analyses/"+id, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/analyses/bad%20id", nil).Code)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})

	for _, path := range []string{"/health", "/health/live", "/health/ready", "/metrics", "/metrics/summary"} {
		w := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := env.do(http.MethodGet, "/health", nil)
	assert.Contains(t, w.Body.String(), `"store"`)
	assert.Contains(t, w.Body.String(), `"websocket"`)

	// sem PostgreSQL não há pool
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/health/db", nil).Code)
}

func TestWebSocketReceivesStages(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?session_id=session-1234"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// mensagem de boas-vindas confirma o registro no hub
	var welcome websocket.Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, "connection", welcome.Type)

	w := env.do(http.MethodPost, "/api/v1/analyze", gin.H{
		"description": ecommerceDescription,
		"session_id":  "session-1234",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var stages []string
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for len(stages) < 6 {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		// o hub agrupa mensagens pendentes no mesmo frame, separadas por \n
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			var update websocket.StageUpdate
			require.NoError(t, json.Unmarshal(line, &update))
			assert.Equal(t, "progress", update.Type)
			stages = append(stages, update.Stage)
		}
	}
	assert.Equal(t, service.StageCompleted, stages[5])
}

func TestWebSocketRequiresSession(t *testing.T) {
	env := newTestEnv(t, RouterConfig{})
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/ws", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/ws?session_id=bad", nil).Code)
}
