// Package integration provides end-to-end tests that run the HTTP API against
// a real PostgreSQL history store. They skip when PostgreSQL is unreachable.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancer-ai/analysis-api/internal/analysis"
	"github.com/freelancer-ai/analysis-api/internal/database"
	"github.com/freelancer-ai/analysis-api/internal/handler"
	"github.com/freelancer-ai/analysis-api/internal/migration"
	"github.com/freelancer-ai/analysis-api/internal/model"
	"github.com/freelancer-ai/analysis-api/internal/repository"
	"github.com/freelancer-ai/analysis-api/internal/service"
	"github.com/freelancer-ai/analysis-api/internal/websocket"
)

// TestContext holds all dependencies for integration tests
type TestContext struct {
	DB       *sql.DB
	Router   *gin.Engine
	WSHub    *websocket.Hub
	Analysis *service.AnalysisService
}

// setupTestContext creates a throwaway database, migrates it and wires the API
func setupTestContext(t *testing.T) *TestContext {
	t.Helper()

	port, _ := strconv.Atoi(getEnvOrDefault("TEST_DB_PORT", "5432"))
	dbConfig := database.Config{
		Host:     getEnvOrDefault("TEST_DB_HOST", "127.0.0.1"),
		Port:     port,
		User:     getEnvOrDefault("TEST_DB_USER", "postgres"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "postgres"),
		DBName:   fmt.Sprintf("test_integration_%d", time.Now().UnixNano()),
		SSLMode:  "disable",
	}

	adminConfig := dbConfig
	adminConfig.DBName = "postgres"

	ctx := context.Background()
	adminDB, err := database.Connect(ctx, adminConfig)
	if err != nil {
		t.Skipf("Skipping test: could not connect to PostgreSQL: %v", err)
	}

	_, err = adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbConfig.DBName))
	adminDB.Close()
	require.NoError(t, err, "create test database")

	testDB, err := database.Connect(ctx, dbConfig)
	require.NoError(t, err, "connect to test database")

	require.NoError(t, migration.NewMigrator(testDB).Run(), "run migrations")

	wsHub := websocket.NewHub()
	go wsHub.Run()

	analysisService := service.NewAnalysisService(analysis.Default(), repository.NewPostgresAnalysisStore(testDB), wsHub, service.AnalysisOptions{
		CacheTTL:             time.Minute,
		MinDescriptionLength: 20,
		MaxDescriptionLength: 5000,
	})

	gin.SetMode(gin.TestMode)
	router := handler.NewRouter(handler.RouterConfig{
		Analysis:             analysisService,
		Hub:                  wsHub,
		DB:                   testDB,
		Version:              "integration",
		MaxDescriptionLength: 5000,
	})

	t.Cleanup(func() {
		analysisService.Close()
		wsHub.Stop()
		testDB.Close()
		adminDB, _ := database.Connect(context.Background(), adminConfig)
		if adminDB != nil {
			adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbConfig.DBName))
			adminDB.Close()
		}
	})

	return &TestContext{
		DB:       testDB,
		Router:   router,
		WSHub:    wsHub,
		Analysis: analysisService,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (tc *TestContext) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tc.Router.ServeHTTP(w, req)
	return w
}

type analyzeResponse struct {
	Success bool                 `json:"success"`
	Data    model.AnalysisResult `json:"data"`
	Meta    model.Meta           `json:"meta"`
}

func TestCompleteAnalysisWorkflow(t *testing.T) {
	tc := setupTestContext(t)

	var id string

	t.Run("Analyze", func(t *testing.T) {
		w := tc.request(http.MethodPost, "/api/v1/analyze", map[string]interface{}{
			"description": "Chceme SaaS platformu pro správu HR s předplatným",
			"quiz_answers": map[string]interface{}{
				"budget":   "large",
				"timeline": "normal",
			},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, model.ProjectTypeSaaS, resp.Data.ProjectType)
		assert.NotNil(t, resp.Data.QuizContext)
		id = resp.Meta.AnalysisID
	})

	t.Run("PersistedInPostgres", func(t *testing.T) {
		var projectType string
		err := tc.DB.QueryRow("SELECT project_type FROM analyses WHERE id = $1", id).Scan(&projectType)
		require.NoError(t, err)
		assert.Equal(t, "saas", projectType)
	})

	t.Run("ListAndGet", func(t *testing.T) {
		w := tc.request(http.MethodGet, "/api/v1/analyses?type=saas", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var list struct {
			Data []model.AnalysisSummary `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Data, 1)
		assert.Equal(t, id, list.Data[0].ID)
		assert.NotEmpty(t, list.Data[0].ProjectName)

		w = tc.request(http.MethodGet, "/api/v1/analyses/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got struct {
			Data model.AnalysisRecord `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "large", got.Data.QuizAnswers.String("budget"))
	})

	t.Run("Export", func(t *testing.T) {
		w := tc.request(http.MethodGet, "/api/v1/analyses/"+id+"/export", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Positive(t, w.Body.Len())
	})

	t.Run("Delete", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, tc.request(http.MethodDelete, "/api/v1/analyses/"+id, nil).Code)
		assert.Equal(t, http.StatusNotFound, tc.request(http.MethodGet, "/api/v1/analyses/"+id, nil).Code)
	})
}

func TestConcurrentAnalyses(t *testing.T) {
	tc := setupTestContext(t)

	descriptions := []string{
		"Potřebuji e-shop s GoPay platbou a Zásilkovnou",
		"Chci mobilní aplikaci pro iOS a Android",
		"Chceme SaaS platformu pro správu HR s předplatným",
		"Marketingová kampaň na Instagramu a Facebooku",
		"Chatbot s umělou inteligencí pro zákaznickou podporu",
	}

	var wg sync.WaitGroup
	results := make(chan int, len(descriptions))
	for _, desc := range descriptions {
		wg.Add(1)
		go func(desc string) {
			defer wg.Done()
			results <- tc.request(http.MethodPost, "/api/v1/analyze", map[string]string{"description": desc}).Code
		}(desc)
	}
	wg.Wait()
	close(results)

	for code := range results {
		assert.Equal(t, http.StatusOK, code)
	}

	n, err := tc.Analysis.Store().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(descriptions), n)
}

func TestReadinessWithDatabase(t *testing.T) {
	tc := setupTestContext(t)

	w := tc.request(http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store"`)

	w = tc.request(http.MethodGet, "/health/db", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"open_connections"`)
}
