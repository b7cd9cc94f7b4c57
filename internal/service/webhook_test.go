package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freelancer-ai/analysis-api/internal/model"
)

func TestWebhookRefusesInternalAddress(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	record := model.AnalysisRecord{ID: "an-1", Result: &model.AnalysisResult{ProjectType: model.ProjectTypeSaaS}}

	err := NewWebhookService(false).SendResult(context.Background(), srv.URL, record)
	require.Error(t, err)
	assert.ErrorIs(t, err, errInternalAddress)
	assert.Zero(t, calls.Load(), "o servidor local não pode ser contatado")

	// com a rede interna liberada o mesmo servidor recebe o resultado
	require.NoError(t, NewWebhookService(true).SendResult(context.Background(), srv.URL, record))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRefuseInternal(t *testing.T) {
	for _, addr := range []string{"127.0.0.1:80", "10.0.0.1:443", "169.254.169.254:80", "[::1]:80", "[fe80::1]:80"} {
		assert.ErrorIs(t, refuseInternal("tcp", addr, nil), errInternalAddress, addr)
	}
	assert.NoError(t, refuseInternal("tcp", "93.184.216.34:443", nil))
	assert.Error(t, refuseInternal("tcp", "sem-porta", nil))
}
