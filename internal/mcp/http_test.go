package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/provstats/core"
	"github.com/huangsam/provstats/internal/acl"
	"github.com/huangsam/provstats/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, pinger Pinger) *gin.Engine {
	log := zaptest.NewLogger(t).Sugar()
	ms := store.NewMemoryStore(nil)
	scopes := acl.StaticProvider{}
	s := NewMCPServer(core.NewStatisticsService(ms, ms, scopes, log), core.NewCatalogService(ms, scopes, log), log)
	return NewRouter(s, pinger, log)
}

func TestHealthProbes(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		pinger Pinger
		code   int
		status string
	}{
		{"liveness", livenessPath, fakePinger{err: errors.New("down")}, http.StatusOK, "ok"},
		{"readiness ok", readinessPath, fakePinger{}, http.StatusOK, "ok"},
		{"readiness down", readinessPath, fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.pinger)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.code, w.Code)
			var body healthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Status)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, fakePinger{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, livenessPath, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, metricsPath, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "provstats_http_requests_total")
}

func TestMCPEndpointToolCall(t *testing.T) {
	router := newTestRouter(t, fakePinger{})

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"provstats_mypermissions_get","arguments":{}}}`
	req := httptest.NewRequest(http.MethodPost, endpointPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set(AgentIDHeader, "ops")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unrestricted")
}

func TestAgentFromHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, endpointPath, nil)
	_, ok := acl.AgentIDFrom(agentFromHeader(context.Background(), req))
	assert.False(t, ok)

	req.Header.Set(AgentIDHeader, "reporting-bot")
	id, ok := acl.AgentIDFrom(agentFromHeader(context.Background(), req))
	assert.True(t, ok)
	assert.Equal(t, "reporting-bot", id)
}
