package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunnryd/planpal/internal/calendar"
	"github.com/harunnryd/planpal/internal/config"
	planpalErrors "github.com/harunnryd/planpal/internal/errors"
	"github.com/harunnryd/planpal/internal/logger"
)

type stubAgent struct {
	message   string
	gateway   calendar.Gateway
	sessionID string
	reply     string
}

func (a *stubAgent) Run(ctx context.Context, message string, gateway calendar.Gateway) string {
	a.message = message
	a.gateway = gateway
	a.sessionID = logger.GetSessionID(ctx)
	return a.reply
}

func newTestServer(t *testing.T, agent Agent, gateways GatewayFactory, metrics http.Handler) http.Handler {
	t.Helper()
	srv, err := NewServer(&config.ServerConfig{Port: 0}, agent, gateways, metrics)
	require.NoError(t, err)
	return srv.Handler()
}

func memoryGateways(tokens *[]string) GatewayFactory {
	return func(ctx context.Context, token string) (calendar.Gateway, error) {
		*tokens = append(*tokens, token)
		return calendar.NewMemoryGateway(), nil
	}
}

func do(h http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	var tokens []string
	h := newTestServer(t, &stubAgent{}, memoryGateways(&tokens), nil)

	for _, path := range []string{"/", "/health"} {
		rec := do(h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String(), path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/nope", "", "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/", "", "").Code)
}

func TestAgent_RepliesWithAgentText(t *testing.T) {
	var tokens []string
	agent := &stubAgent{reply: "You have no upcoming events."}
	h := newTestServer(t, agent, memoryGateways(&tokens), nil)

	rec := do(h, http.MethodPost, "/agent", "Bearer ya29.token", `{"message":"what is on my calendar?","session_id":"s-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp agentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "You have no upcoming events.", resp.Response)
	assert.NotEmpty(t, resp.TraceID)

	assert.Equal(t, []string{"ya29.token"}, tokens)
	assert.Equal(t, "what is on my calendar?", agent.message)
	assert.Equal(t, "s-1", agent.sessionID)
	assert.NotNil(t, agent.gateway)
}

func TestAgent_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name   string
		method string
		auth   string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "Bearer t", "", http.StatusMethodNotAllowed},
		{"missing header", http.MethodPost, "", `{"message":"hi"}`, http.StatusUnauthorized},
		{"wrong scheme", http.MethodPost, "Basic dXNlcjpwYXNz", `{"message":"hi"}`, http.StatusUnauthorized},
		{"empty token", http.MethodPost, "Bearer   ", `{"message":"hi"}`, http.StatusUnauthorized},
		{"invalid json", http.MethodPost, "Bearer t", `{"message":`, http.StatusBadRequest},
		{"blank message", http.MethodPost, "Bearer t", `{"message":"  "}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokens []string
			agent := &stubAgent{}
			h := newTestServer(t, agent, memoryGateways(&tokens), nil)

			rec := do(h, tt.method, "/agent", tt.auth, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Empty(t, tokens)
			assert.Empty(t, agent.message)
		})
	}
}

func TestAgent_GatewayErrors(t *testing.T) {
	unauth := func(ctx context.Context, token string) (calendar.Gateway, error) {
		return nil, planpalErrors.Unauthenticated("token rejected")
	}
	h := newTestServer(t, &stubAgent{}, unauth, nil)
	rec := do(h, http.MethodPost, "/agent", "Bearer t", `{"message":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"token rejected"}`, rec.Body.String())

	broken := func(ctx context.Context, token string) (calendar.Gateway, error) {
		return nil, errors.New("dial tcp: refused")
	}
	h = newTestServer(t, &stubAgent{}, broken, nil)
	rec = do(h, http.MethodPost, "/agent", "Bearer t", `{"message":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	var tokens []string
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("planpal_agent_turns_total 0\n"))
	})

	h := newTestServer(t, &stubAgent{}, memoryGateways(&tokens), metrics)
	rec := do(h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "planpal_agent_turns_total")

	h = newTestServer(t, &stubAgent{}, memoryGateways(&tokens), nil)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/metrics", "", "").Code)
}

func TestNewServer_Validation(t *testing.T) {
	var tokens []string
	_, err := NewServer(&config.ServerConfig{}, nil, memoryGateways(&tokens), nil)
	assert.Error(t, err)

	_, err = NewServer(&config.ServerConfig{}, &stubAgent{}, nil, nil)
	assert.Error(t, err)

	_, err = NewServer(&config.ServerConfig{ReadTimeout: "soon"}, &stubAgent{}, memoryGateways(&tokens), nil)
	assert.ErrorContains(t, err, "read timeout")
}

func TestStop_WithoutStart(t *testing.T) {
	var tokens []string
	srv, err := NewServer(&config.ServerConfig{}, &stubAgent{}, memoryGateways(&tokens), nil)
	require.NoError(t, err)
	assert.NoError(t, srv.Stop(context.Background()))
}
