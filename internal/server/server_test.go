package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/safarlabs/railsathi/internal/config"
	"github.com/safarlabs/railsathi/internal/dialogue"
	"github.com/safarlabs/railsathi/internal/fares"
	"github.com/safarlabs/railsathi/internal/session"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := session.NewStore(16, func() (*dialogue.Controller, error) {
		return dialogue.NewController(nil, nil, fares.NewSampleProvider(1, nil), zap.NewNop())
	}, zap.NewNop())
	require.NoError(t, err)

	srv, err := NewServer(store, zap.NewNop(), config.ServerConfig{
		Host:        "127.0.0.1",
		Port:        8080,
		CORSOrigins: []string{"*"},
	})
	require.NoError(t, err)
	return srv
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("requires a store", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), config.ServerConfig{})
		assert.Error(t, err)
	})

	t.Run("requires a logger", func(t *testing.T) {
		store, err := session.NewStore(1, func() (*dialogue.Controller, error) {
			return dialogue.NewController(nil, nil, fares.NewSampleProvider(1, nil), nil)
		}, nil)
		require.NoError(t, err)
		_, err = NewServer(store, nil, config.ServerConfig{})
		assert.Error(t, err)
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.Sessions)
}

func TestChat(t *testing.T) {
	srv := newTestServer(t)

	t.Run("first message mints a session", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/chat", ChatRequest{Message: "karachi se lahore"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.SessionID)
		assert.Equal(t, "date", resp.Stage)
		assert.Contains(t, resp.Reply, "Karachi → Lahore")
	})

	t.Run("session id continues the conversation", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/chat", ChatRequest{Message: "islamabad se multan"})
		var first ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
		require.Equal(t, "date", first.Stage)

		rec = postJSON(t, srv, "/api/chat", ChatRequest{Message: "kal", SessionID: first.SessionID})
		var second ChatResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
		assert.Equal(t, first.SessionID, second.SessionID)
		assert.Equal(t, "budget", second.Stage)
	})

	t.Run("empty message is rejected", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/chat", ChatRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReset(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", ChatRequest{Message: "karachi se lahore"})
	var chat ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chat))

	rec = postJSON(t, srv, "/api/reset", ResetRequest{SessionID: chat.SessionID})
	require.Equal(t, http.StatusOK, rec.Code)
	var reset ResetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	assert.True(t, reset.OK)

	// The old ID now starts a brand new conversation.
	rec = postJSON(t, srv, "/api/chat", ChatRequest{Message: "kal", SessionID: chat.SessionID})
	var fresh ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fresh))
	assert.NotEqual(t, "budget", fresh.Stage, "state must not survive a reset")

	t.Run("missing session_id is rejected", func(t *testing.T) {
		rec := postJSON(t, srv, "/api/reset", ResetRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv, "/api/chat", ChatRequest{Message: "karachi se lahore"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "railsathi_chat_turns_total")
}
