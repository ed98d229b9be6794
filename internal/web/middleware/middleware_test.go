package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/credport/internal/config"
	"github.com/JonMunkholm/credport/internal/logging"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "debug", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestAPIKeyAuth_Responses(t *testing.T) {
	cfg := &config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}
	h := APIKeyAuth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		key      string
		wantCode int
		wantErr  string
	}{
		{name: "missing", wantCode: http.StatusUnauthorized, wantErr: "AUTH001"},
		{name: "invalid", key: "nope", wantCode: http.StatusForbidden, wantErr: "AUTH002"},
		{name: "valid", key: "k1", wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			req := httptest.NewRequest(http.MethodPost, "/api/imports", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr == "" {
				return
			}
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body authError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantErr, body.Code)
			assert.NotEmpty(t, body.Message)
			assert.NotEmpty(t, body.Action)
			if tt.key != "" {
				assert.NotContains(t, logs.String(), tt.key)
			}
		})
	}
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	h := APIKeyAuth(&config.SecurityConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/formats", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIsValidAPIKey(t *testing.T) {
	assert.True(t, isValidAPIKey("b", []string{"a", "b"}))
	assert.False(t, isValidAPIKey("c", []string{"a", "b"}))
	assert.False(t, isValidAPIKey("a", nil))
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLevel string
	}{
		{name: "ok", status: http.StatusOK, body: "hello", wantLevel: "INFO"},
		{name: "client error", status: http.StatusUnprocessableEntity, body: "{}", wantLevel: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			h := chimw.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})))

			req := httptest.NewRequest(http.MethodPost, "/api/imports?token=secret", nil)
			req.Header.Set("X-Real-IP", "203.0.113.9")
			h.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, "/api/imports", entry["path"])
			assert.EqualValues(t, tt.status, entry["status"])
			assert.EqualValues(t, len(tt.body), entry["bytes"])
			assert.Equal(t, "203.0.113.9", entry["ip"])
			assert.NotEmpty(t, entry["request_id"])
			assert.Equal(t, 1, bytes.Count(logs.Bytes(), []byte(`"request_id"`)))
			assert.NotContains(t, logs.String(), "secret")
		})
	}
}
