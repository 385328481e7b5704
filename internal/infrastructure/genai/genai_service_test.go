package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ikarus3d/go-backend/internal/cfg"
	"github.com/ikarus3d/go-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func testCfg(baseURL string, apiKey string) *cfg.GenAICfg {
	return &cfg.GenAICfg{
		BaseURL:   baseURL,
		Model:     "test-model",
		ApiKey:    apiKey,
		Timeout:   2 * time.Second,
		MaxTokens: 128,
	}
}

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "describe a table", req.Prompt)
		assert.Equal(t, 128, req.MaxTokens)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]string{{"text": "  A fine table.  "}},
		})
	}))
	defer srv.Close()

	svc := NewGenAIService(testCfg(srv.URL, "secret"), nopLogger{})

	text, err := svc.Complete(context.Background(), "describe a table")
	require.NoError(t, err)
	assert.Equal(t, "A fine table.", text)
}

func TestComplete_NoAuthHeaderWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]string{{"text": "ok"}},
		})
	}))
	defer srv.Close()

	svc := NewGenAIService(testCfg(srv.URL, ""), nopLogger{})

	_, err := svc.Complete(context.Background(), "prompt")
	assert.NoError(t, err)
}

func TestComplete_UpstreamErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewGenAIService(testCfg(srv.URL, ""), nopLogger{})

	_, err := svc.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, e.ErrUpstreamUnavailable)
	// Генерация платная, повторов быть не должно
	assert.EqualValues(t, 1, calls.Load())
}

func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	svc := NewGenAIService(testCfg(srv.URL, ""), nopLogger{})

	_, err := svc.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, e.ErrUpstreamUnavailable)
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]string{}})
	}))
	defer srv.Close()

	svc := NewGenAIService(testCfg(srv.URL, ""), nopLogger{})

	_, err := svc.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestComplete_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]string{{"text": "   "}},
		})
	}))
	defer srv.Close()

	svc := NewGenAIService(testCfg(srv.URL, ""), nopLogger{})

	_, err := svc.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}
