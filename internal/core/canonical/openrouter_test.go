package canonical

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"shopping-list-engine/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenRouterClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewOpenRouterClient(&config.Config{
		Canonical: config.CanonicalConfig{
			BaseURL:   srv.URL,
			APIKey:    "test-key",
			Model:     "test-model",
			MaxTokens: 200,
		},
	})
}

func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func TestOpenRouterClientCanonicalize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "Shopping List Engine", r.Header.Get("X-Title"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body.Model)
		require.Len(t, body.Messages, 1)
		assert.Contains(t, body.Messages[0].Content, `["Cherry Tomato","Tomatoes"]`)

		chatReply(w, "```json\n{\"Cherry Tomato\": \"Tomato\", \"Tomatoes\": \" Tomato \", \"Count\": 3, \"Blank\": \"\"}\n```")
	})

	mapping, err := client.Canonicalize(context.Background(), []string{"Cherry Tomato", "Tomatoes"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Cherry Tomato": "Tomato", "Tomatoes": "Tomato"}, mapping)
}

func TestOpenRouterClientSkipsEmptyBatch(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	mapping, err := client.Canonicalize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, mapping)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestOpenRouterClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>oops</html>`))
		}},
		{"prose reply", func(w http.ResponseWriter, r *http.Request) {
			chatReply(w, "Sorry, I cannot help with that.")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Canonicalize(context.Background(), []string{"Tomatoes"})
			assert.Error(t, err)
		})
	}
}

func TestParseMapping(t *testing.T) {
	mapping, err := parseMapping(`Here you go: {"Eggs": "Egg"} hope that helps`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Eggs": "Egg"}, mapping)

	mapping, err = parseMapping(`{Tomatoes: "Tomato"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Tomatoes": "Tomato"}, mapping)

	_, err = parseMapping(`{"Eggs": }`)
	assert.Error(t, err)
}
