package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskSendsSystemAndUserMessages(t *testing.T) {
	var got chatCompletionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Hello there"}},
			},
		})
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "test-model")
	reply, err := c.Ask(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "Hello there", reply)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system prompt", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "test-model", got.Model)
}

func TestAskSurfacesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := New("test-key", srv.URL, "")
	_, err := c.Ask(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestAskRequiresAPIKey(t *testing.T) {
	c := New("", "http://localhost", "m")
	_, err := c.Ask(context.Background(), "s", "u")
	assert.Error(t, err)
}
