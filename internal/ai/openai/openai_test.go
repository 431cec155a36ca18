package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/FelipeCgrillo/liquidapp/internal/ai"
	"github.com/FelipeCgrillo/liquidapp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, captured *map[string]any, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
}

func testConfig(baseURL string) config.GroqConfig {
	return config.GroqConfig{
		APIKey:          "test-key",
		BaseURL:         baseURL,
		VisionModel:     "vision-model",
		ReportModel:     "report-model",
		VisionMaxTokens: 1500,
		ReportMaxTokens: 3000,
	}
}

func TestAnalyzeImage_SendsImageURLAndJSONFormat(t *testing.T) {
	var captured map[string]any
	server := newTestServer(t, &captured, `{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"model": "vision-model",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\":true}"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 900, "completion_tokens": 100, "total_tokens": 1000}
	}`)
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	completion, err := client.AnalyzeImage(context.Background(), "sistema", "usuario", "https://storage.local/firmada.jpg")
	require.NoError(t, err)

	assert.Equal(t, `{"ok":true}`, completion.Text)
	assert.Equal(t, "vision-model", completion.Model)
	assert.Equal(t, 1000, completion.TokensUsed)

	assert.Equal(t, "vision-model", captured["model"])
	assert.EqualValues(t, 1500, captured["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, captured["response_format"])

	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	require.Len(t, parts, 2)
	image := parts[0].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "https://storage.local/firmada.jpg", image["image_url"].(map[string]any)["url"])
	assert.Equal(t, "high", image["image_url"].(map[string]any)["detail"])
}

func TestComplete_UsesReportModel(t *testing.T) {
	var captured map[string]any
	server := newTestServer(t, &captured, `{
		"id": "chatcmpl-2",
		"object": "chat.completion",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "## Resumen Ejecutivo"}, "finish_reason": "stop"}],
		"usage": {"total_tokens": 42}
	}`)
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	completion, err := client.Complete(context.Background(), "sistema", "informe")
	require.NoError(t, err)

	assert.Equal(t, "## Resumen Ejecutivo", completion.Text)
	assert.Equal(t, "report-model", completion.Model)
	assert.Equal(t, "report-model", captured["model"])
	assert.EqualValues(t, 3000, captured["max_tokens"])
}

func TestCreate_NoChoices(t *testing.T) {
	var captured map[string]any
	server := newTestServer(t, &captured, `{"id":"x","object":"chat.completion","choices":[]}`)
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, ai.ErrEmptyCompletion)
}

func TestCreate_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).AnalyzeImage(context.Background(), "s", "u", "https://img")
	assert.Error(t, err)
}
