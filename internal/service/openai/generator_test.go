package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"TrueSignal/internal/domain/models"
	drepo "TrueSignal/internal/domain/repository"
	xlogger "TrueSignal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"ticker\":\"ACME\"}"}}],
  "usage": {"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150}
}`

type capturedRequest struct {
	Model          string                   `json:"model"`
	Temperature    float64                  `json:"temperature"`
	MaxTokens      int64                    `json:"max_tokens"`
	Messages       []map[string]interface{} `json:"messages"`
	ResponseFormat map[string]interface{}   `json:"response_format"`
}

func newGenerator(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Generator {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:           "test",
		BaseURL:          srv.URL,
		Model:            "gpt-4o",
		Timeout:          timeout,
		MaxTokens:        5000,
		Temperature:      0.2,
		RetryTemperature: 0,
	}, xlogger.Nop())
}

func TestGenerator_Complete(t *testing.T) {
	var got []capturedRequest
	g := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req capturedRequest
		require.NoError(t, json.Unmarshal(body, &req))
		got = append(got, req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}, time.Second)

	c, err := g.Complete(context.Background(), models.CompletionRequest{SystemPrompt: "sys", UserPrompt: "user"})
	require.NoError(t, err)
	assert.Equal(t, `{"ticker":"ACME"}`, c.Text)
	assert.Equal(t, models.TokenUsage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150}, c.Usage)

	_, err = g.Complete(context.Background(), models.CompletionRequest{
		SystemPrompt: "sys", UserPrompt: "user", RepairHint: "fix it", LowCreativity: true,
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "gpt-4o", got[0].Model)
	assert.Equal(t, 0.2, got[0].Temperature)
	assert.Equal(t, int64(5000), got[0].MaxTokens)
	assert.Equal(t, "json_object", got[0].ResponseFormat["type"])
	require.Len(t, got[0].Messages, 2)
	assert.Equal(t, "system", got[0].Messages[0]["role"])

	assert.Equal(t, 0.0, got[1].Temperature)
	require.Len(t, got[1].Messages, 3)
	assert.Equal(t, "fix it", got[1].Messages[2]["content"])
}

func TestGenerator_Errors(t *testing.T) {
	g := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}, time.Second)

	_, err := g.Complete(context.Background(), models.CompletionRequest{UserPrompt: "x"})
	assert.ErrorIs(t, err, drepo.ErrUpstream)
	assert.NotErrorIs(t, err, drepo.ErrUpstreamTimeout)

	slow := newGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, 30*time.Millisecond)

	_, err = slow.Complete(context.Background(), models.CompletionRequest{UserPrompt: "x"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, drepo.ErrUpstreamTimeout)
}
