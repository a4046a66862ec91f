package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docflow/internal/config"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageServer(t *testing.T, content []map[string]any, seen *map[string]any) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     content,
			"model":       DefaultAnthropicModel,
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 7},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestAnthropic(t *testing.T, url string) *Anthropic {
	t.Helper()
	a, err := NewAnthropic(
		config.LLMConfig{AnthropicAPIKey: "test-key", AnthropicURL: url},
		option.WithMaxRetries(0),
	)
	require.NoError(t, err)
	return a
}

func TestAnthropic_Complete(t *testing.T) {
	var body map[string]any
	ts := messageServer(t, []map[string]any{
		{"type": "text", "text": `{"contract_type":`},
		{"type": "text", "text": `"NDA"}`},
	}, &body)

	a := newTestAnthropic(t, ts.URL)
	out, err := a.Complete(context.Background(), CompletionRequest{MaxTokens: 2000, Prompt: "Analyze this"})

	require.NoError(t, err)
	assert.Equal(t, `{"contract_type":"NDA"}`, out)

	assert.Equal(t, DefaultAnthropicModel, body["model"])
	assert.EqualValues(t, 2000, body["max_tokens"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestAnthropic_CompleteUsesRequestedModel(t *testing.T) {
	var body map[string]any
	ts := messageServer(t, []map[string]any{{"type": "text", "text": "ok"}}, &body)

	a := newTestAnthropic(t, ts.URL)
	_, err := a.Complete(context.Background(), CompletionRequest{Model: "claude-haiku-4-5-20251001", MaxTokens: 10, Prompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5-20251001", body["model"])
}

func TestAnthropic_CompleteEmpty(t *testing.T) {
	ts := messageServer(t, []map[string]any{}, nil)

	a := newTestAnthropic(t, ts.URL)
	_, err := a.Complete(context.Background(), CompletionRequest{MaxTokens: 10, Prompt: "p"})

	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestAnthropic_CompleteAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`)) //nolint:errcheck
	}))
	defer ts.Close()

	a := newTestAnthropic(t, ts.URL)
	_, err := a.Complete(context.Background(), CompletionRequest{MaxTokens: 10, Prompt: "p"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
}

func TestNewAnthropic_RequiresKey(t *testing.T) {
	_, err := NewAnthropic(config.LLMConfig{})
	assert.Error(t, err)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.LLMConfig{Provider: "markov"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markov")
}

func TestNew_DefaultsToAnthropic(t *testing.T) {
	c, err := New(context.Background(), config.LLMConfig{AnthropicAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, c)
	assert.NoError(t, c.Close())
}
