package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-4.1-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGenerate(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, "  High-value intro.  ", &seen)

	c := NewOpenAIClient("test-key", "", srv.URL+"/v1")
	text, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "hello", MaxTokens: 80})
	require.NoError(t, err)
	assert.Equal(t, "High-value intro.", text)

	assert.Equal(t, "gpt-4.1-mini", seen["model"])
	assert.EqualValues(t, 80, seen["max_tokens"])
	msgs, ok := seen["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestOpenAIGenerateEmpty(t *testing.T) {
	srv := chatServer(t, "   ", nil)

	c := NewOpenAIClient("test-key", "gpt-4.1-mini", srv.URL+"/v1")
	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestOpenAIGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewOpenAIClient("test-key", "gpt-4.1-mini", srv.URL+"/v1")
	_, err := c.Generate(context.Background(), Request{Prompt: "hello"})
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	c, err := NewClient(ctx, Config{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	c, err = NewClient(ctx, Config{Provider: "Claude", APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ClaudeClient{}, c)

	_, err = NewClient(ctx, Config{Provider: "gemini"})
	assert.Error(t, err, "gemini requires a key")

	_, err = NewClient(ctx, Config{Provider: "watson", APIKey: "k"})
	assert.ErrorContains(t, err, "unsupported llm provider")
}
