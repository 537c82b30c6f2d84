package gemini

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
	"google.golang.org/genai"

	"github.com/Yukio-aki/ai-office/internal/adapters/driven/llm/apiclient"
	"github.com/Yukio-aki/ai-office/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresKey(t *testing.T) {
	_, err := NewLLMService(context.Background(), Config{})
	assert.Error(t, err)
}

func TestLLMService_Chat(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"), r.URL.Path)
		assert.Contains(t, r.URL.Path, DefaultModel)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")
		contents, ok := body["contents"].([]any)
		require.True(t, ok)
		assert.Len(t, contents, 2)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"<html>"},{"text":"</html>"}]},"finishReason":"STOP"}]}`))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "system", Content: "You are a developer."},
		{Role: "user", Content: "Build a page."},
		{Role: "assistant", Content: "Which colors?"},
	}, driven.ChatOptions{MaxTokens: 256, Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", out)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestLLMService_NoCandidates(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	assert.ErrorIs(t, err, errNoCandidates)
}

func TestLLMService_APIErrorIsClassified(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := svc.Generate(context.Background(), "x", driven.GenerateOptions{})
	var statusErr *apiclient.StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.True(t, statusErr.Retryable())
}

func TestClassify(t *testing.T) {
	err := classify(genai.APIError{Code: 400, Message: "bad"})
	var statusErr *apiclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.False(t, statusErr.Retryable())

	plain := classify(errors.New("dial tcp: refused"))
	assert.False(t, errors.As(plain, &statusErr))
	assert.Contains(t, plain.Error(), "gemini:")
}
