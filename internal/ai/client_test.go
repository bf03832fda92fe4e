package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/config"
)

func testAIConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		BaseURL:          baseURL,
		APIKey:           "test-key",
		Model:            "gpt-4o-mini",
		Temperature:      0.7,
		FrequencyPenalty: 0.3,
		MaxTokens:        300,
		Timeout:          5 * time.Second,
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(config.AIConfig{APIKey: "k", Model: "m"})
	assert.Error(t, err)

	_, err = NewClient(config.AIConfig{BaseURL: "http://localhost", Model: "m"})
	assert.Error(t, err)

	_, err = NewClient(config.AIConfig{BaseURL: "http://localhost", APIKey: "k"})
	assert.Error(t, err)

	client, err := NewClient(testAIConfig("http://localhost/v1/"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/v1", client.baseURL)
}

func TestClient_Complete_Success(t *testing.T) {
	var captured completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Oi! Posso ajudar com a matrícula."},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(testAIConfig(server.URL + "/v1"))
	require.NoError(t, err)

	choice, err := client.Complete(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "system prompt"},
		{Role: RoleUser, Content: "quero me matricular"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oi! Posso ajudar com a matrícula.", choice.Message.Content)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	assert.InDelta(t, 0.3, captured.FrequencyPenalty, 0.001)
	assert.Equal(t, "auto", captured.ToolChoice)
	require.Len(t, captured.Tools, 1)
	assert.Equal(t, endConversationToolName, captured.Tools[0].Function.Name)
}

func TestClient_Complete_ToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[{"id":"call-1","type":"function","function":{"name":"end_conversation","arguments":"{\"reason\":\"resolved\",\"final_message\":\"Até logo!\"}"}}]},"finish_reason":"tool_calls"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(testAIConfig(server.URL))
	require.NoError(t, err)

	choice, err := client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "tchau"}})
	require.NoError(t, err)
	require.Len(t, choice.Message.ToolCalls, 1)
	assert.Equal(t, endConversationToolName, choice.Message.ToolCalls[0].Function.Name)
}

func TestClient_Complete_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(testAIConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "oi"}})
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCompletion)
}

func TestClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client, err := NewClient(testAIConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "oi"}})
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCompletion)
}

func TestClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client, err := NewClient(testAIConfig(server.URL))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []ChatMessage{{Role: RoleUser, Content: "oi"}})
	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrCompletion)
}
