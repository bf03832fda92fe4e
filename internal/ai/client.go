package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/config"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
)

const endConversationToolName = "end_conversation"

var endConversationParameters = json.RawMessage(`{
	"type": "object",
	"properties": {
		"reason": {
			"type": "string",
			"description": "Short reason the conversation is over, e.g. resolved, handoff requested, user said goodbye."
		},
		"final_message": {
			"type": "string",
			"description": "The farewell message to send to the contact before closing."
		}
	},
	"required": ["reason"]
}`)

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	baseURL          string
	apiKey           string
	model            string
	temperature      float32
	frequencyPenalty float32
	maxTokens        int
	http             *http.Client
}

// NewClient builds a completion client from configuration.
func NewClient(cfg config.AIConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("ai client: base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("ai client: api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("ai client: model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:           cfg.APIKey,
		model:            cfg.Model,
		temperature:      cfg.Temperature,
		frequencyPenalty: cfg.FrequencyPenalty,
		maxTokens:        cfg.MaxTokens,
		http:             &http.Client{Timeout: timeout},
	}, nil
}

// Complete performs one chat completion with the end_conversation tool
// offered. The first choice is returned verbatim.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (*completionChoice, error) {
	body, err := json.Marshal(completionRequest{
		Model:            c.model,
		Temperature:      c.temperature,
		FrequencyPenalty: c.frequencyPenalty,
		MaxTokens:        c.maxTokens,
		Messages:         messages,
		Tools: []tool{{
			Type: "function",
			Function: toolFunction{
				Name:        endConversationToolName,
				Description: "Close the conversation when the contact's need is resolved or they say goodbye.",
				Parameters:  endConversationParameters,
			},
		}},
		ToolChoice: "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode completion request: %w", apperrors.ErrCompletion, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build completion request: %w", apperrors.ErrCompletion, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	startTime := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observer.ObserveCompletionRequest(time.Since(startTime), err)
		return nil, fmt.Errorf("%w: completion request failed: %w", apperrors.ErrCompletion, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		observer.ObserveCompletionRequest(time.Since(startTime), err)
		return nil, fmt.Errorf("%w: failed to read completion response: %w", apperrors.ErrCompletion, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("%w: completion endpoint returned status %d: %s", apperrors.ErrCompletion, resp.StatusCode, truncateBody(payload))
		observer.ObserveCompletionRequest(time.Since(startTime), statusErr)
		return nil, statusErr
	}

	var parsed completionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		observer.ObserveCompletionRequest(time.Since(startTime), err)
		return nil, fmt.Errorf("%w: failed to decode completion response: %w", apperrors.ErrCompletion, err)
	}
	if parsed.Error != nil {
		apiErr := fmt.Errorf("%w: completion endpoint error: %s", apperrors.ErrCompletion, parsed.Error.Message)
		observer.ObserveCompletionRequest(time.Since(startTime), apiErr)
		return nil, apiErr
	}
	if len(parsed.Choices) == 0 {
		emptyErr := fmt.Errorf("%w: completion response has no choices", apperrors.ErrCompletion)
		observer.ObserveCompletionRequest(time.Since(startTime), emptyErr)
		return nil, emptyErr
	}

	observer.ObserveCompletionRequest(time.Since(startTime), nil)
	return &parsed.Choices[0], nil
}

func truncateBody(payload []byte) string {
	const maxLen = 512
	s := string(payload)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
