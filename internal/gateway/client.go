// Package gateway delivers outbound messages through the WhatsApp messaging
// gateway's HTTP API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/apperrors"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/config"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/internal/observer"
	"gitlab.com/vialumen/api/leadtalk-webhook-processor/pkg/logger"
)

// Client sends text messages through the gateway. Each instance has its own
// send endpoint; the gateway authenticates with a static API key header.
type Client struct {
	baseURL string
	apiKey  string
	delayMs int
	http    *http.Client
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.GatewayConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("gateway client: base url is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gateway client: api key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		delayMs: cfg.MessageDelayMs,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
	Delay  int    `json:"delay,omitempty"`
}

type sendTextResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
	Status string `json:"status"`
}

// SendText delivers a text message to phone via the named instance and
// returns the provider message ID when the gateway reports one.
func (c *Client) SendText(ctx context.Context, instanceName, phone, text string) (string, error) {
	body, err := json.Marshal(sendTextRequest{
		Number: phone,
		Text:   text,
		Delay:  c.delayMs,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to encode send request: %w", apperrors.ErrGateway, err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, instanceName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: failed to build send request: %w", apperrors.ErrGateway, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		observer.IncGatewaySend(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: send request timed out: %w", apperrors.ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: send request failed: %w", apperrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		observer.IncGatewaySend(err)
		return "", fmt.Errorf("%w: failed to read send response: %w", apperrors.ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("%w: gateway returned status %d: %s", apperrors.ErrGateway, resp.StatusCode, truncateBody(payload))
		observer.IncGatewaySend(statusErr)
		return "", statusErr
	}

	if len(bytes.TrimSpace(payload)) == 0 {
		// Success requires a non-empty acknowledgment payload; a bare 2xx
		// with no body is treated as a failed delivery.
		emptyErr := fmt.Errorf("%w: gateway returned status %d with an empty acknowledgment", apperrors.ErrGateway, resp.StatusCode)
		observer.IncGatewaySend(emptyErr)
		return "", emptyErr
	}

	var parsed sendTextResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		// Some gateway versions return a bare acknowledgement; a 2xx with a
		// non-empty but unparseable body still counts as delivered.
		logger.FromContext(ctx).Debug("Gateway send response was not JSON",
			zap.String("instance", instanceName),
			zap.Error(err))
		observer.IncGatewaySend(nil)
		return "", nil
	}

	observer.IncGatewaySend(nil)
	return parsed.Key.ID, nil
}

func truncateBody(payload []byte) string {
	const maxLen = 512
	s := string(payload)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
