// Package whatsapp integrates with the WhatsApp Cloud API: an outbound
// Graph API client, a webhook handler for inbound events, and a messenger
// adapter for the conversation engine.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://graph.facebook.com"
	sendTimeout    = 10 * time.Second

	messagingProduct = "whatsapp"
)

// Client sends messages through the Graph API messages endpoint.
type Client struct {
	baseURL       string
	version       string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
	logger        *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL overrides the Graph API host, for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithClientLogger sets a custom logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Cloud API client.
func NewClient(version, phoneNumberID, accessToken string, opts ...ClientOption) (*Client, error) {
	if version == "" {
		return nil, fmt.Errorf("API version cannot be empty")
	}
	if phoneNumberID == "" {
		return nil, fmt.Errorf("phone number id cannot be empty")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("access token cannot be empty")
	}

	c := &Client{
		baseURL:       defaultBaseURL,
		version:       version,
		phoneNumberID: phoneNumberID,
		accessToken:   accessToken,
		httpClient:    &http.Client{Timeout: sendTimeout},
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to string, body string) error {
	if to == "" {
		return fmt.Errorf("recipient cannot be empty")
	}
	if body == "" {
		return fmt.Errorf("message cannot be empty")
	}

	payload := outboundText{
		MessagingProduct: messagingProduct,
		To:               to,
		Type:             "text",
		Text:             outboundBody{Body: body},
	}
	return c.post(ctx, payload)
}

// SendInteractive sends a structured list or button message.
func (c *Client) SendInteractive(ctx context.Context, to string, interactive interactivePayload) error {
	if to == "" {
		return fmt.Errorf("recipient cannot be empty")
	}

	payload := outboundInteractive{
		MessagingProduct: messagingProduct,
		To:               to,
		Type:             "interactive",
		Interactive:      interactive,
	}
	return c.post(ctx, payload)
}

// post delivers one payload to the messages endpoint.
func (c *Client) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.version, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("messages endpoint responded with %d", resp.StatusCode)
	}

	return nil
}
