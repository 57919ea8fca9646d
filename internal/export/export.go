// Package export forwards completed orders to an external automation
// webhook. Export failures are logged, never surfaced to the shopper.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shopease/orderbot/internal/cart"
)

// defaultTimeout bounds the webhook call so a slow automation endpoint
// cannot stall a worker.
const defaultTimeout = 10 * time.Second

// StatusCompleted is the status label stamped on a successful checkout.
const StatusCompleted = "Completed"

// Order is the payload posted once per completed checkout. GrandTotal
// appears once, with per-line totals on the lines.
type Order struct {
	ID         string      `json:"order_id"`
	Timestamp  string      `json:"timestamp"`
	Phone      string      `json:"phone"`
	Lines      []cart.Line `json:"lines"`
	GrandTotal int         `json:"grand_total"`
	Status     string      `json:"status"`
}

// NewOrder assembles an order from a cart snapshot.
func NewOrder(phone string, lines []cart.Line, grandTotal int, status string, now time.Time) Order {
	return Order{
		ID:         uuid.NewString(),
		Timestamp:  now.Format("2006-01-02 15:04:05"),
		Phone:      phone,
		Lines:      lines,
		GrandTotal: grandTotal,
		Status:     status,
	}
}

// Exporter is the order-export sink the engine calls once per checkout.
type Exporter interface {
	Export(ctx context.Context, order Order) error
}

// Client posts orders to an automation webhook as JSON.
type Client struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an export client for the given webhook URL.
func NewClient(webhookURL string, opts ...ClientOption) (*Client, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("webhook URL cannot be empty")
	}

	c := &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Export posts the order to the webhook. Non-2xx responses are an error so
// the caller can log them; the order itself is never retried.
func (c *Client) Export(ctx context.Context, order Order) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create export request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post order: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("export webhook responded with %d", resp.StatusCode)
	}

	c.logger.Info("order exported",
		"order_id", order.ID,
		"phone", order.Phone,
		"grand_total", order.GrandTotal,
	)
	return nil
}

// Noop is an export sink that drops orders, for development and tests.
type Noop struct{}

// Export does nothing.
func (Noop) Export(_ context.Context, _ Order) error {
	return nil
}
