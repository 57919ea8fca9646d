package whatsapp

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/shopease/orderbot/internal/engine"
)

// Enqueuer accepts normalized inbound events for processing.
type Enqueuer interface {
	Submit(ev engine.Event) error
}

// WebhookHandler serves the Cloud API webhook: the GET verification
// handshake and inbound message POSTs.
type WebhookHandler struct {
	verifyToken string
	enqueuer    Enqueuer
	logger      *slog.Logger
}

// HandlerOption configures the handler.
type HandlerOption func(*WebhookHandler)

// WithHandlerLogger sets a custom logger.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *WebhookHandler) {
		h.logger = logger
	}
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(verifyToken string, enqueuer Enqueuer, opts ...HandlerOption) (*WebhookHandler, error) {
	if verifyToken == "" {
		return nil, fmt.Errorf("verify token cannot be empty")
	}
	if enqueuer == nil {
		return nil, fmt.Errorf("enqueuer is required")
	}

	h := &WebhookHandler{
		verifyToken: verifyToken,
		enqueuer:    enqueuer,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h, nil
}

// ServeHTTP routes the webhook endpoint.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.verify(w, r)
	case http.MethodPost:
		h.receive(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verify answers the subscription handshake by echoing hub.challenge.
func (h *WebhookHandler) verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "" || token == "" {
		http.Error(w, "No content", http.StatusNotFound)
		return
	}

	if mode != "subscribe" || token != h.verifyToken {
		http.Error(w, "Verification failed", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// receive parses inbound messages and enqueues them. The webhook is always
// acked; a malformed message is dropped, not retried by the platform.
func (h *WebhookHandler) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, `{"status":"no data"}`, http.StatusBadRequest)
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.logger.Warn("unparseable webhook payload", "error", err)
		http.Error(w, `{"status":"no data"}`, http.StatusBadRequest)
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				ev, ok := toEvent(msg)
				if !ok {
					h.logger.Debug("dropping malformed message", "type", msg.Type, "from", msg.From)
					continue
				}
				if err := h.enqueuer.Submit(ev); err != nil {
					h.logger.Warn("failed to enqueue event", "user", ev.UserID, "error", err)
				}
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// toEvent normalizes one inbound message. Messages without a sender or a
// usable body are dropped.
func toEvent(msg Message) (engine.Event, bool) {
	if msg.From == "" {
		return engine.Event{}, false
	}

	if msg.Interactive != nil {
		reply := msg.Interactive.ListReply
		if reply == nil {
			reply = msg.Interactive.ButtonReply
		}
		if reply == nil || reply.ID == "" {
			return engine.Event{}, false
		}
		return engine.Event{
			UserID:         msg.From,
			Kind:           engine.EventSelection,
			SelectionID:    reply.ID,
			SelectionTitle: reply.Title,
		}, true
	}

	if msg.Text != nil && msg.Text.Body != "" {
		return engine.Event{
			UserID: msg.From,
			Kind:   engine.EventText,
			Text:   msg.Text.Body,
		}, true
	}

	// Media, reactions, statuses and the rest are ignored.
	return engine.Event{}, false
}
