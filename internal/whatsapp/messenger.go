package whatsapp

import (
	"context"

	"github.com/shopease/orderbot/internal/engine"
)

// maxButtonRows is the Cloud API limit on reply buttons; menus with more
// rows are rendered as lists.
const maxButtonRows = 3

// Messenger adapts the Cloud API client to the engine's messenger
// interface, rendering transport-agnostic menus as lists or buttons.
type Messenger struct {
	client *Client
}

// NewMessenger creates a messenger around a client.
func NewMessenger(client *Client) *Messenger {
	return &Messenger{client: client}
}

// SendText sends a plain text message.
func (m *Messenger) SendText(ctx context.Context, userID string, body string) error {
	return m.client.SendText(ctx, userID, body)
}

// SendMenu renders the menu as reply buttons when it fits, a list otherwise.
func (m *Messenger) SendMenu(ctx context.Context, userID string, menu engine.Menu) error {
	if len(menu.Rows) <= maxButtonRows {
		return m.client.SendInteractive(ctx, userID, renderButtons(menu))
	}
	return m.client.SendInteractive(ctx, userID, renderList(menu))
}

func renderList(menu engine.Menu) interactivePayload {
	rows := make([]interactiveRow, 0, len(menu.Rows))
	for _, r := range menu.Rows {
		rows = append(rows, interactiveRow{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
		})
	}

	p := interactivePayload{
		Type: "list",
		Body: outboundBody{Body: menu.Body},
		Action: interactiveAction{
			Button:   menu.Button,
			Sections: []interactiveSect{{Rows: rows}},
		},
	}
	if menu.Header != "" {
		p.Header = &interactiveHeader{Type: "text", Text: menu.Header}
	}
	return p
}

func renderButtons(menu engine.Menu) interactivePayload {
	buttons := make([]interactiveButton, 0, len(menu.Rows))
	for _, r := range menu.Rows {
		buttons = append(buttons, interactiveButton{
			Type:  "reply",
			Reply: interactiveRef{ID: r.ID, Title: r.Title},
		})
	}

	return interactivePayload{
		Type:   "button",
		Body:   outboundBody{Body: menu.Body},
		Action: interactiveAction{Buttons: buttons},
	}
}
