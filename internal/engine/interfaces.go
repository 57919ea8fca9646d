// Package engine implements the conversation state machine that turns
// inbound events into outbound messages, cart mutations and order exports.
package engine

import "context"

// Messenger abstracts the outbound messaging channel. Sends are
// fire-and-forget from the engine's point of view: failures are logged by
// the caller and never abort a transition.
type Messenger interface {
	// SendText sends a plain text message to the user.
	SendText(ctx context.Context, userID string, body string) error

	// SendMenu sends a structured selection menu to the user.
	SendMenu(ctx context.Context, userID string, menu Menu) error
}

// Menu is a transport-agnostic interactive selection. Transports render it
// as a list or as reply buttons depending on row count.
type Menu struct {
	Header string
	Body   string
	Button string
	Rows   []MenuRow
}

// MenuRow is one selectable option. ID comes back as the selection
// identifier on the resulting inbound event.
type MenuRow struct {
	ID          string
	Title       string
	Description string
}
