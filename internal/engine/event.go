package engine

import "strings"

// EventKind distinguishes free text from a structured selection.
type EventKind int

const (
	// EventText is a plain text message.
	EventText EventKind = iota
	// EventSelection is a list or button reply carrying a selection id.
	EventSelection
)

// Event is a normalized inbound message. The transport parses the raw
// payload; the engine only sees this.
type Event struct {
	UserID         string
	Kind           EventKind
	Text           string
	SelectionID    string
	SelectionTitle string
}

// normalized returns the input the dispatch tables match on: the trimmed,
// lowercased text, or the selection id verbatim for structured replies.
func (e Event) normalized() string {
	if e.Kind == EventSelection {
		return e.SelectionID
	}
	return strings.ToLower(strings.TrimSpace(e.Text))
}
