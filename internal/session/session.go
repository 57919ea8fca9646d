// Package session tracks per-user conversation state and owns its
// persistence lifecycle.
package session

import (
	"time"

	"github.com/shopease/orderbot/internal/cart"
)

// Session is the conversation state for one user, keyed by their messaging
// identifier. It is mutated only by the conversation engine, under the
// store's per-user exclusive access.
type Session struct {
	Stage           Stage     `json:"stage"`
	Cart            cart.Cart `json:"cart"`
	SelectedProduct string    `json:"selected_product,omitempty"`
	LastActivity    time.Time `json:"last_activity"`
}

// New returns a fresh session at the main menu with an empty cart.
// LastActivity stays zero until the first event is processed.
func New() *Session {
	return &Session{
		Stage: StageMenu,
		Cart:  cart.New(),
	}
}

// clone returns an independent copy for persistence snapshots.
func (s *Session) clone() *Session {
	return &Session{
		Stage:           s.Stage,
		Cart:            s.Cart.Clone(),
		SelectedProduct: s.SelectedProduct,
		LastActivity:    s.LastActivity,
	}
}
