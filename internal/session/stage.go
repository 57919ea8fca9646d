package session

import (
	"encoding/json"
	"fmt"
)

// Stage is the conversation state a user is currently in. The set is closed;
// the engine switches over it exhaustively.
type Stage int

const (
	// StageMenu is the top-level main menu.
	StageMenu Stage = iota
	// StageBrowsing means the product list was shown and a product id is expected.
	StageBrowsing
	// StageAwaitingQuantity means a product was selected and a quantity is expected.
	StageAwaitingQuantity
	// StagePostAddChoice follows a successful add: continue shopping or menu.
	StagePostAddChoice
	// StageCartView means the cart summary was shown.
	StageCartView
	// StageModifying means the in-cart product picker was shown.
	StageModifying
	// StageAwaitingUpdate means a new quantity for an in-cart product is expected.
	StageAwaitingUpdate
	// StageAwaitingCheckoutConfirm means the total was quoted and confirm/cancel is expected.
	StageAwaitingCheckoutConfirm
	// StagePostCheckoutChoice follows a completed checkout: continue or exit.
	StagePostCheckoutChoice
	// StageExit is a soft terminal stage; a greeting re-enters the menu.
	StageExit
)

var stageNames = map[Stage]string{
	StageMenu:                    "menu",
	StageBrowsing:                "browsing",
	StageAwaitingQuantity:        "awaiting_quantity",
	StagePostAddChoice:           "post_add_choice",
	StageCartView:                "cart_view",
	StageModifying:               "modifying",
	StageAwaitingUpdate:          "awaiting_update",
	StageAwaitingCheckoutConfirm: "awaiting_checkout_confirm",
	StagePostCheckoutChoice:      "post_checkout_choice",
	StageExit:                    "exit",
}

var stagesByName = func() map[string]Stage {
	m := make(map[string]Stage, len(stageNames))
	for s, name := range stageNames {
		m[name] = s
	}
	return m
}()

// String returns the snake_case name used in logs and persistence.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// MarshalJSON encodes the stage as its string name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a stage name. Unknown names decode to StageMenu so
// a store written by a newer build still loads.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("failed to decode stage: %w", err)
	}
	if stage, ok := stagesByName[name]; ok {
		*s = stage
	} else {
		*s = StageMenu
	}
	return nil
}
