package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopease/orderbot/internal/catalog"
	"github.com/shopease/orderbot/internal/export"
	"github.com/shopease/orderbot/internal/quantity"
	"github.com/shopease/orderbot/internal/session"
)

// DefaultSessionTimeout is the idle window after which a session is reset
// to the main menu. The cart survives the reset.
const DefaultSessionTimeout = 5 * time.Minute

// Engine is the conversation state machine. One Handle call processes one
// inbound event to completion under exclusive access to that user's
// session; the session store persists the result before Handle returns.
type Engine struct {
	messenger   Messenger
	exporter    export.Exporter
	catalog     *catalog.Catalog
	store       *session.Store
	logger      *slog.Logger
	clock       func() time.Time
	timeout     time.Duration
	interactive bool
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithSessionTimeout overrides the idle-reset window.
func WithSessionTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithInteractiveMenus switches menus and binary choices to structured
// list/button messages instead of plain text.
func WithInteractiveMenus(enabled bool) Option {
	return func(e *Engine) {
		e.interactive = enabled
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// New creates a conversation engine.
func New(
	messenger Messenger,
	exporter export.Exporter,
	cat *catalog.Catalog,
	store *session.Store,
	opts ...Option,
) (*Engine, error) {
	if messenger == nil {
		return nil, fmt.Errorf("messenger is required")
	}
	if exporter == nil {
		return nil, fmt.Errorf("exporter is required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}

	e := &Engine{
		messenger: messenger,
		exporter:  exporter,
		catalog:   cat,
		store:     store,
		logger:    slog.Default(),
		clock:     time.Now,
		timeout:   DefaultSessionTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Handle processes one inbound event: stage read, transition, persist.
// Malformed events are dropped without touching the session. Outbound
// send and export failures are logged and never abort the transition.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	if ev.UserID == "" {
		e.logger.Debug("dropping event without user id")
		return nil
	}

	input := ev.normalized()
	if input == "" {
		e.logger.Debug("dropping empty event", "user", ev.UserID)
		return nil
	}

	return e.store.Update(ev.UserID, func(s *session.Session) error {
		now := e.clock()

		// Idle reset comes before everything else. The input is consumed
		// by the reset and not dispatched; the cart is untouched.
		if !s.LastActivity.IsZero() && now.Sub(s.LastActivity) > e.timeout {
			s.Stage = session.StageMenu
			s.LastActivity = now
			e.send(ctx, ev.UserID, restartNotice)
			e.sendMainMenu(ctx, ev.UserID)
			return nil
		}
		s.LastActivity = now

		// Greeting/reset keywords work from any stage, including Exit.
		switch input {
		case "hi", "hello", "hey", "start":
			s.Stage = session.StageMenu
			e.send(ctx, ev.UserID, greetingText)
			e.sendMainMenu(ctx, ev.UserID)
			return nil
		case "menu", "main menu":
			s.Stage = session.StageMenu
			e.sendMainMenu(ctx, ev.UserID)
			return nil
		}

		switch s.Stage {
		case session.StageMenu:
			e.handleMenu(ctx, ev.UserID, input, s)
		case session.StageBrowsing:
			e.handleBrowsing(ctx, ev.UserID, input, s)
		case session.StageAwaitingQuantity:
			e.handleAwaitingQuantity(ctx, ev.UserID, input, s)
		case session.StagePostAddChoice:
			e.handlePostAddChoice(ctx, ev.UserID, input, s)
		case session.StageCartView:
			e.handleCartView(ctx, ev.UserID, input, s)
		case session.StageModifying:
			e.handleModifying(ctx, ev.UserID, input, s)
		case session.StageAwaitingUpdate:
			e.handleAwaitingUpdate(ctx, ev.UserID, input, s)
		case session.StageAwaitingCheckoutConfirm:
			e.handleCheckoutConfirm(ctx, ev.UserID, input, s)
		case session.StagePostCheckoutChoice:
			e.handlePostCheckoutChoice(ctx, ev.UserID, input, s)
		case session.StageExit:
			e.send(ctx, ev.UserID, farewellText)
		default:
			// Unreachable with a well-formed store; treat like garbled input.
			s.Stage = session.StageMenu
			e.send(ctx, ev.UserID, didNotUnderstand)
			e.sendMainMenu(ctx, ev.UserID)
		}
		return nil
	})
}

// handleMenu dispatches top-level menu selections.
func (e *Engine) handleMenu(ctx context.Context, userID, input string, s *session.Session) {
	switch {
	case isBrowseInput(input):
		s.Stage = session.StageBrowsing
		e.sendProductList(ctx, userID)

	case isViewCartInput(input):
		s.Stage = session.StageCartView
		e.send(ctx, userID, cartSummaryText(s.Cart, e.catalog))

	case isEditInput(input):
		if s.Cart.IsEmpty() {
			s.Stage = session.StageMenu
			e.send(ctx, userID, emptyCartModify)
			return
		}
		s.Stage = session.StageModifying
		e.sendModifyPicker(ctx, userID, s)

	case isCheckoutInput(input):
		if s.Cart.IsEmpty() {
			s.Stage = session.StageMenu
			e.send(ctx, userID, emptyCartCheckout)
			e.sendMainMenu(ctx, userID)
			return
		}
		s.Stage = session.StageAwaitingCheckoutConfirm
		e.sendCheckoutPrompt(ctx, userID, s.Cart.Total(e.catalog))

	case isSupportInput(input):
		// Support is transient: show the info and land back on the menu.
		s.Stage = session.StageMenu
		e.send(ctx, userID, supportText)
		e.send(ctx, userID, supportFollowup)
		e.sendMainMenu(ctx, userID)

	case isHelpInput(input):
		s.Stage = session.StageMenu
		e.sendMainMenu(ctx, userID)

	default:
		// Universal catch-all: anything unclaimed resets to the menu.
		s.Stage = session.StageMenu
		e.send(ctx, userID, didNotUnderstand)
		e.sendMainMenu(ctx, userID)
	}
}

// handleBrowsing expects a product id off the product list.
func (e *Engine) handleBrowsing(ctx context.Context, userID, input string, s *session.Session) {
	if p, ok := e.catalog.Get(input); ok {
		s.SelectedProduct = p.ID
		s.Stage = session.StageAwaitingQuantity
		e.send(ctx, userID, quantityPrompt(p.Name))
		return
	}

	if isHelpInput(input) {
		s.Stage = session.StageMenu
		e.sendMainMenu(ctx, userID)
		return
	}

	e.send(ctx, userID, browsingReprompt)
}

// handleAwaitingQuantity expects a positive quantity for the selected product.
func (e *Engine) handleAwaitingQuantity(ctx context.Context, userID, input string, s *session.Session) {
	qty, found := quantity.Extract(input)
	if !found || qty <= 0 {
		e.send(ctx, userID, quantityPromptError)
		return
	}

	p, ok := e.catalog.Get(s.SelectedProduct)
	if !ok {
		e.send(ctx, userID, unknownProductError)
		return
	}

	s.Cart.Add(p.ID, qty)
	s.Stage = session.StagePostAddChoice
	e.send(ctx, userID, addedToCart(qty, p.Name))
	e.sendPostAddChoice(ctx, userID)
}

// handlePostAddChoice expects continue-shopping or back-to-menu.
func (e *Engine) handlePostAddChoice(ctx context.Context, userID, input string, s *session.Session) {
	switch {
	case isContinueInput(input):
		s.Stage = session.StageBrowsing
		e.sendProductList(ctx, userID)
	case isHelpInput(input):
		s.Stage = session.StageMenu
		e.sendMainMenu(ctx, userID)
	default:
		e.send(ctx, userID, postAddReprompt)
	}
}

// handleCartView dispatches from the cart summary.
func (e *Engine) handleCartView(ctx context.Context, userID, input string, s *session.Session) {
	switch {
	case isCheckoutInput(input):
		if s.Cart.IsEmpty() {
			s.Stage = session.StageBrowsing
			e.send(ctx, userID, emptyCartBrowseFirst)
			e.sendProductList(ctx, userID)
			return
		}
		s.Stage = session.StageAwaitingCheckoutConfirm
		e.sendCheckoutPrompt(ctx, userID, s.Cart.Total(e.catalog))

	case isBrowseInput(input):
		s.Stage = session.StageBrowsing
		e.sendProductList(ctx, userID)

	case isEditInput(input):
		if s.Cart.IsEmpty() {
			s.Stage = session.StageMenu
			e.send(ctx, userID, emptyCartModify)
			return
		}
		s.Stage = session.StageModifying
		e.sendModifyPicker(ctx, userID, s)

	case isHelpInput(input):
		s.Stage = session.StageMenu
		e.sendMainMenu(ctx, userID)

	default:
		e.send(ctx, userID, cartViewReprompt)
	}
}

// handleModifying expects an in-cart product id.
func (e *Engine) handleModifying(ctx context.Context, userID, input string, s *session.Session) {
	if s.Cart.Has(input) {
		s.SelectedProduct = input
		s.Stage = session.StageAwaitingUpdate
		name := input
		if p, ok := e.catalog.Get(input); ok {
			name = p.Name
		}
		e.send(ctx, userID, updatePrompt(name))
		return
	}

	if isHelpInput(input) {
		s.Stage = session.StageMenu
		e.sendMainMenu(ctx, userID)
		return
	}

	e.send(ctx, userID, modifyingReprompt)
}

// handleAwaitingUpdate expects a replacement quantity, zero meaning remove.
func (e *Engine) handleAwaitingUpdate(ctx context.Context, userID, input string, s *session.Session) {
	qty, found := quantity.Extract(input)
	if !found || qty < 0 {
		e.send(ctx, userID, updatePromptError)
		return
	}

	pid := s.SelectedProduct
	if pid == "" || !s.Cart.Has(pid) {
		e.send(ctx, userID, notInCartError)
		return
	}

	name := pid
	if p, ok := e.catalog.Get(pid); ok {
		name = p.Name
	}

	if qty == 0 {
		s.Cart.Remove(pid)
		e.send(ctx, userID, removedFromCart(name))
	} else {
		s.Cart.Set(pid, qty)
		e.send(ctx, userID, updatedQuantity(name, qty))
	}

	s.SelectedProduct = ""
	s.Stage = session.StageMenu
	e.sendMainMenu(ctx, userID)
}

// handleCheckoutConfirm completes or cancels the order.
func (e *Engine) handleCheckoutConfirm(ctx context.Context, userID, input string, s *session.Session) {
	switch {
	case isConfirmInput(input):
		// Defensive: an empty cart never checks out, even via an odd path.
		if s.Cart.IsEmpty() {
			s.Stage = session.StageMenu
			e.send(ctx, userID, emptyCartCheckout)
			e.sendMainMenu(ctx, userID)
			return
		}

		total := s.Cart.Total(e.catalog)
		order := export.NewOrder(userID, s.Cart.Lines(e.catalog), total, export.StatusCompleted, e.clock())
		if err := e.exporter.Export(ctx, order); err != nil {
			e.logger.Warn("order export failed", "user", userID, "order_id", order.ID, "error", err)
		}

		s.Cart.Clear()
		s.Stage = session.StagePostCheckoutChoice
		e.send(ctx, userID, checkoutComplete(total))
		e.sendPostCheckoutChoice(ctx, userID)

	case isCancelInput(input):
		s.Stage = session.StageMenu
		e.send(ctx, userID, checkoutCanceled)
		e.sendMainMenu(ctx, userID)

	default:
		e.send(ctx, userID, checkoutReprompt)
	}
}

// handlePostCheckoutChoice expects continue-shopping or exit.
func (e *Engine) handlePostCheckoutChoice(ctx context.Context, userID, input string, s *session.Session) {
	switch {
	case isContinueInput(input):
		s.Stage = session.StageBrowsing
		e.sendProductList(ctx, userID)

	case isExitInput(input):
		e.send(ctx, userID, farewellText)
		// The structured variant parks in Exit; plain text loops back to
		// the menu. Either way a greeting re-enters the conversation.
		if e.interactive {
			s.Stage = session.StageExit
		} else {
			s.Stage = session.StageMenu
		}

	default:
		e.send(ctx, userID, postCheckoutReprompt)
	}
}

// Input classifiers. Each accepts the text aliases the original bot
// understood plus the structured selection id.

func isBrowseInput(input string) bool {
	switch input {
	case "1", "browse", "browse products", "browse our collection":
		return true
	}
	return false
}

func isViewCartInput(input string) bool {
	switch input {
	case "2", "view cart", "cart", selViewCart:
		return true
	}
	return false
}

func isEditInput(input string) bool {
	switch input {
	case "3", "edit", "edit cart", "modify cart", selEditCart:
		return true
	}
	return false
}

func isCheckoutInput(input string) bool {
	switch input {
	case "4", "checkout", "proceed to checkout":
		return true
	}
	return false
}

func isSupportInput(input string) bool {
	switch input {
	case "5", "support", "customer support", "customer care":
		return true
	}
	return false
}

func isHelpInput(input string) bool {
	switch input {
	case "6", "help", "main menu", "menu":
		return true
	}
	return false
}

func isContinueInput(input string) bool {
	switch input {
	case "1", "continue", "continue shopping", "browse":
		return true
	}
	return false
}

func isConfirmInput(input string) bool {
	switch input {
	case "confirm", "yes", "y":
		return true
	}
	return false
}

func isCancelInput(input string) bool {
	switch input {
	case "cancel", "no", "n", "menu":
		return true
	}
	return false
}

func isExitInput(input string) bool {
	switch input {
	case "exit", "quit", "no":
		return true
	}
	return false
}

// Outbound helpers. Failures are logged; a failed send must not abort the
// transition or block persistence of the new stage.

func (e *Engine) send(ctx context.Context, userID, body string) {
	if err := e.messenger.SendText(ctx, userID, body); err != nil {
		e.logger.Warn("failed to send message", "user", userID, "error", err)
	}
}

func (e *Engine) sendMenu(ctx context.Context, userID string, menu Menu) {
	if err := e.messenger.SendMenu(ctx, userID, menu); err != nil {
		e.logger.Warn("failed to send menu", "user", userID, "error", err)
	}
}

func (e *Engine) sendMainMenu(ctx context.Context, userID string) {
	if e.interactive {
		e.sendMenu(ctx, userID, mainMenu())
		return
	}
	e.send(ctx, userID, mainMenuText())
}

func (e *Engine) sendProductList(ctx context.Context, userID string) {
	if e.interactive {
		e.sendMenu(ctx, userID, productListMenu(e.catalog))
		return
	}
	e.send(ctx, userID, productListText(e.catalog))
}

func (e *Engine) sendModifyPicker(ctx context.Context, userID string, s *session.Session) {
	if e.interactive {
		e.sendMenu(ctx, userID, modifyPickerMenu(s.Cart, e.catalog))
		return
	}
	e.send(ctx, userID, modifyPickerText(s.Cart, e.catalog))
}

func (e *Engine) sendCheckoutPrompt(ctx context.Context, userID string, total int) {
	if e.interactive {
		e.sendMenu(ctx, userID, checkoutConfirmMenu(total))
		return
	}
	e.send(ctx, userID, checkoutPrompt(total))
}

func (e *Engine) sendPostAddChoice(ctx context.Context, userID string) {
	if e.interactive {
		e.sendMenu(ctx, userID, postAddMenu())
		return
	}
	e.send(ctx, userID, postAddPrompt)
}

func (e *Engine) sendPostCheckoutChoice(ctx context.Context, userID string) {
	if e.interactive {
		e.sendMenu(ctx, userID, postCheckoutMenu())
		return
	}
	e.send(ctx, userID, postCheckoutPrompt)
}
