package engine

import (
	"fmt"
	"strings"

	"github.com/shopease/orderbot/internal/cart"
	"github.com/shopease/orderbot/internal/catalog"
)

// Selection ids used by the structured menus. Inbound selection events
// carry these back.
const (
	selBrowse   = "browse"
	selViewCart = "view_cart"
	selEditCart = "edit_cart"
	selCheckout = "checkout"
	selSupport  = "support"
	selHelp     = "help"
	selConfirm  = "confirm"
	selCancel   = "cancel"
	selContinue = "continue"
	selMenu     = "menu"
	selExit     = "exit"
)

const (
	greetingText = "👋 Hi there! Here's what I can do for you:"

	restartNotice = "👋 Welcome back to *ShopEase!* (Session restarted after inactivity)"

	didNotUnderstand = "😕 I didn't understand that. Here's the main menu to guide you:"

	quantityPromptError = "❌ Please enter a valid quantity (a positive number)."

	unknownProductError = "❌ That product doesn't exist. Please reply with a valid product number."

	postAddPrompt = "Would you like to *continue shopping* or go to the *menu*?"

	postAddReprompt = "Reply *continue* to keep shopping or *menu* to return to main menu."

	browsingReprompt = "Reply with a *product number* to add it, or *menu* to return."

	cartViewReprompt = "Please reply with *1* to browse, *edit* to modify, *checkout* to pay, or *menu* to return."

	emptyCartCheckout = "🛒 Your cart is empty — add items before checkout."

	emptyCartBrowseFirst = "🛒 Your cart is empty. Browse products to add items first."

	emptyCartModify = "🛒 Your cart is empty — nothing to modify.\nType *1* to browse products."

	checkoutReprompt = "Reply *confirm* to complete purchase or *cancel* to return."

	checkoutCanceled = "Checkout canceled. Returning to main menu."

	postCheckoutPrompt = "Would you like to *continue shopping* or *exit*?"

	postCheckoutReprompt = "Please reply *continue* to shop more or *exit* to finish."

	modifyingReprompt = "Reply with the product number in your cart, or *menu* to return."

	notInCartError = "That product isn't in your cart."

	updatePromptError = "Please enter a valid number (0 to remove, or positive integer)."

	farewellText = "Thanks for visiting ShopEase! If you need anything else, type *hi* or *menu* anytime."

	supportText = "📞 Customer Support:\nCall: +91-9876543210\nEmail: support@shopease.com\n\nWe are available 9:00–18:00 IST."

	supportFollowup = "Anything else? Here's the main menu:"
)

// mainMenuText is the plain-text main menu.
func mainMenuText() string {
	return "*🛍️ Welcome to ShopEase!* 👋\n\n" +
		"Choose an option:\n\n" +
		"1️⃣ *Browse Our Collection*\n" +
		"2️⃣ *View Cart*\n" +
		"3️⃣ *Edit Cart*\n" +
		"4️⃣ *Proceed to Checkout*\n" +
		"5️⃣ *Customer Support*\n" +
		"6️⃣ *Help / Main Menu*\n\n" +
		"Reply with the number or option name.\n(Type *menu* anytime to return here.)"
}

// mainMenu is the structured main menu.
func mainMenu() Menu {
	return Menu{
		Header: "ShopEase",
		Body:   "🛍️ Welcome to ShopEase! 👋\nChoose an option:",
		Button: "Options",
		Rows: []MenuRow{
			{ID: selBrowse, Title: "Browse Our Collection"},
			{ID: selViewCart, Title: "View Cart"},
			{ID: selEditCart, Title: "Edit Cart"},
			{ID: selCheckout, Title: "Proceed to Checkout"},
			{ID: selSupport, Title: "Customer Support"},
			{ID: selHelp, Title: "Help / Main Menu"},
		},
	}
}

// productListText renders the catalog as a numbered text list.
func productListText(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("*🛒 Available Products:*\n\n")
	for _, p := range cat.All() {
		fmt.Fprintf(&b, "%s. %s — ₹%d\n", p.ID, p.Name, p.Price)
	}
	b.WriteString("\nReply with the *product number* to add it to your cart, or type *menu* to go back.")
	return b.String()
}

// productListMenu renders the catalog as a structured list whose row ids
// are product ids.
func productListMenu(cat *catalog.Catalog) Menu {
	products := cat.All()
	rows := make([]MenuRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, MenuRow{
			ID:          p.ID,
			Title:       p.Name,
			Description: fmt.Sprintf("₹%d", p.Price),
		})
	}
	return Menu{
		Header: "Available Products",
		Body:   "🛒 Pick a product to add it to your cart.",
		Button: "Products",
		Rows:   rows,
	}
}

// cartSummaryText renders the cart with line totals, item count and total.
func cartSummaryText(c cart.Cart, cat *catalog.Catalog) string {
	if c.IsEmpty() {
		return "🛒 Your cart is empty.\n\nType *1* to browse products or *menu* to see options."
	}

	var b strings.Builder
	b.WriteString("*🧺 Your Cart:*\n")
	for _, line := range c.Lines(cat) {
		fmt.Fprintf(&b, "- %s × %d = ₹%d\n", line.Name, line.Quantity, line.LineTotal)
	}
	fmt.Fprintf(&b, "\n*Items:* %d\n*Total:* ₹%d\n\n", c.ItemCount(), c.Total(cat))
	b.WriteString("Reply *checkout* to pay, *edit* to modify, or *menu* to return.")
	return b.String()
}

// modifyPickerText lists the in-cart products for quantity updates.
func modifyPickerText(c cart.Cart, cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("*✏️ Modify Cart:*\n")
	for _, line := range c.Lines(cat) {
		fmt.Fprintf(&b, "%s. %s × %d\n", line.ProductID, line.Name, line.Quantity)
	}
	b.WriteString("\nReply with the *product number* to update its quantity (0 to delete), or *menu* to return.")
	return b.String()
}

// modifyPickerMenu is the structured in-cart product picker.
func modifyPickerMenu(c cart.Cart, cat *catalog.Catalog) Menu {
	lines := c.Lines(cat)
	rows := make([]MenuRow, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, MenuRow{
			ID:          line.ProductID,
			Title:       line.Name,
			Description: fmt.Sprintf("× %d", line.Quantity),
		})
	}
	return Menu{
		Header: "Modify Cart",
		Body:   "✏️ Pick a product to update its quantity (0 deletes it).",
		Button: "Cart items",
		Rows:   rows,
	}
}

func quantityPrompt(productName string) string {
	return fmt.Sprintf("How many *%s* would you like to add? (enter a number)", productName)
}

func addedToCart(qty int, productName string) string {
	return fmt.Sprintf("✅ You have added *%d × %s* to your cart.", qty, productName)
}

func checkoutPrompt(total int) string {
	return fmt.Sprintf("💳 Your total is ₹%d.\nReply *confirm* to complete purchase, or *cancel* to go back.", total)
}

// checkoutConfirmMenu offers confirm/cancel as buttons.
func checkoutConfirmMenu(total int) Menu {
	return Menu{
		Body:   fmt.Sprintf("💳 Your total is ₹%d. Complete the purchase?", total),
		Button: "Checkout",
		Rows: []MenuRow{
			{ID: selConfirm, Title: "Confirm"},
			{ID: selCancel, Title: "Cancel"},
		},
	}
}

func checkoutComplete(total int) string {
	return fmt.Sprintf("✅ Checkout complete! Your card was charged ₹%d.\nThank you for shopping with ShopEase! 🛍️", total)
}

// postCheckoutMenu offers continue/exit as buttons.
func postCheckoutMenu() Menu {
	return Menu{
		Body:   "Would you like to continue shopping or exit?",
		Button: "Next",
		Rows: []MenuRow{
			{ID: selContinue, Title: "Continue shopping"},
			{ID: selExit, Title: "Exit"},
		},
	}
}

// postAddMenu offers continue/menu as buttons.
func postAddMenu() Menu {
	return Menu{
		Body:   "Would you like to continue shopping or go to the menu?",
		Button: "Next",
		Rows: []MenuRow{
			{ID: selContinue, Title: "Continue shopping"},
			{ID: selMenu, Title: "Main menu"},
		},
	}
}

func removedFromCart(productName string) string {
	return fmt.Sprintf("🗑️ Removed *%s* from your cart.", productName)
}

func updatedQuantity(productName string, qty int) string {
	return fmt.Sprintf("🔁 Updated *%s* quantity to %d.", productName, qty)
}

func updatePrompt(productName string) string {
	return fmt.Sprintf("Enter the new quantity for *%s* (0 to remove):", productName)
}
