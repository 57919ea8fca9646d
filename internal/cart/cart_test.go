package cart_test

import (
	"testing"

	"github.com/shopease/orderbot/internal/cart"
	"github.com/shopease/orderbot/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Product{
		{ID: "1", Name: "Wireless Mouse", Price: 650},
		{ID: "2", Name: "Bluetooth Headphones", Price: 799},
		{ID: "3", Name: "USB-C Charger", Price: 1499},
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return c
}

func TestCart_AddAccumulates(t *testing.T) {
	c := cart.New()

	c.Add("2", 3)
	c.Add("2", 2)

	if got := c.Quantity("2"); got != 5 {
		t.Errorf("expected quantity 5 after two adds, got %d", got)
	}
}

func TestCart_AddIgnoresNonPositive(t *testing.T) {
	c := cart.New()

	c.Add("1", 0)
	c.Add("1", -4)

	if !c.IsEmpty() {
		t.Error("expected cart to stay empty after non-positive adds")
	}
}

func TestCart_SetZeroRemoves(t *testing.T) {
	c := cart.New()
	c.Add("1", 2)

	c.Set("1", 0)

	if c.Has("1") {
		t.Error("expected entry to be removed, not stored as zero")
	}
	if !c.IsEmpty() {
		t.Error("expected empty cart")
	}
}

func TestCart_SetReplaces(t *testing.T) {
	c := cart.New()
	c.Add("3", 2)

	c.Set("3", 7)

	if got := c.Quantity("3"); got != 7 {
		t.Errorf("expected Set to overwrite, got %d", got)
	}
}

func TestCart_TotalAndItemCount(t *testing.T) {
	cat := testCatalog(t)
	c := cart.New()
	c.Add("1", 2) // 1300
	c.Add("2", 1) // 799

	if got := c.Total(cat); got != 2099 {
		t.Errorf("expected total 2099, got %d", got)
	}
	if got := c.ItemCount(); got != 3 {
		t.Errorf("expected item count 3, got %d", got)
	}
}

func TestCart_TotalSkipsUnknownProducts(t *testing.T) {
	cat := testCatalog(t)
	c := cart.New()
	c.Add("1", 1)
	c.Add("removed-product", 4)

	if got := c.Total(cat); got != 650 {
		t.Errorf("expected unknown products to contribute nothing, got %d", got)
	}
}

func TestCart_LinesCatalogOrder(t *testing.T) {
	cat := testCatalog(t)
	c := cart.New()
	c.Add("3", 1)
	c.Add("1", 2)

	lines := c.Lines(cat)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].ProductID != "1" || lines[1].ProductID != "3" {
		t.Errorf("expected catalog order [1 3], got [%s %s]", lines[0].ProductID, lines[1].ProductID)
	}
	if lines[0].LineTotal != 1300 {
		t.Errorf("expected line total 1300, got %d", lines[0].LineTotal)
	}
}

func TestCart_CloneIsIndependent(t *testing.T) {
	c := cart.New()
	c.Add("1", 2)

	clone := c.Clone()
	c.Clear()

	if clone.Quantity("1") != 2 {
		t.Error("expected clone to survive clearing the original")
	}
	if !c.IsEmpty() {
		t.Error("expected original to be empty after Clear")
	}
}

func TestCart_QuantitiesAlwaysPositive(t *testing.T) {
	c := cart.New()
	c.Add("1", 3)
	c.Set("2", 5)
	c.Set("2", -1)
	c.Add("3", -2)

	for pid, qty := range c {
		if qty <= 0 {
			t.Errorf("cart stores non-positive quantity %d for %s", qty, pid)
		}
	}
}
