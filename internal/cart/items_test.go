package cart

import (
	"testing"

	"github.com/google/uuid"
)

func findQty(t *testing.T, items []Item, productID uuid.UUID) int {
	t.Helper()
	for _, item := range items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

func TestAddItemIsCommutative(t *testing.T) {
	productID := uuid.New()

	first := AddItem(AddItem(nil, productID, 2), productID, 3)
	second := AddItem(AddItem(nil, productID, 3), productID, 2)

	if got := findQty(t, first, productID); got != 5 {
		t.Fatalf("expected quantity 5, got %d", got)
	}
	if got := findQty(t, second, productID); got != 5 {
		t.Fatalf("expected quantity 5 in reversed order, got %d", got)
	}
}

func TestNormalizeCollapsesDuplicatesAndDropsNonPositive(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	items := Normalize([]Item{
		{ProductID: a, Quantity: 2},
		{ProductID: b, Quantity: -1},
		{ProductID: a, Quantity: 3},
		{ProductID: uuid.Nil, Quantity: 4},
	})

	if len(items) != 1 {
		t.Fatalf("expected 1 surviving line, got %d", len(items))
	}
	if got := findQty(t, items, a); got != 5 {
		t.Fatalf("expected collapsed quantity 5, got %d", got)
	}
}

func TestSetItemOverwritesAndRemoves(t *testing.T) {
	a := uuid.New()

	items := AddItem(nil, a, 2)
	items = SetItem(items, a, 7)
	if got := findQty(t, items, a); got != 7 {
		t.Fatalf("expected overwrite to 7, got %d", got)
	}

	items = SetItem(items, a, 0)
	if len(items) != 0 {
		t.Fatalf("expected zero quantity to remove the line, got %v", items)
	}
}

func TestMergeItemsSumsQuantities(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	anonymous := []Item{{ProductID: a, Quantity: 2}, {ProductID: b, Quantity: 1}}
	stored := []Item{{ProductID: a, Quantity: 1}}

	merged := MergeItems(stored, anonymous)
	if got := findQty(t, merged, a); got != 3 {
		t.Fatalf("expected merged quantity 3 for a, got %d", got)
	}
	if got := findQty(t, merged, b); got != 1 {
		t.Fatalf("expected merged quantity 1 for b, got %d", got)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(merged))
	}
}
