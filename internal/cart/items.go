package cart

import (
	"sort"

	"github.com/google/uuid"
)

// Item is one product line in a cart, shared by the cookie codec and the
// database backend.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Normalize collapses duplicate product ids by summing quantities and drops
// lines with non-positive quantities. Order is stable by product id so the
// result is deterministic.
func Normalize(items []Item) []Item {
	quantities := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			continue
		}
		quantities[item.ProductID] += item.Quantity
	}

	out := make([]Item, 0, len(quantities))
	for id, qty := range quantities {
		if qty <= 0 {
			continue
		}
		out = append(out, Item{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out
}

// AddItem increments the quantity for the product, inserting a line when absent.
func AddItem(items []Item, productID uuid.UUID, qty int) []Item {
	return Normalize(append(append([]Item(nil), items...), Item{ProductID: productID, Quantity: qty}))
}

// SetItem overwrites the quantity for the product; qty <= 0 removes the line.
func SetItem(items []Item, productID uuid.UUID, qty int) []Item {
	out := make([]Item, 0, len(items)+1)
	replaced := false
	for _, item := range items {
		if item.ProductID == productID {
			if !replaced && qty > 0 {
				out = append(out, Item{ProductID: productID, Quantity: qty})
			}
			replaced = true
			continue
		}
		out = append(out, item)
	}
	if !replaced && qty > 0 {
		out = append(out, Item{ProductID: productID, Quantity: qty})
	}
	return Normalize(out)
}

// RemoveItem drops the product's line entirely.
func RemoveItem(items []Item, productID uuid.UUID) []Item {
	return SetItem(items, productID, 0)
}

// MergeItems sums two carts per product id.
func MergeItems(a, b []Item) []Item {
	return Normalize(append(append([]Item(nil), a...), b...))
}
