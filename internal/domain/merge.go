package domain

import (
	"fmt"
	"math"
	"strings"
)

// Item is an incoming line item to be merged into a cart.
type Item struct {
	ProductID string
	FullName  string
	ImageURLs []string
	Quantity  int
	UnitPrice float64
}

// Validate reports ErrInvalidItem for a malformed item.
func (it Item) Validate() error {
	switch {
	case strings.TrimSpace(it.ProductID) == "":
		return fmt.Errorf("%w: empty product id", ErrInvalidItem)
	case it.Quantity <= 0:
		return fmt.Errorf("%w: quantity %d", ErrInvalidItem, it.Quantity)
	case it.UnitPrice < 0 || math.IsNaN(it.UnitPrice) || math.IsInf(it.UnitPrice, 0):
		return fmt.Errorf("%w: unit price %v", ErrInvalidItem, it.UnitPrice)
	case len(it.ImageURLs) == 0:
		return fmt.Errorf("%w: no image", ErrInvalidItem)
	}
	return nil
}

// Merge folds item into a copy of existing and returns the whole new cart.
//
// A product already in the cart keeps its unit price, name and image; only
// its quantity grows and its subtotal is recomputed from the stored price.
// A quantity or subtotal that no longer fits is rejected as ErrInvalidItem.
func Merge(existing Cart, item Item) (Cart, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	next := LineItem{
		FullName:  item.FullName,
		ImageURL:  item.ImageURLs[0],
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
	}
	if cur, ok := existing[item.ProductID]; ok {
		if cur.Quantity > math.MaxInt-item.Quantity {
			return nil, fmt.Errorf("%w: quantity %d + %d overflows", ErrInvalidItem, cur.Quantity, item.Quantity)
		}
		next = cur
		next.Quantity += item.Quantity
	}

	next.Subtotal = next.UnitPrice * float64(next.Quantity)
	if math.IsInf(next.Subtotal, 0) || math.IsNaN(next.Subtotal) {
		return nil, fmt.Errorf("%w: subtotal of %d x %v overflows", ErrInvalidItem, next.Quantity, next.UnitPrice)
	}

	out := existing.Clone()
	out[item.ProductID] = next
	return out, nil
}

// ReplaceAll returns payload as the new cart state. Subtotals supplied by
// the caller are stored as they are.
func ReplaceAll(payload Cart) Cart {
	if payload == nil {
		return Cart{}
	}
	return payload
}
