package domain

import "time"

// LineItem is one product's entry in a cart. Subtotal is derived and is
// recomputed on every merge.
type LineItem struct {
	FullName  string  `json:"fullName" bson:"fullName"`
	ImageURL  string  `json:"imageURL" bson:"imageURL"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unitPrice" bson:"unitPrice"`
	Subtotal  float64 `json:"subtotal" bson:"subtotal"`
}

// Cart maps product id to its line item.
type Cart map[string]LineItem

// Clone returns a copy that can be modified without touching c.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Record is a cart as persisted under the customer's email.
type Record struct {
	Email     string
	Carts     Cart
	Version   int64
	UpdatedAt time.Time
}
