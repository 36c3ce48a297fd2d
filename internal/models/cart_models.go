package models

import "time"

// CartStatus tracks what may still happen to a cart session.
type CartStatus string

const (
	// CartStatusOpen means the cart is still editable.
	CartStatusOpen CartStatus = "OPEN"
	// CartStatusQuoting means a quote request has been opened against the
	// cart; its contents are frozen until the request is resolved.
	CartStatusQuoting CartStatus = "QUOTING"
)

// CartItem is a single line of a cart session. Prices are integer
// currency units (cents).
type CartItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CartSession holds the in-flight cart a shop owner is soliciting
// delivery quotes for. It lives in the session store, keyed by SessionID,
// and is deleted once an order is finalized or the owner abandons it.
type CartSession struct {
	SessionID           string     `json:"session_id"`
	ShopOwnerID         string     `json:"shop_owner_id"`
	Items               []CartItem `json:"items"`
	Subtotal            int64      `json:"subtotal"`
	ResponseWindowHours int        `json:"response_window_hours"`
	Status              CartStatus `json:"status"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ComputeSubtotal derives the subtotal from the items. The stored
// subtotal is always this value; client-supplied totals are ignored.
func (c *CartSession) ComputeSubtotal() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.UnitPrice * int64(it.Quantity)
	}
	return total
}

// CreateCartRequest is the payload for opening a new cart session.
type CreateCartRequest struct {
	Items               []CartItem `json:"items" validate:"required,min=1,dive"`
	ResponseWindowHours int        `json:"response_window_hours" validate:"required,gt=0"`
}

// UpdateCartRequest replaces the items of an open cart session.
type UpdateCartRequest struct {
	Items               []CartItem `json:"items" validate:"required,min=1,dive"`
	ResponseWindowHours int        `json:"response_window_hours" validate:"required,gt=0"`
}
