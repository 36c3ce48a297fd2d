package models

import "time"

// PaymentMethod is how the shop owner will settle the order.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMobilePayment  PaymentMethod = "MOBILE_PAYMENT"
)

var allowedPaymentMethods = [...]PaymentMethod{
	PaymentCashOnDelivery, PaymentBankTransfer, PaymentMobilePayment,
}

// Valid checks the payment method against the allowed set.
func (m PaymentMethod) Valid() bool {
	for _, v := range allowedPaymentMethods {
		if m == v {
			return true
		}
	}
	return false
}

// OrderStatus is the status of a finalized order.
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order is created exactly once per cart session, from exactly one
// accepted quote. TotalAmount is always Subtotal + DeliveryFee.
type Order struct {
	ID              string        `json:"id"`
	SessionID       string        `json:"session_id"`
	ShopOwnerID     string        `json:"shop_owner_id"`
	Items           []CartItem    `json:"items"`
	Subtotal        int64         `json:"subtotal"`
	DeliveryFee     int64         `json:"delivery_fee"`
	TotalAmount     int64         `json:"total_amount"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	AcceptedQuoteID string        `json:"accepted_quote_id"`
	ProviderID      string        `json:"provider_id"`
	DeliveryDate    time.Time     `json:"delivery_date"`
	Status          OrderStatus   `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

// AcceptQuoteRequest is the payload for accepting a quote and finalizing
// the order in one step.
type AcceptQuoteRequest struct {
	PaymentMethod string    `json:"payment_method" validate:"required,oneof=CASH_ON_DELIVERY BANK_TRANSFER MOBILE_PAYMENT"`
	DeliveryDate  time.Time `json:"delivery_date" validate:"required"`
}

// FinalizedOrder is the one-time response to a successful acceptance.
// DeliveryCode is the confirmation code issued to the shop owner; it is
// stored only as a hash and never shown again.
type FinalizedOrder struct {
	Order        *Order              `json:"order"`
	Assignment   *DeliveryAssignment `json:"assignment"`
	DeliveryCode string              `json:"delivery_code"`
}
