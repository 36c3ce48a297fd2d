package models

import "time"

// QuoteStatus is the stored status of a quote. It is authoritative only
// for ACCEPTED and REJECTED; expiry is derived from ValidUntil at read
// time and never written back.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusAccepted QuoteStatus = "ACCEPTED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// QuoteValidity classifies a quote against the clock.
type QuoteValidity string

const (
	ValidityExpired      QuoteValidity = "expired"
	ValidityExpiringSoon QuoteValidity = "expiring_soon"
	ValidityValid        QuoteValidity = "valid"
)

// ExpiringSoonWindow is how close to valid_until a quote is flagged as
// expiring soon in listings.
const ExpiringSoonWindow = time.Hour

// ClassifyValidity is a pure function of the clock: expired when now has
// reached validUntil, expiring_soon within ExpiringSoonWindow of it,
// valid otherwise. It is re-evaluated on every read, never cached.
func ClassifyValidity(validUntil, now time.Time) QuoteValidity {
	switch {
	case !now.Before(validUntil):
		return ValidityExpired
	case validUntil.Sub(now) < ExpiringSoonWindow:
		return ValidityExpiringSoon
	default:
		return ValidityValid
	}
}

// Quote is a time-bounded price offer from one provider against one
// quote request. DeliveryFee and the price breakdown are integer
// currency units.
type Quote struct {
	ID                  string           `json:"id"`
	RequestID           string           `json:"request_id"`
	ProviderID          string           `json:"provider_id"`
	ProviderName        string           `json:"provider_name"`
	DeliveryFee         int64            `json:"delivery_fee"`
	Rating              float64          `json:"rating"`
	CompletedDeliveries int              `json:"completed_deliveries"`
	EstimatedTime       string           `json:"estimated_time"`
	ValidUntil          time.Time        `json:"valid_until"`
	PriceBreakdown      map[string]int64 `json:"price_breakdown,omitempty"`
	Status              QuoteStatus      `json:"status"`
	Validity            QuoteValidity    `json:"validity,omitempty"` // derived, set on reads
	CreatedAt           time.Time        `json:"created_at"`
}

// Selectable reports whether the quote can still be accepted: pending
// and not yet expired.
func (q *Quote) Selectable(now time.Time) bool {
	return q.Status == QuoteStatusPending && now.Before(q.ValidUntil)
}

// RequestStatus is the lifecycle of a quote request. EXPIRED is only
// ever written by the housekeeping sweeper; whether submissions and
// acceptances are legal is always derived from ExpiresAt.
type RequestStatus string

const (
	RequestStatusOpen      RequestStatus = "OPEN"
	RequestStatusAccepted  RequestStatus = "ACCEPTED"
	RequestStatusAbandoned RequestStatus = "ABANDONED"
	RequestStatusExpired   RequestStatus = "EXPIRED"
)

// QuoteRequest is a solicitation opened by a shop owner against a cart,
// addressed to a chosen set of providers, with a response deadline.
type QuoteRequest struct {
	ID          string        `json:"id"`
	SessionID   string        `json:"session_id"`
	ShopOwnerID string        `json:"shop_owner_id"`
	ProviderIDs []string      `json:"provider_ids"`
	SentAt      time.Time     `json:"sent_at"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Status      RequestStatus `json:"status"`
}

// Open reports whether the request still accepts submissions and
// acceptances at the given instant.
func (r *QuoteRequest) Open(now time.Time) bool {
	return r.Status == RequestStatusOpen && now.Before(r.ExpiresAt)
}

// Sort keys accepted by the quote listing endpoint.
const (
	SortPriceAsc   = "price_asc"
	SortRatingDesc = "rating_desc"
)

// OpenQuoteRequestRequest is the payload for soliciting quotes.
type OpenQuoteRequestRequest struct {
	ProviderIDs []string `json:"provider_ids" validate:"required,min=1,dive,required"`
}

// SubmitQuoteRequest is the payload a provider sends to submit an offer.
type SubmitQuoteRequest struct {
	ProviderName        string           `json:"provider_name" validate:"required"`
	DeliveryFee         int64            `json:"delivery_fee" validate:"gte=0"`
	Rating              float64          `json:"rating" validate:"gte=0,lte=5"`
	CompletedDeliveries int              `json:"completed_deliveries" validate:"gte=0"`
	EstimatedTime       string           `json:"estimated_time" validate:"required"`
	ValidUntil          time.Time        `json:"valid_until" validate:"required"`
	PriceBreakdown      map[string]int64 `json:"price_breakdown,omitempty"`
}
