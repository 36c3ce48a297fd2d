// Package notify fans quote requests out to providers and delivers the
// confirmation code to the shop owner. Dispatch is fire-and-forget,
// at-least-once: callers never wait on a provider response and a failed
// channel is logged, not surfaced.
package notify

import (
	"context"
	"log/slog"

	"marketplace-delivery/internal/models"
)

// Notifier is one outbound channel (message bus, email, ...).
type Notifier interface {
	QuoteRequestOpened(ctx context.Context, req *models.QuoteRequest, cart *models.CartSession) error
	DeliveryCodeIssued(ctx context.Context, order *models.Order, ownerEmail, code string) error
}

// Multi fans out to several channels best-effort. Errors are logged and
// swallowed so one dead channel cannot block solicitation.
type Multi struct {
	channels []Notifier
	logger   *slog.Logger
}

// NewMulti composes the given channels.
func NewMulti(logger *slog.Logger, channels ...Notifier) *Multi {
	return &Multi{channels: channels, logger: logger}
}

func (m *Multi) QuoteRequestOpened(ctx context.Context, req *models.QuoteRequest, cart *models.CartSession) error {
	for _, ch := range m.channels {
		if err := ch.QuoteRequestOpened(ctx, req, cart); err != nil {
			m.logger.Error("quote request fan-out failed", "request_id", req.ID, "error", err)
		}
	}
	return nil
}

func (m *Multi) DeliveryCodeIssued(ctx context.Context, order *models.Order, ownerEmail, code string) error {
	for _, ch := range m.channels {
		if err := ch.DeliveryCodeIssued(ctx, order, ownerEmail, code); err != nil {
			m.logger.Error("delivery code notification failed", "order_id", order.ID, "error", err)
		}
	}
	return nil
}
