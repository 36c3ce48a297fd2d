package notify

import (
	"context"
	"fmt"
	"time"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/pkg/email"
)

// ProviderDirectory resolves a provider id to a contact email. Provider
// identity lives in the external identity service; the default wiring
// uses the address registered with the JWT issuer.
type ProviderDirectory interface {
	EmailFor(ctx context.Context, providerID string) (string, error)
}

// EmailNotifier sends quote invitations to providers and the
// confirmation code to the shop owner through SES.
type EmailNotifier struct {
	sender    email.ServiceInterface
	templates *email.TemplateManager
	directory ProviderDirectory
}

// NewEmailNotifier wires the SES sender, parsed templates and the
// provider directory.
func NewEmailNotifier(sender email.ServiceInterface, tm *email.TemplateManager, directory ProviderDirectory) *EmailNotifier {
	return &EmailNotifier{sender: sender, templates: tm, directory: directory}
}

func (n *EmailNotifier) QuoteRequestOpened(ctx context.Context, req *models.QuoteRequest, cart *models.CartSession) error {
	data := email.QuoteInviteData{
		RequestID: req.ID,
		ItemCount: len(cart.Items),
		Deadline:  req.ExpiresAt.Format(time.RFC1123),
	}
	var firstErr error
	for _, providerID := range req.ProviderIDs {
		addr, err := n.directory.EmailFor(ctx, providerID)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("resolve provider %s: %w", providerID, err)
			}
			continue
		}
		data.ProviderID = providerID
		html, err := n.templates.GenerateQuoteInviteHTML(data)
		if err != nil {
			return err
		}
		plain := fmt.Sprintf("New delivery quote request %s (%d items). Respond before %s.",
			req.ID, len(cart.Items), data.Deadline)
		if err := n.sender.SendEmail(ctx, addr, "New delivery quote request", plain, html); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *EmailNotifier) DeliveryCodeIssued(ctx context.Context, order *models.Order, ownerEmail, code string) error {
	if ownerEmail == "" {
		return nil
	}
	html, err := n.templates.GenerateDeliveryCodeHTML(email.DeliveryCodeData{OrderID: order.ID, Code: code})
	if err != nil {
		return err
	}
	plain := fmt.Sprintf("Order %s confirmed. Your delivery confirmation code is %s.", order.ID, code)
	return n.sender.SendEmail(ctx, ownerEmail, "Your delivery confirmation code", plain, html)
}

// StaticDirectory is a fixed provider-id to email map, loadable from
// configuration. Unknown providers resolve to an error and are skipped
// by the notifier.
type StaticDirectory map[string]string

func (d StaticDirectory) EmailFor(_ context.Context, providerID string) (string, error) {
	addr, ok := d[providerID]
	if !ok {
		return "", fmt.Errorf("no contact email for provider %s", providerID)
	}
	return addr, nil
}
