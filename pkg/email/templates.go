package email

import (
	"bytes"
	"html/template"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	quoteInviteTmpl  *template.Template
	deliveryCodeTmpl *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	inviteTmpl, err := template.New("quoteInvite").Parse(quoteInviteTemplate)
	if err != nil {
		return nil, err
	}

	codeTmpl, err := template.New("deliveryCode").Parse(deliveryCodeTemplate)
	if err != nil {
		return nil, err
	}

	return &TemplateManager{
		quoteInviteTmpl:  inviteTmpl,
		deliveryCodeTmpl: codeTmpl,
	}, nil
}

// QuoteInviteData feeds the provider invitation template.
type QuoteInviteData struct {
	ProviderID string
	RequestID  string
	ItemCount  int
	Deadline   string
}

// DeliveryCodeData feeds the shop-owner code issuance template.
type DeliveryCodeData struct {
	OrderID string
	Code    string
}

// GenerateQuoteInviteHTML renders the provider invitation email.
func (tm *TemplateManager) GenerateQuoteInviteHTML(data QuoteInviteData) (string, error) {
	var body bytes.Buffer
	if err := tm.quoteInviteTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GenerateDeliveryCodeHTML renders the confirmation code email.
func (tm *TemplateManager) GenerateDeliveryCodeHTML(data DeliveryCodeData) (string, error) {
	var body bytes.Buffer
	if err := tm.deliveryCodeTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const quoteInviteTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>New Delivery Quote Request</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>New delivery quote request</h2>
	<p>A shop owner has requested a delivery quote ({{.ItemCount}} items, request {{.RequestID}}).</p>
	<p>Submit your offer before <strong>{{.Deadline}}</strong>; after that the request closes.</p>
</body>
</html>
`

const deliveryCodeTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Your Delivery Confirmation Code</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Order {{.OrderID}} confirmed</h2>
	<p>Give this code to the delivery person on arrival. It is required to complete the delivery:</p>
	<p style="font-size: 24px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
	<p>Do not share it before your goods arrive.</p>
</body>
</html>
`
