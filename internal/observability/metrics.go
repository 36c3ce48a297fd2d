package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuoteRequestsOpened = promauto.NewCounter(prometheus.CounterOpts{Namespace: "marketplace_delivery", Name: "quote_requests_opened_total", Help: "Quote requests opened by shop owners"})
	QuotesSubmitted     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "marketplace_delivery", Name: "quotes_submitted_total", Help: "Quotes submitted by providers"})
	QuotesAccepted      = promauto.NewCounter(prometheus.CounterOpts{Namespace: "marketplace_delivery", Name: "quotes_accepted_total", Help: "Quotes accepted and finalized into orders"})
	RequestsSwept       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "marketplace_delivery", Name: "quote_requests_swept_total", Help: "Long-expired quote requests closed by the housekeeping sweep"})

	DeliveryTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "marketplace_delivery", Name: "delivery_transitions_total", Help: "Delivery lifecycle transitions by target status"},
		[]string{"status"},
	)
	DeliveriesConfirmed = promauto.NewCounter(prometheus.CounterOpts{Namespace: "marketplace_delivery", Name: "deliveries_confirmed_total", Help: "Deliveries completed through the confirmation protocol"})
)
