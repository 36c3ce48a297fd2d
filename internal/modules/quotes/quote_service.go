// Package quotes implements the quote registry, the solicitation manager
// and the selector: request, multi-party offers, selection.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/internal/modules/carts"
	"marketplace-delivery/internal/notify"
	"marketplace-delivery/internal/observability"

	"github.com/google/uuid"
)

// ServiceInterface defines the contract for the quote service.
type ServiceInterface interface {
	OpenRequest(ctx context.Context, shopOwnerID, sessionID string, req models.OpenQuoteRequestRequest) (*models.QuoteRequest, error)
	GetRequest(ctx context.Context, requestID string) (*models.QuoteRequest, error)
	AbandonRequest(ctx context.Context, shopOwnerID, requestID string) error
	Submit(ctx context.Context, providerID, requestID string, req models.SubmitQuoteRequest) (*models.Quote, error)
	ListSelectable(ctx context.Context, requestID, sortKey string) ([]*models.Quote, error)
	// Accept commits an acceptance: the target quote becomes ACCEPTED,
	// all siblings REJECTED, the request closes. Expiry is re-checked at
	// commit time, not just at selection time.
	Accept(ctx context.Context, requestID, quoteID string) (*models.Quote, error)
	SweepExpired(ctx context.Context) (int64, error)
}

// Service implements the quote workflow.
type Service struct {
	repo     RepositoryInterface
	cartsSvc carts.ServiceInterface
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new quote service.
func NewService(repo RepositoryInterface, cartsSvc carts.ServiceInterface, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cartsSvc: cartsSvc,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OpenRequest opens a solicitation against a cart session and fans it
// out to the chosen providers.
func (s *Service) OpenRequest(ctx context.Context, shopOwnerID, sessionID string, req models.OpenQuoteRequestRequest) (*models.QuoteRequest, error) {
	if len(req.ProviderIDs) == 0 {
		return nil, fmt.Errorf("provider list is empty: %w", models.ErrValidation)
	}

	cart, err := s.cartsSvc.Get(ctx, shopOwnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.ResponseWindowHours <= 0 {
		return nil, fmt.Errorf("response window must be positive: %w", models.ErrValidation)
	}

	now := s.now()
	if existing, err := s.repo.FindOpenRequestBySession(ctx, sessionID, now); err == nil && existing != nil {
		return nil, fmt.Errorf("session already has an open quote request: %w", models.ErrConflict)
	} else if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("service.OpenRequest: %w", err)
	}

	request := &models.QuoteRequest{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		ShopOwnerID: shopOwnerID,
		ProviderIDs: req.ProviderIDs,
		SentAt:      now,
		ExpiresAt:   now.Add(time.Duration(cart.ResponseWindowHours) * time.Hour),
		Status:      models.RequestStatusOpen,
	}
	if err := s.repo.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("service.OpenRequest: %w", err)
	}

	if _, err := s.cartsSvc.MarkQuoting(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("service.OpenRequest.MarkQuoting: %w", err)
	}

	// Fire and forget: providers answer via inbound submissions, never
	// synchronously. The detached context outlives the HTTP request.
	go func(req *models.QuoteRequest, cart *models.CartSession) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.notifier.QuoteRequestOpened(ctx, req, cart); err != nil {
			s.logger.Error("quote request dispatch failed", "request_id", req.ID, "error", err)
		}
	}(request, cart)

	observability.QuoteRequestsOpened.Inc()
	s.logger.Info("quote request opened",
		"request_id", request.ID, "session_id", sessionID, "providers", len(req.ProviderIDs),
		"expires_at", request.ExpiresAt)

	return request, nil
}

func (s *Service) GetRequest(ctx context.Context, requestID string) (*models.QuoteRequest, error) {
	return s.repo.FindRequest(ctx, requestID)
}

// AbandonRequest closes an open request before any acceptance. All
// pending quotes become unselectable and the cart session is cleared.
func (s *Service) AbandonRequest(ctx context.Context, shopOwnerID, requestID string) error {
	request, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ShopOwnerID != shopOwnerID {
		return models.ErrNotFound
	}

	if err := s.repo.CloseRequest(ctx, requestID, models.RequestStatusOpen, models.RequestStatusAbandoned); err != nil {
		return err
	}
	if err := s.cartsSvc.Close(ctx, request.SessionID); err != nil && !isNotFound(err) {
		return fmt.Errorf("service.AbandonRequest.CloseCart: %w", err)
	}
	return nil
}

// Submit registers a provider's offer against an open request.
func (s *Service) Submit(ctx context.Context, providerID, requestID string, req models.SubmitQuoteRequest) (*models.Quote, error) {
	request, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !request.Open(now) {
		return nil, fmt.Errorf("quote request is closed or expired: %w", models.ErrValidation)
	}
	if req.DeliveryFee < 0 {
		return nil, fmt.Errorf("delivery fee must not be negative: %w", models.ErrValidation)
	}
	if !req.ValidUntil.After(now) {
		return nil, fmt.Errorf("valid_until is already in the past: %w", models.ErrValidation)
	}

	quote := &models.Quote{
		ID:                  uuid.New().String(),
		RequestID:           requestID,
		ProviderID:          providerID,
		ProviderName:        req.ProviderName,
		DeliveryFee:         req.DeliveryFee,
		Rating:              req.Rating,
		CompletedDeliveries: req.CompletedDeliveries,
		EstimatedTime:       req.EstimatedTime,
		ValidUntil:          req.ValidUntil,
		PriceBreakdown:      req.PriceBreakdown,
		Status:              models.QuoteStatusPending,
		CreatedAt:           now,
	}
	if err := s.repo.InsertQuote(ctx, quote); err != nil {
		return nil, fmt.Errorf("service.Submit: %w", err)
	}

	observability.QuotesSubmitted.Inc()
	return quote, nil
}

// ListSelectable returns the quotes that can still be accepted, sorted
// by the caller-chosen key. An empty result is not an error; the caller
// decides between requesting new quotes and abandoning.
func (s *Service) ListSelectable(ctx context.Context, requestID, sortKey string) ([]*models.Quote, error) {
	if sortKey == "" {
		sortKey = models.SortPriceAsc
	}
	if sortKey != models.SortPriceAsc && sortKey != models.SortRatingDesc {
		return nil, fmt.Errorf("unknown sort key %q: %w", sortKey, models.ErrValidation)
	}

	request, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// Once the response window closes, nothing under the request is
	// selectable, whether or not the sweeper has run.
	now := s.now()
	if !now.Before(request.ExpiresAt) {
		return []*models.Quote{}, nil
	}

	all, err := s.repo.ListQuotes(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service.ListSelectable: %w", err)
	}
	selectable := make([]*models.Quote, 0, len(all))
	for _, q := range all {
		if !q.Selectable(now) {
			continue
		}
		q.Validity = models.ClassifyValidity(q.ValidUntil, now)
		selectable = append(selectable, q)
	}

	sortQuotes(selectable, sortKey)
	return selectable, nil
}

// sortQuotes orders quotes deterministically. price_asc breaks ties on
// ascending provider id, rating_desc on descending completed deliveries.
func sortQuotes(quotes []*models.Quote, sortKey string) {
	switch sortKey {
	case models.SortRatingDesc:
		sort.SliceStable(quotes, func(i, j int) bool {
			if quotes[i].Rating != quotes[j].Rating {
				return quotes[i].Rating > quotes[j].Rating
			}
			return quotes[i].CompletedDeliveries > quotes[j].CompletedDeliveries
		})
	default: // models.SortPriceAsc
		sort.SliceStable(quotes, func(i, j int) bool {
			if quotes[i].DeliveryFee != quotes[j].DeliveryFee {
				return quotes[i].DeliveryFee < quotes[j].DeliveryFee
			}
			return quotes[i].ProviderID < quotes[j].ProviderID
		})
	}
}

func (s *Service) Accept(ctx context.Context, requestID, quoteID string) (*models.Quote, error) {
	request, err := s.repo.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	// The response window bounds acceptance the same way it bounds
	// selection, derived from expires_at so the outcome never depends
	// on whether the housekeeping sweep has already marked the request.
	now := s.now()
	if !now.Before(request.ExpiresAt) {
		return nil, fmt.Errorf("response window has closed: %w", models.ErrQuoteExpired)
	}

	quote, err := s.repo.FindQuote(ctx, requestID, quoteID)
	if err != nil {
		return nil, err
	}

	// Re-check at commit time: the quote may have expired between being
	// shown and being accepted.
	if !now.Before(quote.ValidUntil) {
		return nil, models.ErrQuoteExpired
	}
	if quote.Status != models.QuoteStatusPending {
		return nil, fmt.Errorf("quote is no longer pending: %w", models.ErrConflict)
	}

	if err := s.repo.AcceptQuote(ctx, requestID, quoteID); err != nil {
		return nil, err
	}

	quote.Status = models.QuoteStatusAccepted
	observability.QuotesAccepted.Inc()
	s.logger.Info("quote accepted", "request_id", requestID, "quote_id", quoteID, "provider_id", quote.ProviderID)
	return quote, nil
}

// SweepExpired is periodic housekeeping over long-expired requests.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.SweepExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.RequestsSwept.Add(float64(n))
		s.logger.Info("expired quote requests swept", "count", n)
	}
	return n, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
