// Package orders finalizes an accepted quote into a confirmed order and
// opens its delivery assignment.
package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/internal/modules/carts"
	"marketplace-delivery/internal/modules/delivery"
	"marketplace-delivery/internal/modules/quotes"
	"marketplace-delivery/internal/notify"

	"github.com/google/uuid"
)

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	// Finalize is the single boundary call behind "accept quote": it
	// commits the acceptance, builds the order from the cart plus the
	// accepted quote, opens the delivery assignment and issues the
	// confirmation code.
	Finalize(ctx context.Context, shopOwnerID, ownerEmail, requestID, quoteID string, req models.AcceptQuoteRequest) (*models.FinalizedOrder, error)
	GetOrder(ctx context.Context, shopOwnerID, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, shopOwnerID string, page, limit int) ([]*models.Order, int, error)
}

// Service implements the order finalizer.
type Service struct {
	repo        RepositoryInterface
	quotesSvc   quotes.ServiceInterface
	cartsSvc    carts.ServiceInterface
	deliverySvc delivery.ServiceInterface
	notifier    notify.Notifier
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a new order service.
func NewService(
	repo RepositoryInterface,
	quotesSvc quotes.ServiceInterface,
	cartsSvc carts.ServiceInterface,
	deliverySvc delivery.ServiceInterface,
	notifier notify.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:        repo,
		quotesSvc:   quotesSvc,
		cartsSvc:    cartsSvc,
		deliverySvc: deliverySvc,
		notifier:    notifier,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Finalize(ctx context.Context, shopOwnerID, ownerEmail, requestID, quoteID string, req models.AcceptQuoteRequest) (*models.FinalizedOrder, error) {
	method := models.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, fmt.Errorf("payment method %q is not allowed: %w", req.PaymentMethod, models.ErrValidation)
	}
	if req.DeliveryDate.IsZero() {
		return nil, fmt.Errorf("delivery date is required: %w", models.ErrValidation)
	}

	request, err := s.quotesSvc.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ShopOwnerID != shopOwnerID {
		return nil, models.ErrNotFound
	}

	// Snapshot the cart before acceptance closes it.
	cart, err := s.cartsSvc.Get(ctx, shopOwnerID, request.SessionID)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotesSvc.Accept(ctx, requestID, quoteID)
	if err != nil {
		return nil, err
	}

	// The total is always derived from the stored subtotal and the
	// accepted fee; a client-supplied total is never trusted.
	order := &models.Order{
		ID:              uuid.New().String(),
		SessionID:       request.SessionID,
		ShopOwnerID:     shopOwnerID,
		Items:           cart.Items,
		Subtotal:        cart.Subtotal,
		DeliveryFee:     quote.DeliveryFee,
		TotalAmount:     cart.Subtotal + quote.DeliveryFee,
		PaymentMethod:   method,
		AcceptedQuoteID: quote.ID,
		ProviderID:      quote.ProviderID,
		DeliveryDate:    req.DeliveryDate,
		Status:          models.OrderStatusConfirmed,
		CreatedAt:       s.now(),
	}
	if err := s.repo.Create(ctx, order); err != nil {
		// The acceptance has already committed; flag the orphaned quote
		// for reconciliation rather than leaving it silent.
		s.logger.Error("order creation failed after quote acceptance, reconciliation required",
			"request_id", requestID, "quote_id", quote.ID, "session_id", request.SessionID, "error", err)
		return nil, fmt.Errorf("service.Finalize: %w", err)
	}

	assignment, code, err := s.deliverySvc.CreateAssignment(ctx, order.ID, quote.ProviderID)
	if err != nil {
		s.logger.Error("assignment creation failed for confirmed order, reconciliation required",
			"order_id", order.ID, "quote_id", quote.ID, "provider_id", quote.ProviderID, "error", err)
		return nil, fmt.Errorf("service.Finalize.CreateAssignment: %w", err)
	}

	if err := s.cartsSvc.Close(ctx, request.SessionID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Finalize.CloseCart: %w", err)
	}

	go func(order *models.Order, ownerEmail, code string) {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.notifier.DeliveryCodeIssued(nctx, order, ownerEmail, code); err != nil {
			s.logger.Error("delivery code notification failed", "order_id", order.ID, "error", err)
		}
	}(order, ownerEmail, code)

	s.logger.Info("order finalized",
		"order_id", order.ID, "request_id", requestID, "quote_id", quote.ID,
		"provider_id", quote.ProviderID, "total", order.TotalAmount)

	return &models.FinalizedOrder{Order: order, Assignment: assignment, DeliveryCode: code}, nil
}

// GetOrder retrieves a single order, scoped to its owner. A foreign
// order reads as not found to avoid leaking information.
func (s *Service) GetOrder(ctx context.Context, shopOwnerID, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ShopOwnerID != shopOwnerID {
		return nil, models.ErrNotFound
	}
	return order, nil
}

func (s *Service) ListOrders(ctx context.Context, shopOwnerID string, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByShopOwner(ctx, shopOwnerID, page, limit)
}
