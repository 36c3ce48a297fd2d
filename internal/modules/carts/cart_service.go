// Package carts manages the shop owner's in-flight cart sessions: the
// mutable precursor to a quote request.
package carts

import (
	"context"
	"fmt"
	"time"

	"marketplace-delivery/internal/models"

	"github.com/google/uuid"
)

// ServiceInterface defines the cart session operations.
type ServiceInterface interface {
	Create(ctx context.Context, shopOwnerID string, req models.CreateCartRequest) (*models.CartSession, error)
	Get(ctx context.Context, shopOwnerID, sessionID string) (*models.CartSession, error)
	Update(ctx context.Context, shopOwnerID, sessionID string, req models.UpdateCartRequest) (*models.CartSession, error)
	Abandon(ctx context.Context, shopOwnerID, sessionID string) error

	// MarkQuoting freezes the cart once a quote request is opened
	// against it. Called by the quotes module.
	MarkQuoting(ctx context.Context, sessionID string) (*models.CartSession, error)
	// Close removes the session once an order is finalized.
	Close(ctx context.Context, sessionID string) error
}

// Service implements the cart session logic.
type Service struct {
	store StoreInterface
	now   func() time.Time
}

// NewService creates a cart service over the given store.
func NewService(store StoreInterface) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Create(ctx context.Context, shopOwnerID string, req models.CreateCartRequest) (*models.CartSession, error) {
	cart := &models.CartSession{
		SessionID:           uuid.New().String(),
		ShopOwnerID:         shopOwnerID,
		Items:               req.Items,
		ResponseWindowHours: req.ResponseWindowHours,
		Status:              models.CartStatusOpen,
		CreatedAt:           s.now(),
	}
	cart.Subtotal = cart.ComputeSubtotal()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}
	return cart, nil
}

// find loads the session and checks ownership. A foreign session reads
// as not found to avoid leaking its existence.
func (s *Service) find(ctx context.Context, shopOwnerID, sessionID string) (*models.CartSession, error) {
	cart, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.ShopOwnerID != shopOwnerID {
		return nil, models.ErrNotFound
	}
	return cart, nil
}

func (s *Service) Get(ctx context.Context, shopOwnerID, sessionID string) (*models.CartSession, error) {
	return s.find(ctx, shopOwnerID, sessionID)
}

func (s *Service) Update(ctx context.Context, shopOwnerID, sessionID string, req models.UpdateCartRequest) (*models.CartSession, error) {
	cart, err := s.find(ctx, shopOwnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.Status != models.CartStatusOpen {
		return nil, fmt.Errorf("cart has an open quote request: %w", models.ErrConflict)
	}

	cart.Items = req.Items
	cart.ResponseWindowHours = req.ResponseWindowHours
	cart.Subtotal = cart.ComputeSubtotal()

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("service.Update: %w", err)
	}
	return cart, nil
}

func (s *Service) Abandon(ctx context.Context, shopOwnerID, sessionID string) error {
	cart, err := s.find(ctx, shopOwnerID, sessionID)
	if err != nil {
		return err
	}
	if cart.Status != models.CartStatusOpen {
		return fmt.Errorf("abandon the quote request first: %w", models.ErrConflict)
	}
	return s.store.Delete(ctx, sessionID)
}

func (s *Service) MarkQuoting(ctx context.Context, sessionID string) (*models.CartSession, error) {
	cart, err := s.store.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Status = models.CartStatusQuoting
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("service.MarkQuoting: %w", err)
	}
	return cart, nil
}

func (s *Service) Close(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
