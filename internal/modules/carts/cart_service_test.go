package carts

import (
	"context"
	"testing"

	"marketplace-delivery/internal/models"

	"github.com/stretchr/testify/require"
)

func createReq() models.CreateCartRequest {
	return models.CreateCartRequest{
		Items: []models.CartItem{
			{ID: "fish-1", Name: "Guppy", UnitPrice: 750, Quantity: 10},
			{ID: "tank-1", Name: "20L Tank", UnitPrice: 12000, Quantity: 1},
		},
		ResponseWindowHours: 2,
	}
}

func TestCreate_ComputesSubtotal(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	cart, err := svc.Create(context.Background(), "owner-1", createReq())
	require.NoError(t, err)
	require.Equal(t, int64(19500), cart.Subtotal)
	require.Equal(t, models.CartStatusOpen, cart.Status)
	require.NotEmpty(t, cart.SessionID)
}

func TestGet_ForeignSessionReadsNotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	cart, err := svc.Create(context.Background(), "owner-1", createReq())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "intruder", cart.SessionID)
	require.ErrorIs(t, err, models.ErrNotFound)

	got, err := svc.Get(context.Background(), "owner-1", cart.SessionID)
	require.NoError(t, err)
	require.Equal(t, cart.SessionID, got.SessionID)
}

func TestUpdate_RecomputesSubtotal(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	cart, err := svc.Create(context.Background(), "owner-1", createReq())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "owner-1", cart.SessionID, models.UpdateCartRequest{
		Items:               []models.CartItem{{ID: "fish-1", Name: "Guppy", UnitPrice: 750, Quantity: 4}},
		ResponseWindowHours: 3,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3000), updated.Subtotal)
	require.Equal(t, 3, updated.ResponseWindowHours)
}

func TestUpdate_FrozenWhileQuoting(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	cart, err := svc.Create(context.Background(), "owner-1", createReq())
	require.NoError(t, err)

	_, err = svc.MarkQuoting(context.Background(), cart.SessionID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "owner-1", cart.SessionID, models.UpdateCartRequest{
		Items:               createReq().Items,
		ResponseWindowHours: 2,
	})
	require.ErrorIs(t, err, models.ErrConflict)

	err = svc.Abandon(context.Background(), "owner-1", cart.SessionID)
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestAbandon_DeletesSession(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	cart, err := svc.Create(context.Background(), "owner-1", createReq())
	require.NoError(t, err)

	require.NoError(t, svc.Abandon(context.Background(), "owner-1", cart.SessionID))

	_, err = svc.Get(context.Background(), "owner-1", cart.SessionID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestClose_RemovesSession(t *testing.T) {
	t.Parallel()

	svc := NewService(NewMemoryStore())
	cart, err := svc.Create(context.Background(), "owner-1", createReq())
	require.NoError(t, err)

	require.NoError(t, svc.Close(context.Background(), cart.SessionID))
	require.ErrorIs(t, svc.Close(context.Background(), cart.SessionID), models.ErrNotFound)
}
