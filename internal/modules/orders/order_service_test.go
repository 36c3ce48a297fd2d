package orders

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"marketplace-delivery/internal/models"

	"github.com/stretchr/testify/require"
)

type stubOrderRepo struct {
	mu        sync.Mutex
	createErr error
	orders    map[string]*models.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*models.Order)}
}

func (s *stubOrderRepo) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *stubOrderRepo) FindByID(_ context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderRepo) ListByShopOwner(_ context.Context, shopOwnerID string, _, _ int) ([]*models.Order, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Order
	for _, o := range s.orders {
		if o.ShopOwnerID == shopOwnerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type stubQuotes struct {
	request   *models.QuoteRequest
	quote     *models.Quote
	acceptErr error
	accepted  bool
}

func (s *stubQuotes) OpenRequest(context.Context, string, string, models.OpenQuoteRequestRequest) (*models.QuoteRequest, error) {
	panic("OpenRequest not expected")
}

func (s *stubQuotes) GetRequest(_ context.Context, requestID string) (*models.QuoteRequest, error) {
	if s.request == nil || s.request.ID != requestID {
		return nil, models.ErrNotFound
	}
	return s.request, nil
}

func (s *stubQuotes) AbandonRequest(context.Context, string, string) error {
	panic("AbandonRequest not expected")
}

func (s *stubQuotes) Submit(context.Context, string, string, models.SubmitQuoteRequest) (*models.Quote, error) {
	panic("Submit not expected")
}

func (s *stubQuotes) ListSelectable(context.Context, string, string) ([]*models.Quote, error) {
	panic("ListSelectable not expected")
}

func (s *stubQuotes) Accept(_ context.Context, _, quoteID string) (*models.Quote, error) {
	if s.acceptErr != nil {
		return nil, s.acceptErr
	}
	if s.quote == nil || s.quote.ID != quoteID {
		return nil, models.ErrNotFound
	}
	s.accepted = true
	s.quote.Status = models.QuoteStatusAccepted
	return s.quote, nil
}

func (s *stubQuotes) SweepExpired(context.Context) (int64, error) {
	panic("SweepExpired not expected")
}

type stubCarts struct {
	cart   *models.CartSession
	closed bool
}

func (s *stubCarts) Create(context.Context, string, models.CreateCartRequest) (*models.CartSession, error) {
	panic("Create not expected")
}

func (s *stubCarts) Get(_ context.Context, shopOwnerID, sessionID string) (*models.CartSession, error) {
	if s.cart == nil || s.cart.SessionID != sessionID || s.cart.ShopOwnerID != shopOwnerID {
		return nil, models.ErrNotFound
	}
	cp := *s.cart
	return &cp, nil
}

func (s *stubCarts) Update(context.Context, string, string, models.UpdateCartRequest) (*models.CartSession, error) {
	panic("Update not expected")
}

func (s *stubCarts) Abandon(context.Context, string, string) error {
	panic("Abandon not expected")
}

func (s *stubCarts) MarkQuoting(context.Context, string) (*models.CartSession, error) {
	panic("MarkQuoting not expected")
}

func (s *stubCarts) Close(context.Context, string) error {
	s.closed = true
	return nil
}

type stubDelivery struct {
	code       string
	assignment *models.DeliveryAssignment
}

func (s *stubDelivery) CreateAssignment(_ context.Context, orderID, providerID string) (*models.DeliveryAssignment, string, error) {
	s.assignment = &models.DeliveryAssignment{
		ID:         "assign-1",
		OrderID:    orderID,
		ProviderID: providerID,
		Status:     models.AssignmentAssigned,
	}
	return s.assignment, s.code, nil
}

func (s *stubDelivery) GetAssignment(context.Context, string) (*models.DeliveryAssignment, error) {
	panic("GetAssignment not expected")
}

func (s *stubDelivery) ListProviderAssignments(context.Context, string, int, int) ([]*models.DeliveryAssignment, int, error) {
	panic("ListProviderAssignments not expected")
}

func (s *stubDelivery) Transition(context.Context, string, string, models.AssignmentStatus) (*models.DeliveryAssignment, error) {
	panic("Transition not expected")
}

func (s *stubDelivery) Confirm(context.Context, string, string, models.ConfirmDeliveryRequest) (*models.ConfirmationRecord, error) {
	panic("Confirm not expected")
}

func (s *stubDelivery) GetConfirmation(context.Context, string) (*models.ConfirmationRecord, error) {
	panic("GetConfirmation not expected")
}

type stubNotifier struct {
	issued chan string
}

func (s *stubNotifier) QuoteRequestOpened(context.Context, *models.QuoteRequest, *models.CartSession) error {
	return nil
}

func (s *stubNotifier) DeliveryCodeIssued(_ context.Context, _ *models.Order, _ string, code string) error {
	if s.issued != nil {
		s.issued <- code
	}
	return nil
}

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo     *stubOrderRepo
	quotes   *stubQuotes
	carts    *stubCarts
	delivery *stubDelivery
	notifier *stubNotifier
	svc      *Service
}

// newFixture wires a finalizable state: an open request against a 7500
// cart with one pending 900 quote.
func newFixture() *fixture {
	f := &fixture{
		repo: newStubOrderRepo(),
		quotes: &stubQuotes{
			request: &models.QuoteRequest{
				ID:          "req-1",
				SessionID:   "sess-1",
				ShopOwnerID: "owner-1",
				Status:      models.RequestStatusOpen,
				ExpiresAt:   testTime.Add(time.Hour),
			},
			quote: &models.Quote{
				ID:          "q-1",
				RequestID:   "req-1",
				ProviderID:  "p-1",
				DeliveryFee: 900,
				ValidUntil:  testTime.Add(2 * time.Hour),
				Status:      models.QuoteStatusPending,
			},
		},
		carts: &stubCarts{cart: &models.CartSession{
			SessionID:   "sess-1",
			ShopOwnerID: "owner-1",
			Items:       []models.CartItem{{ID: "fish-1", Name: "Guppy", UnitPrice: 750, Quantity: 10}},
			Subtotal:    7500,
			Status:      models.CartStatusQuoting,
		}},
		delivery: &stubDelivery{code: "AB12C9"},
		notifier: &stubNotifier{issued: make(chan string, 1)},
	}
	f.svc = NewService(f.repo, f.quotes, f.carts, f.delivery, f.notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.svc.now = func() time.Time { return testTime }
	return f
}

func acceptReq() models.AcceptQuoteRequest {
	return models.AcceptQuoteRequest{
		PaymentMethod: string(models.PaymentBankTransfer),
		DeliveryDate:  testTime.Add(48 * time.Hour),
	}
}

func TestFinalize_RejectsBadPayload(t *testing.T) {
	t.Parallel()

	f := newFixture()

	req := acceptReq()
	req.PaymentMethod = "CREDIT_CARD"
	_, err := f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", req)
	require.ErrorIs(t, err, models.ErrValidation)

	req = acceptReq()
	req.DeliveryDate = time.Time{}
	_, err = f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", req)
	require.ErrorIs(t, err, models.ErrValidation)

	require.False(t, f.quotes.accepted, "validation failures must not touch the quote")
}

func TestFinalize_ForeignRequestReadsNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.Finalize(context.Background(), "intruder", "x@y.z", "req-1", "q-1", acceptReq())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestFinalize_AcceptErrorPropagates(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.quotes.acceptErr = models.ErrQuoteExpired

	_, err := f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", acceptReq())
	require.ErrorIs(t, err, models.ErrQuoteExpired)
	require.False(t, f.carts.closed)
}

func TestFinalize_TotalIsSubtotalPlusAcceptedFee(t *testing.T) {
	t.Parallel()

	f := newFixture()

	fin, err := f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", acceptReq())
	require.NoError(t, err)

	require.Equal(t, int64(7500), fin.Order.Subtotal)
	require.Equal(t, int64(900), fin.Order.DeliveryFee, "the accepted quote's fee, not any competitor's")
	require.Equal(t, int64(8400), fin.Order.TotalAmount)
	require.Equal(t, models.OrderStatusConfirmed, fin.Order.Status)
	require.Equal(t, "p-1", fin.Order.ProviderID)
	require.Equal(t, "q-1", fin.Order.AcceptedQuoteID)
}

func TestFinalize_AssignsDeliveryAndIssuesCode(t *testing.T) {
	t.Parallel()

	f := newFixture()

	fin, err := f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", acceptReq())
	require.NoError(t, err)

	require.NotNil(t, fin.Assignment)
	require.Equal(t, fin.Order.ID, fin.Assignment.OrderID)
	require.Equal(t, "p-1", fin.Assignment.ProviderID)
	require.Equal(t, "AB12C9", fin.DeliveryCode)

	require.True(t, f.carts.closed, "the cart session is destroyed on finalize")

	select {
	case code := <-f.notifier.issued:
		require.Equal(t, "AB12C9", code)
	case <-time.After(2 * time.Second):
		t.Fatal("the delivery code was never sent to the shop owner")
	}

	stored, err := f.repo.FindByID(context.Background(), fin.Order.ID)
	require.NoError(t, err)
	require.Equal(t, int64(8400), stored.TotalAmount)
}

func TestFinalize_CreateFailureFlagsReconciliation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.repo.createErr = errors.New("db down")
	var logs bytes.Buffer
	f.svc.logger = slog.New(slog.NewJSONHandler(&logs, nil))

	_, err := f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", acceptReq())
	require.Error(t, err)

	// The acceptance had already committed; the failure must surface and
	// leave a reconciliation marker, not vanish into a generic error.
	require.True(t, f.quotes.accepted)
	require.False(t, f.carts.closed)
	require.Contains(t, logs.String(), "reconciliation required")
}

func TestGetOrder_ScopedToOwner(t *testing.T) {
	t.Parallel()

	f := newFixture()
	fin, err := f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", acceptReq())
	require.NoError(t, err)

	got, err := f.svc.GetOrder(context.Background(), "owner-1", fin.Order.ID)
	require.NoError(t, err)
	require.Equal(t, fin.Order.ID, got.ID)

	_, err = f.svc.GetOrder(context.Background(), "intruder", fin.Order.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestListOrders_ClampsPaging(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.svc.Finalize(context.Background(), "owner-1", "owner@shop.vn", "req-1", "q-1", acceptReq())
	require.NoError(t, err)

	got, total, err := f.svc.ListOrders(context.Background(), "owner-1", 0, -5)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, got, 1)
}
