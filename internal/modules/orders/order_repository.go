package orders

import (
	"context"
	"errors"
	"fmt"

	"marketplace-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByShopOwner(ctx context.Context, shopOwnerID string, page, limit int) ([]*models.Order, int, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, session_id, shop_owner_id, items, subtotal, delivery_fee, total_amount,
	payment_method, accepted_quote_id, provider_id, delivery_date, status, created_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.SessionID, &order.ShopOwnerID, &order.Items,
		&order.Subtotal, &order.DeliveryFee, &order.TotalAmount,
		&order.PaymentMethod, &order.AcceptedQuoteID, &order.ProviderID,
		&order.DeliveryDate, &order.Status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return order, nil
}

// Create inserts a finalized order. Items are stored as JSONB.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, session_id, shop_owner_id, items, subtotal, delivery_fee, total_amount,
			payment_method, accepted_quote_id, provider_id, delivery_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.Exec(ctx, query,
		order.ID, order.SessionID, order.ShopOwnerID, order.Items,
		order.Subtotal, order.DeliveryFee, order.TotalAmount,
		order.PaymentMethod, order.AcceptedQuoteID, order.ProviderID,
		order.DeliveryDate, order.Status, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

// FindByID retrieves a single order by its ID.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(ctx, query, orderID))
}

// ListByShopOwner retrieves the shop owner's orders with pagination.
func (r *Repository) ListByShopOwner(ctx context.Context, shopOwnerID string, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE shop_owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, shopOwnerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByShopOwner.Query: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByShopOwner.Scan: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByShopOwner.Rows: %w", err)
	}

	var total int
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE shop_owner_id = $1`, shopOwnerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByShopOwner.Count: %w", err)
	}
	return orders, total, nil
}
