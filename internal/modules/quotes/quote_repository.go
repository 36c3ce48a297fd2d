package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for the quote registry.
type RepositoryInterface interface {
	CreateRequest(ctx context.Context, req *models.QuoteRequest) error
	FindRequest(ctx context.Context, requestID string) (*models.QuoteRequest, error)
	FindOpenRequestBySession(ctx context.Context, sessionID string, now time.Time) (*models.QuoteRequest, error)
	// CloseRequest moves a request from one status to another with a
	// compare-and-set on the current status. Returns ErrConflict when
	// the request exists but is no longer in `from`.
	CloseRequest(ctx context.Context, requestID string, from, to models.RequestStatus) error
	InsertQuote(ctx context.Context, q *models.Quote) error
	ListQuotes(ctx context.Context, requestID string) ([]*models.Quote, error)
	FindQuote(ctx context.Context, requestID, quoteID string) (*models.Quote, error)
	// AcceptQuote commits the acceptance atomically: the request-status
	// compare-and-set decides the winner under concurrent attempts, the
	// losing call gets ErrConflict. All sibling quotes become REJECTED.
	AcceptQuote(ctx context.Context, requestID, quoteID string) error
	// SweepExpired marks long-expired open requests EXPIRED. Pure
	// housekeeping: selectability never depends on it.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new quote repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) CreateRequest(ctx context.Context, req *models.QuoteRequest) error {
	query := `
		INSERT INTO quote_requests (id, session_id, shop_owner_id, provider_ids, sent_at, expires_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		req.ID, req.SessionID, req.ShopOwnerID, req.ProviderIDs, req.SentAt, req.ExpiresAt, req.Status)
	if err != nil {
		return fmt.Errorf("repository.CreateRequest: %w", err)
	}
	return nil
}

func (r *Repository) scanRequest(row pgx.Row) (*models.QuoteRequest, error) {
	req := &models.QuoteRequest{}
	err := row.Scan(&req.ID, &req.SessionID, &req.ShopOwnerID, &req.ProviderIDs, &req.SentAt, &req.ExpiresAt, &req.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan quote request: %w", err)
	}
	return req, nil
}

func (r *Repository) FindRequest(ctx context.Context, requestID string) (*models.QuoteRequest, error) {
	query := `
		SELECT id, session_id, shop_owner_id, provider_ids, sent_at, expires_at, status
		FROM quote_requests
		WHERE id = $1`
	return r.scanRequest(r.db.QueryRow(ctx, query, requestID))
}

func (r *Repository) FindOpenRequestBySession(ctx context.Context, sessionID string, now time.Time) (*models.QuoteRequest, error) {
	query := `
		SELECT id, session_id, shop_owner_id, provider_ids, sent_at, expires_at, status
		FROM quote_requests
		WHERE session_id = $1 AND status = $2 AND expires_at > $3`
	return r.scanRequest(r.db.QueryRow(ctx, query, sessionID, models.RequestStatusOpen, now))
}

func (r *Repository) CloseRequest(ctx context.Context, requestID string, from, to models.RequestStatus) error {
	query := `UPDATE quote_requests SET status = $1 WHERE id = $2 AND status = $3`
	cmd, err := r.db.Exec(ctx, query, to, requestID, from)
	if err != nil {
		return fmt.Errorf("repository.CloseRequest: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.FindRequest(ctx, requestID); err != nil {
			return err
		}
		return models.ErrConflict
	}
	return nil
}

func (r *Repository) InsertQuote(ctx context.Context, q *models.Quote) error {
	query := `
		INSERT INTO quotes (id, request_id, provider_id, provider_name, delivery_fee, rating,
			completed_deliveries, estimated_time, valid_until, price_breakdown, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		q.ID, q.RequestID, q.ProviderID, q.ProviderName, q.DeliveryFee, q.Rating,
		q.CompletedDeliveries, q.EstimatedTime, q.ValidUntil, q.PriceBreakdown, q.Status, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository.InsertQuote: %w", err)
	}
	return nil
}

const quoteColumns = `id, request_id, provider_id, provider_name, delivery_fee, rating,
	completed_deliveries, estimated_time, valid_until, price_breakdown, status, created_at`

func scanQuote(row pgx.Row) (*models.Quote, error) {
	q := &models.Quote{}
	err := row.Scan(&q.ID, &q.RequestID, &q.ProviderID, &q.ProviderName, &q.DeliveryFee, &q.Rating,
		&q.CompletedDeliveries, &q.EstimatedTime, &q.ValidUntil, &q.PriceBreakdown, &q.Status, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan quote: %w", err)
	}
	return q, nil
}

// ListQuotes returns all quotes under a request. No ordering is
// guaranteed; callers sort explicitly.
func (r *Repository) ListQuotes(ctx context.Context, requestID string) ([]*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE request_id = $1`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListQuotes: %w", err)
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListQuotes.Scan: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListQuotes.Rows: %w", err)
	}
	return quotes, nil
}

func (r *Repository) FindQuote(ctx context.Context, requestID, quoteID string) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE request_id = $1 AND id = $2`
	return scanQuote(r.db.QueryRow(ctx, query, requestID, quoteID))
}

func (r *Repository) AcceptQuote(ctx context.Context, requestID, quoteID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.AcceptQuote.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// The request row carries the acceptance lock: only one caller can
	// flip OPEN to ACCEPTED, everyone else loses the race here.
	cmd, err := tx.Exec(ctx,
		`UPDATE quote_requests SET status = $1 WHERE id = $2 AND status = $3`,
		models.RequestStatusAccepted, requestID, models.RequestStatusOpen)
	if err != nil {
		return fmt.Errorf("repository.AcceptQuote.Request: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.FindRequest(ctx, requestID); err != nil {
			return err
		}
		return models.ErrConflict
	}

	cmd, err = tx.Exec(ctx,
		`UPDATE quotes SET status = $1 WHERE request_id = $2 AND id = $3 AND status = $4`,
		models.QuoteStatusAccepted, requestID, quoteID, models.QuoteStatusPending)
	if err != nil {
		return fmt.Errorf("repository.AcceptQuote.Target: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		// Rollback releases the request status.
		return models.ErrConflict
	}

	_, err = tx.Exec(ctx,
		`UPDATE quotes SET status = $1 WHERE request_id = $2 AND id <> $3`,
		models.QuoteStatusRejected, requestID, quoteID)
	if err != nil {
		return fmt.Errorf("repository.AcceptQuote.Siblings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.AcceptQuote.Commit: %w", err)
	}
	return nil
}

func (r *Repository) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx,
		`UPDATE quote_requests SET status = $1 WHERE status = $2 AND expires_at <= $3`,
		models.RequestStatusExpired, models.RequestStatusOpen, now)
	if err != nil {
		return 0, fmt.Errorf("repository.SweepExpired: %w", err)
	}
	return cmd.RowsAffected(), nil
}
