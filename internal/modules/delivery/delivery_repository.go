package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-delivery/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for assignment persistence.
type RepositoryInterface interface {
	Create(ctx context.Context, a *models.DeliveryAssignment) error
	FindByID(ctx context.Context, assignmentID string) (*models.DeliveryAssignment, error)
	ListByProvider(ctx context.Context, providerID string, page, limit int) ([]*models.DeliveryAssignment, int, error)
	// UpdateStatus is a compare-and-set on the current status. Returns
	// ErrConflict when the assignment exists but is no longer in `from`.
	UpdateStatus(ctx context.Context, assignmentID string, from, to models.AssignmentStatus, startedAt *time.Time, now time.Time) error
	// Confirm inserts the confirmation record and flips ARRIVED to
	// DELIVERED in one transaction; the status CAS makes the first
	// confirmation win and repeats fail with ErrConflict.
	Confirm(ctx context.Context, rec *models.ConfirmationRecord, now time.Time) error
	FindConfirmation(ctx context.Context, assignmentID string) (*models.ConfirmationRecord, error)
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new delivery repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const assignmentColumns = `id, order_id, provider_id, status, code_hash, started_at, completed_at, created_at, updated_at`

func scanAssignment(row pgx.Row) (*models.DeliveryAssignment, error) {
	a := &models.DeliveryAssignment{}
	err := row.Scan(&a.ID, &a.OrderID, &a.ProviderID, &a.Status, &a.CodeHash,
		&a.StartedAt, &a.CompletedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan assignment: %w", err)
	}
	return a, nil
}

func (r *Repository) Create(ctx context.Context, a *models.DeliveryAssignment) error {
	query := `
		INSERT INTO delivery_assignments (id, order_id, provider_id, status, code_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`
	_, err := r.db.Exec(ctx, query, a.ID, a.OrderID, a.ProviderID, a.Status, a.CodeHash, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository.Create: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, assignmentID string) (*models.DeliveryAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM delivery_assignments WHERE id = $1`
	return scanAssignment(r.db.QueryRow(ctx, query, assignmentID))
}

func (r *Repository) ListByProvider(ctx context.Context, providerID string, page, limit int) ([]*models.DeliveryAssignment, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT ` + assignmentColumns + `
		FROM delivery_assignments
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, providerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByProvider.Query: %w", err)
	}
	defer rows.Close()

	var assignments []*models.DeliveryAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByProvider.Scan: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByProvider.Rows: %w", err)
	}

	var total int
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM delivery_assignments WHERE provider_id = $1`, providerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByProvider.Count: %w", err)
	}
	return assignments, total, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, assignmentID string, from, to models.AssignmentStatus, startedAt *time.Time, now time.Time) error {
	query := `
		UPDATE delivery_assignments
		SET status = $1, started_at = COALESCE(started_at, $2), updated_at = $3
		WHERE id = $4 AND status = $5`
	cmd, err := r.db.Exec(ctx, query, to, startedAt, now, assignmentID, from)
	if err != nil {
		return fmt.Errorf("repository.UpdateStatus: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, assignmentID); err != nil {
			return err
		}
		return models.ErrConflict
	}
	return nil
}

func (r *Repository) Confirm(ctx context.Context, rec *models.ConfirmationRecord, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.Confirm.Begin: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE delivery_assignments
		SET status = $1, completed_at = $2, updated_at = $2
		WHERE id = $3 AND status = $4`,
		models.AssignmentDelivered, now, rec.AssignmentID, models.AssignmentArrived)
	if err != nil {
		return fmt.Errorf("repository.Confirm.Status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, rec.AssignmentID); err != nil {
			return err
		}
		return models.ErrConflict
	}

	var lat, lng *float64
	if rec.Geolocation != nil {
		lat, lng = &rec.Geolocation.Lat, &rec.Geolocation.Lng
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO delivery_confirmations (assignment_id, code, signer_name, notes, geo_lat, geo_lng, captured_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
		rec.AssignmentID, rec.Code, rec.SignerName, rec.Notes, lat, lng, rec.CapturedAt)
	if err != nil {
		return fmt.Errorf("repository.Confirm.Insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.Confirm.Commit: %w", err)
	}
	return nil
}

func (r *Repository) FindConfirmation(ctx context.Context, assignmentID string) (*models.ConfirmationRecord, error) {
	query := `
		SELECT assignment_id, code, signer_name, COALESCE(notes, ''), geo_lat, geo_lng, captured_at
		FROM delivery_confirmations
		WHERE assignment_id = $1`
	rec := &models.ConfirmationRecord{}
	var lat, lng *float64
	err := r.db.QueryRow(ctx, query, assignmentID).
		Scan(&rec.AssignmentID, &rec.Code, &rec.SignerName, &rec.Notes, &lat, &lng, &rec.CapturedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindConfirmation: %w", err)
	}
	if lat != nil && lng != nil {
		rec.Geolocation = &models.Geolocation{Lat: *lat, Lng: *lng}
	}
	return rec, nil
}
