// Package delivery drives the assignment lifecycle state machine and the
// proof-of-delivery confirmation protocol.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketplace-delivery/internal/models"
	"marketplace-delivery/internal/observability"
	"marketplace-delivery/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Locator resolves a best-effort geolocation for a confirmation when the
// request itself carries none. Failures degrade to a null location.
type Locator interface {
	Locate(ctx context.Context, assignmentID string) (*models.Geolocation, error)
}

// locateTimeout bounds the best-effort geolocation lookup so it can
// never stall a confirmation.
const locateTimeout = 2 * time.Second

// ServiceInterface defines the contract for the delivery service.
type ServiceInterface interface {
	// CreateAssignment opens the lifecycle for a finalized order and
	// issues the confirmation code. The plain code is returned exactly
	// once; only its hash is stored.
	CreateAssignment(ctx context.Context, orderID, providerID string) (*models.DeliveryAssignment, string, error)
	GetAssignment(ctx context.Context, assignmentID string) (*models.DeliveryAssignment, error)
	ListProviderAssignments(ctx context.Context, providerID string, page, limit int) ([]*models.DeliveryAssignment, int, error)
	Transition(ctx context.Context, providerID, assignmentID string, target models.AssignmentStatus) (*models.DeliveryAssignment, error)
	Confirm(ctx context.Context, providerID, assignmentID string, req models.ConfirmDeliveryRequest) (*models.ConfirmationRecord, error)
	GetConfirmation(ctx context.Context, assignmentID string) (*models.ConfirmationRecord, error)
}

// Service implements the delivery lifecycle.
type Service struct {
	repo    RepositoryInterface
	locator Locator // optional
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new delivery service. locator may be nil.
func NewService(repo RepositoryInterface, locator Locator, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		locator: locator,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) CreateAssignment(ctx context.Context, orderID, providerID string) (*models.DeliveryAssignment, string, error) {
	code, err := utils.GenerateConfirmationCode()
	if err != nil {
		return nil, "", fmt.Errorf("service.CreateAssignment: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("service.CreateAssignment.Hash: %w", err)
	}

	a := &models.DeliveryAssignment{
		ID:         uuid.New().String(),
		OrderID:    orderID,
		ProviderID: providerID,
		Status:     models.AssignmentAssigned,
		CodeHash:   string(hash),
		CreatedAt:  s.now(),
	}
	a.UpdatedAt = a.CreatedAt
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, "", fmt.Errorf("service.CreateAssignment: %w", err)
	}
	return a, code, nil
}

func (s *Service) GetAssignment(ctx context.Context, assignmentID string) (*models.DeliveryAssignment, error) {
	return s.repo.FindByID(ctx, assignmentID)
}

func (s *Service) ListProviderAssignments(ctx context.Context, providerID string, page, limit int) ([]*models.DeliveryAssignment, int, error) {
	return s.repo.ListByProvider(ctx, providerID, page, limit)
}

// Transition applies a provider-driven status change. DELIVERED is never
// a legal target here; it is only reachable through Confirm.
func (s *Service) Transition(ctx context.Context, providerID, assignmentID string, target models.AssignmentStatus) (*models.DeliveryAssignment, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", target, models.ErrValidation)
	}

	a, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.ProviderID != providerID {
		return nil, models.ErrNotFound
	}

	if !a.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("cannot move %s to %s: %w", a.Status, target, models.ErrInvalidTransition)
	}

	now := s.now()
	var startedAt *time.Time
	if target == models.AssignmentPickedUp && a.StartedAt == nil {
		startedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, assignmentID, a.Status, target, startedAt, now); err != nil {
		return nil, err
	}

	a.Status = target
	a.UpdatedAt = now
	if startedAt != nil {
		a.StartedAt = startedAt
	}

	observability.DeliveryTransitions.WithLabelValues(string(target)).Inc()
	s.logger.Info("delivery transition", "assignment_id", assignmentID, "status", target)
	return a, nil
}

// Confirm runs the confirmation protocol: only legal from ARRIVED, code
// verified against the hash issued at finalization, geolocation captured
// best-effort, and the ARRIVED to DELIVERED flip committed atomically.
func (s *Service) Confirm(ctx context.Context, providerID, assignmentID string, req models.ConfirmDeliveryRequest) (*models.ConfirmationRecord, error) {
	a, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.ProviderID != providerID {
		return nil, models.ErrNotFound
	}
	if a.Status != models.AssignmentArrived {
		return nil, fmt.Errorf("delivery can only be confirmed on arrival: %w", models.ErrInvalidState)
	}

	if !models.ConfirmationCodePattern.MatchString(req.Code) {
		return nil, fmt.Errorf("confirmation code must be 6 uppercase letters or digits: %w", models.ErrValidation)
	}
	if strings.TrimSpace(req.SignerName) == "" {
		return nil, fmt.Errorf("signer name must not be blank: %w", models.ErrValidation)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.CodeHash), []byte(req.Code)); err != nil {
		return nil, fmt.Errorf("confirmation code does not match: %w", models.ErrValidation)
	}

	geo := req.Geolocation
	if geo == nil && s.locator != nil {
		// Best effort only: a device without location capability must
		// not block proof of delivery.
		lctx, cancel := context.WithTimeout(ctx, locateTimeout)
		if loc, err := s.locator.Locate(lctx, assignmentID); err == nil {
			geo = loc
		}
		cancel()
	}

	now := s.now()
	rec := &models.ConfirmationRecord{
		AssignmentID: assignmentID,
		Code:         req.Code,
		SignerName:   strings.TrimSpace(req.SignerName),
		Notes:        strings.TrimSpace(req.Notes),
		Geolocation:  geo,
		CapturedAt:   now,
	}
	if err := s.repo.Confirm(ctx, rec, now); err != nil {
		return nil, err
	}

	observability.DeliveriesConfirmed.Inc()
	s.logger.Info("delivery confirmed", "assignment_id", assignmentID, "signer", rec.SignerName)
	return rec, nil
}

func (s *Service) GetConfirmation(ctx context.Context, assignmentID string) (*models.ConfirmationRecord, error) {
	return s.repo.FindConfirmation(ctx, assignmentID)
}
