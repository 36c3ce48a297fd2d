// Package models defines the entities, status enums and request payloads
// shared across the service modules.
package models

import (
	"regexp"
	"time"
)

// AssignmentStatus is the delivery lifecycle state of an assignment.
type AssignmentStatus string

const (
	AssignmentAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentPickedUp  AssignmentStatus = "PICKED_UP"
	AssignmentInTransit AssignmentStatus = "IN_TRANSIT"
	AssignmentArrived   AssignmentStatus = "ARRIVED"
	AssignmentDelivered AssignmentStatus = "DELIVERED"
	AssignmentCancelled AssignmentStatus = "CANCELLED"
)

var allowedAssignmentStatuses = [...]AssignmentStatus{
	AssignmentAssigned, AssignmentPickedUp, AssignmentInTransit,
	AssignmentArrived, AssignmentDelivered, AssignmentCancelled,
}

// Valid checks the status against the known set.
func (s AssignmentStatus) Valid() bool {
	for _, v := range allowedAssignmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// assignmentTransitions is the full transition table. ARRIVED has no
// direct successors here: DELIVERED is only reachable through the
// confirmation protocol, and a provider on-site may no longer cancel.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentAssigned:  {AssignmentPickedUp, AssignmentCancelled},
	AssignmentPickedUp:  {AssignmentInTransit, AssignmentCancelled},
	AssignmentInTransit: {AssignmentArrived, AssignmentCancelled},
	AssignmentArrived:   {},
	AssignmentDelivered: {},
	AssignmentCancelled: {},
}

// CanTransitionTo reports whether target is a legal next status for a
// provider-driven transition.
func (s AssignmentStatus) CanTransitionTo(target AssignmentStatus) bool {
	for _, v := range assignmentTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the status ends the lifecycle.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentDelivered || s == AssignmentCancelled
}

// DeliveryAssignment is the provider-facing delivery task created once
// an order is finalized. CodeHash is the bcrypt hash of the confirmation
// code issued to the shop owner; the plain code is never persisted.
type DeliveryAssignment struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"order_id"`
	ProviderID  string           `json:"provider_id"`
	Status      AssignmentStatus `json:"status"`
	CodeHash    string           `json:"-"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Geolocation is a best-effort capture point. Absence is stored as null,
// never treated as a failure.
type Geolocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ConfirmationCodePattern is the shape of a delivery confirmation code.
var ConfirmationCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ConfirmationRecord is the immutable proof-of-delivery artifact created
// at the ARRIVED to DELIVERED transition.
type ConfirmationRecord struct {
	AssignmentID string       `json:"assignment_id"`
	Code         string       `json:"code"`
	SignerName   string       `json:"signer_name"`
	Notes        string       `json:"notes,omitempty"`
	Geolocation  *Geolocation `json:"geolocation,omitempty"`
	CapturedAt   time.Time    `json:"captured_at"`
}

// TransitionRequest is the payload for a provider-driven status change.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// ConfirmDeliveryRequest is the payload for the confirmation protocol.
type ConfirmDeliveryRequest struct {
	Code        string       `json:"code" validate:"required"`
	SignerName  string       `json:"signer_name" validate:"required"`
	Notes       string       `json:"notes,omitempty"`
	Geolocation *Geolocation `json:"geolocation,omitempty"`
}
