package models

import "errors"

var (
	// ErrValidation is returned when the input fails domain validation,
	// e.g. an empty provider list, a negative delivery fee, a payment
	// method outside the allowed set, or a malformed confirmation code.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned on state conflicts: a session that already
	// has an open quote request, or the losing side of a concurrent
	// acceptance or confirmation.
	ErrConflict = errors.New("conflict")

	// ErrQuoteExpired is returned when an acceptance is attempted past the
	// quote's valid_until. Callers should re-fetch selectable quotes.
	ErrQuoteExpired = errors.New("the quote has expired, please request new quotes")

	// ErrInvalidState is returned when an operation requires the entity to
	// be in a specific lifecycle state, e.g. confirming a delivery whose
	// assignment has not yet arrived.
	ErrInvalidState = errors.New("operation not allowed in the current state")

	// ErrInvalidTransition is returned when a delivery status change is not
	// in the transition table.
	ErrInvalidTransition = errors.New("illegal delivery status transition")
)
