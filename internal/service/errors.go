// Package service implements the business rules for room management
// and seat booking on top of the repository layer. The services hold
// no global state; every dependency is passed in at construction so
// they can be exercised against in-memory stores in tests.
package service

import "errors"

// Sentinel errors surfaced by the services. Handlers translate these
// into HTTP status codes; nothing below the handler layer retries.
var (
	// ErrUnauthorized means the principal is missing or lacks the role
	// required for the operation. No mutation has happened.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the referenced room, reservation or user does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means the request payload is malformed:
	// empty required fields, a lone rows/columns value, or
	// non-positive geometry.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCapacityLocked means a geometry change was rejected because
	// the room has active reservations. This is an expected outcome,
	// not a failure: the whole update is dropped and nothing is saved.
	// It is deliberately distinct from ErrInvalidArgument so clients
	// can render a specific explanation.
	ErrCapacityLocked = errors.New("capacity locked by active reservations")

	// ErrSeatTaken means the requested seat already has an active
	// reservation.
	ErrSeatTaken = errors.New("seat already reserved")

	// ErrStorage means the underlying store failed; the affected
	// record is left in its pre-operation state.
	ErrStorage = errors.New("storage failure")
)
