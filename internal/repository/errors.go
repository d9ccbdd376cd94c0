// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios without
// inspecting driver-specific errors. For example, ErrVersionConflict
// signals that a compare-and-set write lost a race against another
// writer, while ErrSeatTaken signals that the requested seat already
// has an active reservation.
package repository

import "errors"

// ErrRoomNotFound is returned when a room lookup matches no row.
var ErrRoomNotFound = errors.New("room not found")

// ErrVersionConflict is returned by versioned room writes when the
// stored version no longer matches the expected one, meaning another
// writer (a room update or a reservation insert) committed first.
var ErrVersionConflict = errors.New("room version conflict")

// ErrReservationNotFound is returned when a reservation lookup
// matches no row.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrSeatOutOfRange is returned when a reservation's seat coordinate
// falls outside the room's current grid.
var ErrSeatOutOfRange = errors.New("seat out of range")

// ErrSeatTaken is returned when the requested seat already has an
// active reservation.
var ErrSeatTaken = errors.New("seat already reserved")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned when registering an email that already
// has an account.
var ErrEmailTaken = errors.New("email already registered")
