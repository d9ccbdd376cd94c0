package model

import "time"

// Reservation status values. A reservation moves from PENDING to
// CONFIRMED when paid, and leaves the active set when it is cancelled
// by the customer or expires after its showing.
const (
	ReservationPending   = "PENDING"
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
	ReservationExpired   = "EXPIRED"
)

// ActiveStatuses lists the reservation states that still hold a seat.
// A room's geometry may not change while any reservation for it is in
// one of these states. This is the single definition of "active";
// ledger queries and in-memory checks are both derived from it.
var ActiveStatuses = []string{ReservationPending, ReservationConfirmed}

// IsActiveStatus reports whether the given status still holds a seat.
func IsActiveStatus(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Reservation records one seat held by a user in a room. The seat is
// addressed by its 1-based (row, column) coordinate; at creation time
// the coordinate must lie inside the room's grid.
//
// Fields:
//  ID        – primary key identifier.
//  RoomID    – room the seat belongs to (non-owning reference).
//  UserID    – user who made the reservation.
//  SeatRow   – 1-based row coordinate of the seat.
//  SeatCol   – 1-based column coordinate of the seat.
//  Status    – one of the status constants above.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	RoomID    uint64    `json:"room_id"`    // reservations.room_id
	UserID    uint64    `json:"user_id"`    // reservations.user_id
	SeatRow   uint32    `json:"seat_row"`   // reservations.seat_row
	SeatCol   uint32    `json:"seat_col"`   // reservations.seat_col
	Status    string    `json:"status"`     // reservations.status
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
	UpdatedAt time.Time `json:"updated_at"` // reservations.updated_at
}

// IsActive reports whether this reservation still holds its seat.
func (r *Reservation) IsActive() bool { return IsActiveStatus(r.Status) }
