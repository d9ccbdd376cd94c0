package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-room-manager/internal/repository"
)

// DecisionReason explains a capacity-edit decision.
type DecisionReason string

const (
	// ReasonNoActiveReservations – the room holds no active
	// reservations, so its geometry may change freely.
	ReasonNoActiveReservations DecisionReason = "NO_ACTIVE_RESERVATIONS"
	// ReasonHasActiveReservations – at least one reservation still
	// holds a seat, so shrinking or growing the grid could strand a
	// sold coordinate.
	ReasonHasActiveReservations DecisionReason = "HAS_ACTIVE_RESERVATIONS"
)

// Decision is the outcome of a capacity-edit check. It is derived,
// never persisted, and computed fresh on every call: a booking made
// between two checks must be able to flip it.
type Decision struct {
	Allowed bool           `json:"allowed"`
	Reason  DecisionReason `json:"reason"`
}

// CapacityGuard decides whether a room's seating geometry may be
// changed. The same guard serves two callers with different weight:
// the GET handler uses it for the advisory flag shown to operators,
// and RoomService re-runs it authoritatively before committing a
// geometry change.
type CapacityGuard struct {
	rooms  RoomStore
	ledger ReservationLedger
}

// NewCapacityGuard constructs a guard over the given stores.
func NewCapacityGuard(rooms RoomStore, ledger ReservationLedger) *CapacityGuard {
	if rooms == nil || ledger == nil {
		panic("nil store passed to NewCapacityGuard")
	}
	return &CapacityGuard{rooms: rooms, ledger: ledger}
}

// CanEditCapacity returns the decision for the given room. A room
// with no reservations at all trivially allows edits. The room must
// exist; ErrNotFound is returned otherwise. The guard has no side
// effects and is safe for concurrent use.
func (g *CapacityGuard) CanEditCapacity(ctx context.Context, roomID uint64) (Decision, error) {
	if _, err := g.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return Decision{}, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		}
		return Decision{}, fmt.Errorf("%w: load room: %v", ErrStorage, err)
	}
	active, err := g.ledger.HasActive(ctx, roomID)
	if err != nil {
		return Decision{}, fmt.Errorf("%w: query reservations: %v", ErrStorage, err)
	}
	if active {
		return Decision{Allowed: false, Reason: ReasonHasActiveReservations}, nil
	}
	return Decision{Allowed: true, Reason: ReasonNoActiveReservations}, nil
}
