package service

import (
	"context"

	"github.com/iliyamo/cinema-room-manager/internal/model"
)

// RoomStore is the slice of room persistence the services need. The
// MySQL implementation lives in the repository package; tests use an
// in-memory fake.
type RoomStore interface {
	// Create inserts a room and populates its generated fields.
	Create(ctx context.Context, room *model.Room) error
	// GetByID returns repository.ErrRoomNotFound when absent.
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	// List returns all rooms ordered by ID.
	List(ctx context.Context) ([]*model.Room, error)
	// UpdateVersioned commits all mutable room fields in one write,
	// guarded by a compare-and-set on the version stamp. It returns
	// repository.ErrVersionConflict when another writer got there
	// first and repository.ErrRoomNotFound when the room vanished.
	UpdateVersioned(ctx context.Context, room *model.Room, expectedVersion uint64) error
}

// ReservationLedger is the slice of reservation persistence the
// services need. Reads must reflect the most recent committed state;
// implementations must not cache.
type ReservationLedger interface {
	// HasActive reports whether the room has at least one reservation
	// in the active status set.
	HasActive(ctx context.Context, roomID uint64) (bool, error)
	// Create inserts a reservation after validating the seat against
	// the room's current geometry under a room-level lock. It returns
	// repository.ErrRoomNotFound, repository.ErrSeatOutOfRange or
	// repository.ErrSeatTaken on the corresponding rejections, and
	// must bump the room's version stamp on success.
	Create(ctx context.Context, res *model.Reservation) error
	// Cancel moves a reservation out of the active set. Unless admin
	// is set the reservation must belong to userID.
	Cancel(ctx context.Context, id, userID uint64, admin bool) error
	// ListByRoom returns all reservations for a room.
	ListByRoom(ctx context.Context, roomID uint64) ([]*model.Reservation, error)
	// ListByUser returns all reservations made by a user.
	ListByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error)
}

// Principal identifies the authenticated caller of a service
// operation, as extracted from the access token by the middleware.
type Principal struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the principal may manage rooms.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }
