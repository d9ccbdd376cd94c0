package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/cinema-room-manager/internal/model"
	"github.com/iliyamo/cinema-room-manager/internal/queue"
	"github.com/iliyamo/cinema-room-manager/internal/repository"
)

// maxUpdateRetries bounds how often UpdateRoom re-runs its
// load→guard→commit sequence after losing a version race to a
// concurrent booking or room edit.
const maxUpdateRetries = 3

// PublishFunc delivers a room-updated event to the broker. It is a
// function value rather than a broker handle so tests and offline
// deployments can pass nil.
type PublishFunc func(ctx context.Context, event queue.RoomUpdatedEvent) error

// RoomService orchestrates room reads and edits. Movie-binding fields
// (name, title, poster) are always editable; geometry fields pass
// through the capacity guard first, and a single request is applied
// all-or-nothing: a rejected geometry change drops the movie fields
// of the same request too.
type RoomService struct {
	rooms   RoomStore
	ledger  ReservationLedger
	guard   *CapacityGuard
	publish PublishFunc
}

// NewRoomService constructs a RoomService. publish may be nil, in
// which case committed updates are simply not announced.
func NewRoomService(rooms RoomStore, ledger ReservationLedger, publish PublishFunc) *RoomService {
	if rooms == nil || ledger == nil {
		panic("nil store passed to NewRoomService")
	}
	return &RoomService{
		rooms:   rooms,
		ledger:  ledger,
		guard:   NewCapacityGuard(rooms, ledger),
		publish: publish,
	}
}

// Guard exposes the capacity guard for callers that only need the
// advisory decision.
func (s *RoomService) Guard() *CapacityGuard { return s.guard }

// CreateRoomRequest carries the fields for a new room. All of them
// are required; geometry must be positive.
type CreateRoomRequest struct {
	Name        string
	MovieTitle  string
	MoviePoster string
	Rows        uint32
	Columns     uint32
}

// CreateRoom adds a room. Only admins may create rooms.
func (s *RoomService) CreateRoom(ctx context.Context, p Principal, req CreateRoomRequest) (*model.Room, error) {
	if !p.IsAdmin() {
		return nil, ErrUnauthorized
	}
	name := strings.TrimSpace(req.Name)
	title := strings.TrimSpace(req.MovieTitle)
	if name == "" || title == "" {
		return nil, fmt.Errorf("%w: name and movie_title are required", ErrInvalidArgument)
	}
	if req.Rows < 1 || req.Columns < 1 {
		return nil, fmt.Errorf("%w: rows and columns must be at least 1", ErrInvalidArgument)
	}
	room := &model.Room{
		Name:        name,
		MovieTitle:  title,
		MoviePoster: strings.TrimSpace(req.MoviePoster),
		Rows:        req.Rows,
		Columns:     req.Columns,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("%w: create room: %v", ErrStorage, err)
	}
	return room, nil
}

// GetRoom loads a room together with the advisory capacity decision.
// The decision is computed fresh on every call; it is a hint for the
// client and never a substitute for the authoritative check performed
// by UpdateRoom.
func (s *RoomService) GetRoom(ctx context.Context, id uint64) (*model.Room, Decision, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, Decision{}, fmt.Errorf("%w: room %d", ErrNotFound, id)
		}
		return nil, Decision{}, fmt.Errorf("%w: load room: %v", ErrStorage, err)
	}
	dec, err := s.guard.CanEditCapacity(ctx, id)
	if err != nil {
		return nil, Decision{}, err
	}
	return room, dec, nil
}

// ListRooms returns all rooms.
func (s *RoomService) ListRooms(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list rooms: %v", ErrStorage, err)
	}
	return rooms, nil
}

// UpdateRoomRequest carries a combined movie+capacity edit. Nil
// pointers mean "leave unchanged". Rows and Columns must be provided
// together or not at all.
type UpdateRoomRequest struct {
	Name        *string
	MovieTitle  *string
	MoviePoster *string
	Rows        *uint32
	Columns     *uint32
}

// UpdateRoom applies an edit to a room. The steps are ordered and
// each is a hard precondition for the next:
//
//  1. the principal must be an admin;
//  2. the room must exist;
//  3. name and movie_title, when provided, must be non-empty after
//     trimming; an empty or omitted poster keeps the stored value;
//  4. rows/columns must come as a pair of positive integers, and a
//     geometry change must pass the capacity guard — a locked room
//     rejects the entire request, movie fields included;
//  5. the staged fields are committed in one versioned write.
//
// The version compare-and-set serializes the guard check against
// concurrent bookings for the same room: a reservation insert bumps
// the room version, so a stale update loses the write and the whole
// sequence re-runs against the new state. Concurrent edits to
// different rooms never contend. An update that changes nothing
// commits nothing and returns the stored room as is.
func (s *RoomService) UpdateRoom(ctx context.Context, p Principal, id uint64, req UpdateRoomRequest) (*model.Room, error) {
	if !p.IsAdmin() {
		return nil, ErrUnauthorized
	}

	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		room, err := s.rooms.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrRoomNotFound) {
				return nil, fmt.Errorf("%w: room %d", ErrNotFound, id)
			}
			return nil, fmt.Errorf("%w: load room: %v", ErrStorage, err)
		}

		staged := *room
		if req.Name != nil {
			v := strings.TrimSpace(*req.Name)
			if v == "" {
				return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
			}
			staged.Name = v
		}
		if req.MovieTitle != nil {
			v := strings.TrimSpace(*req.MovieTitle)
			if v == "" {
				return nil, fmt.Errorf("%w: movie_title must not be empty", ErrInvalidArgument)
			}
			staged.MovieTitle = v
		}
		// An omitted or empty poster keeps the stored one; it is never
		// overwritten with an empty value.
		if req.MoviePoster != nil {
			if v := strings.TrimSpace(*req.MoviePoster); v != "" {
				staged.MoviePoster = v
			}
		}

		if req.Rows != nil || req.Columns != nil {
			if req.Rows == nil || req.Columns == nil {
				return nil, fmt.Errorf("%w: rows and columns must be provided together", ErrInvalidArgument)
			}
			if *req.Rows < 1 || *req.Columns < 1 {
				return nil, fmt.Errorf("%w: rows and columns must be at least 1", ErrInvalidArgument)
			}
			if *req.Rows != room.Rows || *req.Columns != room.Columns {
				// Authoritative guard check. The advisory flag the client
				// saw at load time carries no weight here.
				dec, err := s.guard.CanEditCapacity(ctx, id)
				if err != nil {
					return nil, err
				}
				if !dec.Allowed {
					return nil, ErrCapacityLocked
				}
				staged.Rows = *req.Rows
				staged.Columns = *req.Columns
			}
		}

		if staged.Name == room.Name && staged.MovieTitle == room.MovieTitle &&
			staged.MoviePoster == room.MoviePoster &&
			staged.Rows == room.Rows && staged.Columns == room.Columns {
			return room, nil // nothing changed, nothing written
		}

		capacityChanged := staged.Rows != room.Rows || staged.Columns != room.Columns
		if err := s.rooms.UpdateVersioned(ctx, &staged, room.Version); err != nil {
			if errors.Is(err, repository.ErrVersionConflict) {
				lastErr = err
				continue // a booking or another edit won the race; re-run the guard
			}
			if errors.Is(err, repository.ErrRoomNotFound) {
				return nil, fmt.Errorf("%w: room %d", ErrNotFound, id)
			}
			return nil, fmt.Errorf("%w: commit room: %v", ErrStorage, err)
		}

		s.announce(ctx, &staged, capacityChanged)
		return &staged, nil
	}
	return nil, fmt.Errorf("%w: room %d kept changing: %v", ErrStorage, id, lastErr)
}

// announce publishes the room-updated event. Publishing is best
// effort: the update has already committed, so a broker failure is
// logged and swallowed.
func (s *RoomService) announce(ctx context.Context, room *model.Room, capacityChanged bool) {
	if s.publish == nil {
		return
	}
	ev := queue.RoomUpdatedEvent{
		RoomID:          room.ID,
		Name:            room.Name,
		MovieTitle:      room.MovieTitle,
		Rows:            room.Rows,
		Columns:         room.Columns,
		CapacityChanged: capacityChanged,
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publish(ctx, ev); err != nil {
		log.Printf("room-service: publish room.updated failed: %v", err)
	}
}
