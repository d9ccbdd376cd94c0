package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/cinema-room-manager/internal/model"
	"github.com/iliyamo/cinema-room-manager/internal/repository"
)

// memStore is the shared in-memory state behind the test fakes. Its
// two views, memRooms and memLedger, satisfy RoomStore and
// ReservationLedger and mirror the MySQL repositories' contract: room
// writes are guarded by the version stamp, and reservation inserts
// validate the seat under the same lock and bump the room version.
type memStore struct {
	mu           sync.Mutex
	nextRoomID   uint64
	nextResID    uint64
	rooms        map[uint64]*model.Room
	reservations map[uint64]*model.Reservation

	// beforeUpdate, when set, runs once at the start of the next
	// UpdateVersioned call (outside the lock). Tests use it to slip a
	// concurrent write between the guard check and the commit.
	beforeUpdate func()

	// failNextUpdate, when set, makes the next UpdateVersioned call
	// fail with this error before touching the stored room.
	failNextUpdate error
}

type memRooms struct{ *memStore }
type memLedger struct{ *memStore }

func newMemStore() (*memStore, memRooms, memLedger) {
	m := &memStore{
		rooms:        make(map[uint64]*model.Room),
		reservations: make(map[uint64]*model.Reservation),
	}
	return m, memRooms{m}, memLedger{m}
}

func copyRoom(r *model.Room) *model.Room { c := *r; return &c }

// addRoom seeds a room directly, bypassing the service layer.
func (m *memStore) addRoom(name, title, poster string, rows, cols uint32) *model.Room {
	room := &model.Room{Name: name, MovieTitle: title, MoviePoster: poster, Rows: rows, Columns: cols}
	_ = memRooms{m}.Create(context.Background(), room)
	return room
}

// addReservation seeds a reservation directly with the given status,
// without touching the room version.
func (m *memStore) addReservation(roomID, userID uint64, row, col uint32, status string) *model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextResID++
	res := &model.Reservation{
		ID: m.nextResID, RoomID: roomID, UserID: userID,
		SeatRow: row, SeatCol: col, Status: status,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	m.reservations[res.ID] = res
	return res
}

func (m memRooms) Create(_ context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRoomID++
	room.ID = m.nextRoomID
	room.Version = 0
	room.CreatedAt = time.Now().UTC()
	room.UpdatedAt = room.CreatedAt
	m.rooms[room.ID] = copyRoom(room)
	return nil
}

func (m memRooms) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return copyRoom(room), nil
}

func (m memRooms) List(_ context.Context) ([]*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Room, 0, len(m.rooms))
	for id := uint64(1); id <= m.nextRoomID; id++ {
		if room, ok := m.rooms[id]; ok {
			out = append(out, copyRoom(room))
		}
	}
	return out, nil
}

func (m memRooms) UpdateVersioned(_ context.Context, room *model.Room, expectedVersion uint64) error {
	if hook := m.beforeUpdate; hook != nil {
		m.beforeUpdate = nil
		hook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNextUpdate; err != nil {
		m.failNextUpdate = nil
		return err
	}
	cur, ok := m.rooms[room.ID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	if cur.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	cur.Name = room.Name
	cur.MovieTitle = room.MovieTitle
	cur.MoviePoster = room.MoviePoster
	cur.Rows = room.Rows
	cur.Columns = room.Columns
	cur.Version++
	cur.UpdatedAt = time.Now().UTC()
	*room = *cur
	return nil
}

func (m memLedger) HasActive(_ context.Context, roomID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, res := range m.reservations {
		if res.RoomID == roomID && res.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m memLedger) Create(_ context.Context, res *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[res.RoomID]
	if !ok {
		return repository.ErrRoomNotFound
	}
	if !room.SeatInBounds(res.SeatRow, res.SeatCol) {
		return repository.ErrSeatOutOfRange
	}
	for _, other := range m.reservations {
		if other.RoomID == res.RoomID && other.IsActive() &&
			other.SeatRow == res.SeatRow && other.SeatCol == res.SeatCol {
			return repository.ErrSeatTaken
		}
	}
	if res.Status == "" {
		res.Status = model.ReservationPending
	}
	m.nextResID++
	res.ID = m.nextResID
	res.CreatedAt = time.Now().UTC()
	res.UpdatedAt = res.CreatedAt
	stored := *res
	m.reservations[res.ID] = &stored
	room.Version++ // orders this insert against geometry CAS writes
	return nil
}

func (m memLedger) Cancel(_ context.Context, id, userID uint64, admin bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.reservations[id]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if !admin && res.UserID != userID {
		return repository.ErrForbidden
	}
	if res.IsActive() {
		res.Status = model.ReservationCancelled
		res.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m memLedger) ListByRoom(_ context.Context, roomID uint64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for id := uint64(1); id <= m.nextResID; id++ {
		if res, ok := m.reservations[id]; ok && res.RoomID == roomID {
			c := *res
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m memLedger) ListByUser(_ context.Context, userID uint64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for id := uint64(1); id <= m.nextResID; id++ {
		if res, ok := m.reservations[id]; ok && res.UserID == userID {
			c := *res
			out = append(out, &c)
		}
	}
	return out, nil
}
