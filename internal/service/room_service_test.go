package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/cinema-room-manager/internal/model"
)

var (
	adminPrincipal    = Principal{UserID: 1, Role: model.RoleAdmin}
	customerPrincipal = Principal{UserID: 2, Role: model.RoleCustomer}
)

func strptr(s string) *string { return &s }
func u32ptr(n uint32) *uint32 { return &n }

func newRoomService(t *testing.T) (*memStore, *RoomService) {
	t.Helper()
	store, rooms, ledger := newMemStore()
	return store, NewRoomService(rooms, ledger, nil)
}

func TestUpdateRoom_GrowGeometryWithNoReservations(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 1", "Dune", "http://posters/dune.jpg", 5, 5)
	ctx := context.Background()

	updated, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{
		Rows: u32ptr(8), Columns: u32ptr(8),
	})
	if err != nil {
		t.Fatalf("UpdateRoom returned error: %v", err)
	}
	if updated.Rows != 8 || updated.Columns != 8 {
		t.Fatalf("expected 8x8 grid, got %dx%d", updated.Rows, updated.Columns)
	}
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.Rows != 8 || stored.Columns != 8 {
		t.Fatalf("stored room not updated: %dx%d", stored.Rows, stored.Columns)
	}
	if stored.Capacity() != 64 {
		t.Fatalf("expected capacity 64, got %d", stored.Capacity())
	}
}

func TestUpdateRoom_CapacityLockedRejectsWholeUpdate(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 2", "Old Movie", "http://posters/old.jpg", 5, 5)
	store.addReservation(room.ID, 9, 3, 3, model.ReservationConfirmed)
	ctx := context.Background()

	_, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{
		MovieTitle: strptr("New"),
		Rows:       u32ptr(10),
		Columns:    u32ptr(10),
	})
	if !errors.Is(err, ErrCapacityLocked) {
		t.Fatalf("expected ErrCapacityLocked, got %v", err)
	}

	// All-or-nothing: the movie title from the same request must not
	// have been applied either.
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.MovieTitle != "Old Movie" {
		t.Fatalf("metadata leaked through a rejected update: movie_title=%q", stored.MovieTitle)
	}
	if stored.Rows != 5 || stored.Columns != 5 {
		t.Fatalf("geometry changed despite lock: %dx%d", stored.Rows, stored.Columns)
	}
}

func TestUpdateRoom_MovieFieldsPassWithoutGuard(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 3", "Old Movie", "http://posters/old.jpg", 5, 5)
	store.addReservation(room.ID, 9, 1, 1, model.ReservationConfirmed)

	// A locked room still accepts pure movie-binding edits; those
	// never invalidate sold seat coordinates.
	updated, err := svc.UpdateRoom(context.Background(), adminPrincipal, room.ID, UpdateRoomRequest{
		Name:       strptr("Sala 3 IMAX"),
		MovieTitle: strptr("New Movie"),
	})
	if err != nil {
		t.Fatalf("UpdateRoom returned error: %v", err)
	}
	if updated.Name != "Sala 3 IMAX" || updated.MovieTitle != "New Movie" {
		t.Fatalf("movie fields not applied: %+v", updated)
	}
	if updated.Rows != 5 || updated.Columns != 5 {
		t.Fatalf("geometry must be untouched, got %dx%d", updated.Rows, updated.Columns)
	}
}

func TestUpdateRoom_SameGeometryDoesNotConsultGuard(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 3b", "Old Movie", "", 5, 5)
	store.addReservation(room.ID, 9, 1, 1, model.ReservationConfirmed)

	// Sending the current geometry back is not a geometry change, so
	// the guard must not reject the edit.
	updated, err := svc.UpdateRoom(context.Background(), adminPrincipal, room.ID, UpdateRoomRequest{
		MovieTitle: strptr("New Movie"),
		Rows:       u32ptr(5),
		Columns:    u32ptr(5),
	})
	if err != nil {
		t.Fatalf("UpdateRoom returned error: %v", err)
	}
	if updated.MovieTitle != "New Movie" {
		t.Fatalf("movie title not applied: %q", updated.MovieTitle)
	}
}

func TestUpdateRoom_InvalidGeometry(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 4", "Dune", "", 5, 5)
	ctx := context.Background()

	cases := []UpdateRoomRequest{
		{Rows: u32ptr(0), Columns: u32ptr(4)},  // zero rows
		{Rows: u32ptr(4), Columns: u32ptr(0)},  // zero columns
		{Rows: u32ptr(4)},                      // lone rows
		{Columns: u32ptr(4)},                   // lone columns
	}
	for i, req := range cases {
		if _, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.Rows != 5 || stored.Columns != 5 {
		t.Fatalf("room mutated by rejected request: %dx%d", stored.Rows, stored.Columns)
	}
}

func TestUpdateRoom_EmptyRequiredFields(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 5", "Dune", "", 5, 5)
	ctx := context.Background()

	if _, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{Name: strptr("   ")}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for blank name, got %v", err)
	}
	if _, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{MovieTitle: strptr("")}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for empty movie_title, got %v", err)
	}
}

func TestUpdateRoom_PosterRetainedWhenOmittedOrEmpty(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 6", "Dune", "http://posters/dune.jpg", 5, 5)
	ctx := context.Background()

	if _, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{Name: strptr("Sala 6 renamed")}); err != nil {
		t.Fatalf("UpdateRoom returned error: %v", err)
	}
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.MoviePoster != "http://posters/dune.jpg" {
		t.Fatalf("omitted poster overwrote stored value: %q", stored.MoviePoster)
	}

	if _, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{MoviePoster: strptr("")}); err != nil {
		t.Fatalf("UpdateRoom returned error: %v", err)
	}
	stored, _ = (memRooms{store}).GetByID(ctx, room.ID)
	if stored.MoviePoster != "http://posters/dune.jpg" {
		t.Fatalf("empty poster overwrote stored value: %q", stored.MoviePoster)
	}
}

func TestUpdateRoom_NoOpCommitsNothing(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 7", "Dune", "http://posters/dune.jpg", 5, 5)
	ctx := context.Background()
	before, _ := (memRooms{store}).GetByID(ctx, room.ID)

	got, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{
		Name:        strptr("Sala 7"),
		MovieTitle:  strptr("Dune"),
		MoviePoster: strptr("http://posters/dune.jpg"),
		Rows:        u32ptr(5),
		Columns:     u32ptr(5),
	})
	if err != nil {
		t.Fatalf("UpdateRoom returned error: %v", err)
	}
	after, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if *after != *before {
		t.Fatalf("no-op update changed the stored room:\nbefore %+v\nafter  %+v", *before, *after)
	}
	if got.Version != before.Version {
		t.Fatalf("no-op update bumped the version: %d -> %d", before.Version, got.Version)
	}
}

func TestUpdateRoom_AuthorizationAndExistence(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 8", "Dune", "", 5, 5)
	ctx := context.Background()

	if _, err := svc.UpdateRoom(ctx, customerPrincipal, room.ID, UpdateRoomRequest{Name: strptr("X")}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for customer, got %v", err)
	}
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.Name != "Sala 8" {
		t.Fatalf("unauthorized request mutated the room: %q", stored.Name)
	}

	if _, err := svc.UpdateRoom(ctx, adminPrincipal, 999, UpdateRoomRequest{Name: strptr("X")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown room, got %v", err)
	}
}

func TestUpdateRoom_RetriesAfterBookingWinsTheRace(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 9", "Dune", "", 5, 5)
	ctx := context.Background()

	// Between the guard check and the commit, a booking slips in and
	// bumps the room version. The CAS must fail, and the re-run must
	// observe the new reservation and reject with CapacityLocked.
	store.beforeUpdate = func() {
		res := &model.Reservation{RoomID: room.ID, UserID: 9, SeatRow: 2, SeatCol: 2}
		if err := (memLedger{store}).Create(ctx, res); err != nil {
			t.Errorf("racing booking failed: %v", err)
		}
	}

	_, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{
		Rows: u32ptr(2), Columns: u32ptr(2),
	})
	if !errors.Is(err, ErrCapacityLocked) {
		t.Fatalf("expected ErrCapacityLocked after losing the race, got %v", err)
	}
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.Rows != 5 || stored.Columns != 5 {
		t.Fatalf("geometry changed under an active reservation: %dx%d", stored.Rows, stored.Columns)
	}
}

func TestUpdateRoom_FailedCommitLeavesRoomUnchanged(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 11", "Dune", "http://posters/dune.jpg", 5, 5)
	ctx := context.Background()
	store.failNextUpdate = errors.New("connection reset")

	_, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{
		MovieTitle: strptr("New"), Rows: u32ptr(8), Columns: u32ptr(8),
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage on failed commit, got %v", err)
	}
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.MovieTitle != "Dune" || stored.Rows != 5 || stored.Columns != 5 {
		t.Fatalf("failed commit mutated the room: %+v", stored)
	}
	if stored.Version != room.Version {
		t.Fatalf("failed commit bumped the version: %d -> %d", room.Version, stored.Version)
	}
}

func TestUpdateRoom_RetryExhaustionSurfacesStorageError(t *testing.T) {
	store, svc := newRoomService(t)
	room := store.addRoom("Sala 12", "Dune", "", 5, 5)
	ctx := context.Background()

	// Bump the room version before every commit attempt so each CAS
	// loses. Once the retries run out the update must give up with a
	// storage error and leave the room's fields untouched.
	var steal func()
	steal = func() {
		store.mu.Lock()
		store.rooms[room.ID].Version++
		store.mu.Unlock()
		store.beforeUpdate = steal
	}
	store.beforeUpdate = steal

	_, err := svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{
		Rows: u32ptr(8), Columns: u32ptr(8),
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage after exhausting retries, got %v", err)
	}
	stored, _ := (memRooms{store}).GetByID(ctx, room.ID)
	if stored.Rows != 5 || stored.Columns != 5 {
		t.Fatalf("exhausted update mutated the geometry: %dx%d", stored.Rows, stored.Columns)
	}
}

func TestUpdateRoom_ConcurrentBookingNeverStrandsASeat(t *testing.T) {
	// A geometry shrink racing a booking must resolve to one of two
	// outcomes: the shrink wins and the booking is validated against
	// the new grid, or the booking wins and the shrink is rejected.
	// A booked seat outside the final grid is an invariant violation.
	for i := 0; i < 50; i++ {
		store, rooms, ledger := newMemStore()
		svc := NewRoomService(rooms, ledger, nil)
		booking := NewBookingService(ledger)
		room := store.addRoom("Sala 10", "Dune", "", 5, 5)
		ctx := context.Background()

		var wg sync.WaitGroup
		var updateErr, reserveErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, updateErr = svc.UpdateRoom(ctx, adminPrincipal, room.ID, UpdateRoomRequest{
				Rows: u32ptr(2), Columns: u32ptr(2),
			})
		}()
		go func() {
			defer wg.Done()
			_, reserveErr = booking.Reserve(ctx, customerPrincipal, room.ID, 4, 4)
		}()
		wg.Wait()

		if updateErr != nil && !errors.Is(updateErr, ErrCapacityLocked) {
			t.Fatalf("iteration %d: unexpected update error: %v", i, updateErr)
		}
		if reserveErr != nil && !errors.Is(reserveErr, ErrInvalidArgument) {
			t.Fatalf("iteration %d: unexpected reserve error: %v", i, reserveErr)
		}

		final, _ := (memRooms{store}).GetByID(ctx, room.ID)
		active, _ := (memLedger{store}).ListByRoom(ctx, room.ID)
		for _, res := range active {
			if res.IsActive() && !final.SeatInBounds(res.SeatRow, res.SeatCol) {
				t.Fatalf("iteration %d: reservation (%d,%d) stranded outside final %dx%d grid",
					i, res.SeatRow, res.SeatCol, final.Rows, final.Columns)
			}
		}
	}
}

func TestCreateRoom_Validation(t *testing.T) {
	_, svc := newRoomService(t)
	ctx := context.Background()

	if _, err := svc.CreateRoom(ctx, customerPrincipal, CreateRoomRequest{Name: "A", MovieTitle: "B", Rows: 1, Columns: 1}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.CreateRoom(ctx, adminPrincipal, CreateRoomRequest{Name: " ", MovieTitle: "B", Rows: 1, Columns: 1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for blank name, got %v", err)
	}
	if _, err := svc.CreateRoom(ctx, adminPrincipal, CreateRoomRequest{Name: "A", MovieTitle: "B", Rows: 0, Columns: 3}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero rows, got %v", err)
	}

	room, err := svc.CreateRoom(ctx, adminPrincipal, CreateRoomRequest{Name: "A", MovieTitle: "B", Rows: 3, Columns: 4})
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	if room.ID == 0 || room.Capacity() != 12 {
		t.Fatalf("unexpected created room: %+v", room)
	}
}
