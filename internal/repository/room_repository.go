package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-room-manager/internal/model"
)

// RoomRepo provides persistence for cinema rooms. Rooms carry a
// version column used for optimistic concurrency: every committed
// write to a room (including reservation inserts, see
// ReservationRepo.Create) increments it, so a stale writer can be
// detected by comparing versions instead of holding a lock across
// requests.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, name, movie_title, movie_poster, seat_rows, seat_cols, version, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }, r *model.Room) error {
	return row.Scan(&r.ID, &r.Name, &r.MovieTitle, &r.MoviePoster, &r.Rows, &r.Columns, &r.Version, &r.CreatedAt, &r.UpdatedAt)
}

// Create inserts a new room. Name, MovieTitle, Rows and Columns must
// be set. After the insert the record is read back so that the ID,
// version and timestamp fields are populated.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	const qInsert = `INSERT INTO rooms (name, movie_title, movie_poster, seat_rows, seat_cols)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, room.Name, room.MovieTitle, room.MoviePoster, room.Rows, room.Columns)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)

	const qSelect = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, qSelect, room.ID), room)
}

// GetByID retrieves a room by its ID. It returns ErrRoomNotFound when
// no row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	var room model.Room
	if err := scanRoom(r.db.QueryRowContext(ctx, q, id), &room); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

// List returns all rooms ordered by ID.
func (r *RoomRepo) List(ctx context.Context) ([]*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		room := new(model.Room)
		if err := scanRoom(rows, room); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateVersioned writes name, movie binding and geometry in a single
// statement guarded by a compare-and-set on the version column. When
// zero rows are affected the room either vanished or was modified by
// a concurrent writer; the two cases are told apart with a follow-up
// existence check so callers get ErrRoomNotFound or ErrVersionConflict.
// On success the stored record is read back into room, including the
// bumped version and fresh updated_at.
func (r *RoomRepo) UpdateVersioned(ctx context.Context, room *model.Room, expectedVersion uint64) error {
	const q = `UPDATE rooms
	           SET name = ?, movie_title = ?, movie_poster = ?, seat_rows = ?, seat_cols = ?,
	               version = version + 1, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q,
		room.Name, room.MovieTitle, room.MoviePoster, room.Rows, room.Columns,
		room.ID, expectedVersion,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, room.ID); err != nil {
			return err // ErrRoomNotFound or a driver error
		}
		return ErrVersionConflict
	}

	const qSelect = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, qSelect, room.ID), room)
}
