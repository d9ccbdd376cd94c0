package model

import "time"

// Room represents a single cinema room showing one movie at a time.
// The seating layout is a fixed grid of Rows × Columns; reservations
// reference seats by their (row, column) coordinate inside that grid,
// which is why the geometry may only change while no reservation is
// still holding a seat.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display label of the room, non-empty.
//  MovieTitle  – title of the movie currently shown in the room.
//  MoviePoster – poster URL for the current movie; stored as given.
//  Rows        – number of seating rows, at least 1.
//  Columns     – number of seats per row, at least 1.
//  Version     – optimistic concurrency stamp, bumped on every write
//                that affects the room (including reservation inserts).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Room struct {
	ID          uint64    `json:"id"`           // rooms.id
	Name        string    `json:"name"`         // rooms.name
	MovieTitle  string    `json:"movie_title"`  // rooms.movie_title
	MoviePoster string    `json:"movie_poster"` // rooms.movie_poster
	Rows        uint32    `json:"rows"`         // rooms.seat_rows
	Columns     uint32    `json:"columns"`      // rooms.seat_cols
	Version     uint64    `json:"-"`            // rooms.version
	CreatedAt   time.Time `json:"created_at"`   // rooms.created_at
	UpdatedAt   time.Time `json:"updated_at"`   // rooms.updated_at
}

// Capacity returns the total number of seats in the room.
func (r *Room) Capacity() uint32 { return r.Rows * r.Columns }

// SeatInBounds reports whether a seat coordinate falls inside the
// room's current grid. Coordinates are 1-based.
func (r *Room) SeatInBounds(row, col uint32) bool {
	return row >= 1 && row <= r.Rows && col >= 1 && col <= r.Columns
}
