// Package queue defines message payloads exchanged over the message
// broker, the publisher used by the services and the background
// consumer that records room changes.
package queue

// RoomUpdatedEvent is published after a room update commits. It
// carries enough information for downstream consumers to log, notify
// or invalidate derived data without querying the primary database.
type RoomUpdatedEvent struct {
	RoomID          uint64 `json:"room_id"`
	Name            string `json:"name"`
	MovieTitle      string `json:"movie_title"`
	Rows            uint32 `json:"rows"`
	Columns         uint32 `json:"columns"`
	CapacityChanged bool   `json:"capacity_changed"`
	UpdatedAt       string `json:"updated_at"`
}
