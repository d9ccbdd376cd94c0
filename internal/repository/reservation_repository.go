package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-room-manager/internal/model"
)

// ReservationRepo provides persistence for seat reservations and is
// the ledger the capacity guard reads. Reservations reference a seat
// by (row, column) coordinate inside the room's grid, so inserting
// one must be serialized against geometry changes: Create locks the
// room row for the duration of its transaction and bumps the room
// version, which makes any in-flight versioned room update lose its
// compare-and-set and re-run the guard.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// activeInClause renders the SQL IN list for the active status set.
// The set itself is defined once in the model package.
func activeInClause() (string, []any) {
	ph := make([]string, len(model.ActiveStatuses))
	args := make([]any, len(model.ActiveStatuses))
	for i, s := range model.ActiveStatuses {
		ph[i] = "?"
		args[i] = s
	}
	return "(" + strings.Join(ph, ", ") + ")", args
}

const reservationColumns = `id, room_id, user_id, seat_row, seat_col, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }, res *model.Reservation) error {
	return row.Scan(&res.ID, &res.RoomID, &res.UserID, &res.SeatRow, &res.SeatCol, &res.Status, &res.CreatedAt, &res.UpdatedAt)
}

// HasActive reports whether the room has at least one reservation in
// the active status set. It reads committed state on every call and
// is never cached; the capacity guard depends on that freshness.
func (r *ReservationRepo) HasActive(ctx context.Context, roomID uint64) (bool, error) {
	in, args := activeInClause()
	q := `SELECT EXISTS(SELECT 1 FROM reservations WHERE room_id = ? AND status IN ` + in + `)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, append([]any{roomID}, args...)...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a reservation for a seat in the given room. The whole
// operation runs in one transaction that:
//
//  1. loads the room row FOR UPDATE, so no geometry change can commit
//     underneath it;
//  2. validates the seat coordinate against the locked geometry,
//     returning ErrSeatOutOfRange when it does not fit;
//  3. rejects the seat with ErrSeatTaken when an active reservation
//     already holds it;
//  4. inserts the reservation and increments the room version.
//
// The version bump is what orders this insert against concurrent
// versioned room updates (see RoomRepo.UpdateVersioned). On success
// the generated ID, status and timestamps are populated on res.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const qRoom = `SELECT seat_rows, seat_cols FROM rooms WHERE id = ? FOR UPDATE`
	var room model.Room
	if err := tx.QueryRowContext(ctx, qRoom, res.RoomID).Scan(&room.Rows, &room.Columns); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRoomNotFound
		}
		return err
	}
	if !room.SeatInBounds(res.SeatRow, res.SeatCol) {
		return ErrSeatOutOfRange
	}

	in, args := activeInClause()
	qSeat := `SELECT EXISTS(SELECT 1 FROM reservations WHERE room_id = ? AND seat_row = ? AND seat_col = ? AND status IN ` + in + `)`
	var taken bool
	if err := tx.QueryRowContext(ctx, qSeat, append([]any{res.RoomID, res.SeatRow, res.SeatCol}, args...)...).Scan(&taken); err != nil {
		return err
	}
	if taken {
		return ErrSeatTaken
	}

	if res.Status == "" {
		res.Status = model.ReservationPending
	}
	const qInsert = `INSERT INTO reservations (room_id, user_id, seat_row, seat_col, status) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, qInsert, res.RoomID, res.UserID, res.SeatRow, res.SeatCol, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	// Bump the room version so concurrent geometry CAS writes fail and
	// re-run the capacity guard against this reservation.
	const qBump = `UPDATE rooms SET version = version + 1 WHERE id = ?`
	if _, err := tx.ExecContext(ctx, qBump, res.RoomID); err != nil {
		return err
	}

	const qSelect = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if err := scanReservation(tx.QueryRowContext(ctx, qSelect, res.ID), res); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID retrieves a reservation by its ID, returning
// ErrReservationNotFound when no row matches.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	var res model.Reservation
	if err := scanReservation(r.db.QueryRowContext(ctx, q, id), &res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &res, nil
}

// Cancel marks a reservation as CANCELLED. Unless admin is set, the
// reservation must belong to userID; otherwise ErrForbidden is
// returned. Cancelling a reservation that is already out of the
// active set is a no-op and succeeds.
func (r *ReservationRepo) Cancel(ctx context.Context, id, userID uint64, admin bool) error {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !admin && cur.UserID != userID {
		return ErrForbidden
	}
	if !cur.IsActive() {
		return nil
	}
	const q = `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, model.ReservationCancelled, id)
	return err
}

// ListByRoom returns all reservations for a room ordered by ID.
func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID uint64) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE room_id = ? ORDER BY id`
	return r.list(ctx, q, roomID)
}

// ListByUser returns all reservations made by a user ordered by ID.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE user_id = ? ORDER BY id`
	return r.list(ctx, q, userID)
}

func (r *ReservationRepo) list(ctx context.Context, q string, arg any) ([]*model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Reservation
	for rows.Next() {
		res := new(model.Reservation)
		if err := scanReservation(rows, res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
