package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-room-manager/internal/model"
	"github.com/iliyamo/cinema-room-manager/internal/repository"
)

// BookingService creates and cancels seat reservations. The heavy
// lifting — locking the room row, bounds-checking the seat against
// the committed geometry and bumping the room version — happens in
// the ledger implementation so that it is atomic with the insert.
type BookingService struct {
	ledger ReservationLedger
}

// NewBookingService constructs a BookingService.
func NewBookingService(ledger ReservationLedger) *BookingService {
	if ledger == nil {
		panic("nil ledger passed to NewBookingService")
	}
	return &BookingService{ledger: ledger}
}

// Reserve books the seat at (seatRow, seatCol) in the given room for
// the principal. Coordinates are 1-based and must fall inside the
// room's grid at commit time.
func (s *BookingService) Reserve(ctx context.Context, p Principal, roomID uint64, seatRow, seatCol uint32) (*model.Reservation, error) {
	if p.UserID == 0 {
		return nil, ErrUnauthorized
	}
	if seatRow < 1 || seatCol < 1 {
		return nil, fmt.Errorf("%w: seat_row and seat_col must be at least 1", ErrInvalidArgument)
	}
	res := &model.Reservation{
		RoomID:  roomID,
		UserID:  p.UserID,
		SeatRow: seatRow,
		SeatCol: seatCol,
		Status:  model.ReservationPending,
	}
	if err := s.ledger.Create(ctx, res); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
		case errors.Is(err, repository.ErrSeatOutOfRange):
			return nil, fmt.Errorf("%w: seat (%d,%d) is outside the room grid", ErrInvalidArgument, seatRow, seatCol)
		case errors.Is(err, repository.ErrSeatTaken):
			return nil, ErrSeatTaken
		default:
			return nil, fmt.Errorf("%w: create reservation: %v", ErrStorage, err)
		}
	}
	return res, nil
}

// Cancel moves a reservation out of the active set. Customers may
// cancel their own reservations; admins may cancel any.
func (s *BookingService) Cancel(ctx context.Context, p Principal, reservationID uint64) error {
	if p.UserID == 0 {
		return ErrUnauthorized
	}
	err := s.ledger.Cancel(ctx, reservationID, p.UserID, p.IsAdmin())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrReservationNotFound):
		return fmt.Errorf("%w: reservation %d", ErrNotFound, reservationID)
	case errors.Is(err, repository.ErrForbidden):
		return ErrUnauthorized
	default:
		return fmt.Errorf("%w: cancel reservation: %v", ErrStorage, err)
	}
}

// ListForRoom returns every reservation for a room, admin only.
func (s *BookingService) ListForRoom(ctx context.Context, p Principal, roomID uint64) ([]*model.Reservation, error) {
	if !p.IsAdmin() {
		return nil, ErrUnauthorized
	}
	items, err := s.ledger.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reservations: %v", ErrStorage, err)
	}
	return items, nil
}

// ListForUser returns the principal's own reservations.
func (s *BookingService) ListForUser(ctx context.Context, p Principal) ([]*model.Reservation, error) {
	if p.UserID == 0 {
		return nil, ErrUnauthorized
	}
	items, err := s.ledger.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: list reservations: %v", ErrStorage, err)
	}
	return items, nil
}
