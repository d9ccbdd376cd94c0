package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-room-manager/internal/service"
)

// ReservationHandler exposes the booking endpoints.
type ReservationHandler struct {
	Bookings *service.BookingService
}

// NewReservationHandler constructs a ReservationHandler and panics if
// the service is nil.
func NewReservationHandler(bookings *service.BookingService) *ReservationHandler {
	if bookings == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Bookings: bookings}
}

// Create handles POST /v1/rooms/:id/reservations and books one seat.
func (h *ReservationHandler) Create(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	roomID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		SeatRow uint32 `json:"seat_row"`
		SeatCol uint32 `json:"seat_col"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	res, err := h.Bookings.Reserve(c.Request().Context(), p, roomID, body.SeatRow, body.SeatCol)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Cancel handles DELETE /v1/reservations/:id. Customers may cancel
// their own reservations, admins any.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Bookings.Cancel(c.Request().Context(), p, id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListForRoom handles GET /v1/rooms/:id/reservations for admins.
func (h *ReservationHandler) ListForRoom(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	roomID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	items, err := h.Bookings.ListForRoom(c.Request().Context(), p, roomID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ListMine handles GET /v1/reservations and returns the caller's
// reservations.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListForUser(c.Request().Context(), p)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
