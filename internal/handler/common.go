package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-room-manager/internal/service"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT claims decode numbers as float64, so several stored
// shapes are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// principalFrom builds the service principal out of the claims the
// JWT middleware stored in the context.
func principalFrom(c echo.Context) (service.Principal, error) {
	uid, err := getUserID(c)
	if err != nil {
		return service.Principal{}, err
	}
	role, _ := c.Get("role").(string)
	return service.Principal{UserID: uid, Role: role}, nil
}

// writeServiceError translates the service error taxonomy into HTTP
// responses. CapacityLocked gets its own body shape so clients can
// render the specific "active reservations" explanation instead of a
// generic failure.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrCapacityLocked):
		return c.JSON(http.StatusConflict, map[string]string{
			"error":  "capacity_locked",
			"reason": string(service.ReasonHasActiveReservations),
		})
	case errors.Is(err, service.ErrSeatTaken):
		return c.JSON(http.StatusConflict, map[string]string{"error": "seat already reserved"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// parseID parses a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil
}
