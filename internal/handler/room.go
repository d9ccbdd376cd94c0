package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-room-manager/internal/model"
	"github.com/iliyamo/cinema-room-manager/internal/service"
)

// RoomHandler exposes the room management endpoints.
type RoomHandler struct {
	Rooms *service.RoomService
}

// NewRoomHandler constructs a RoomHandler and panics if the service is nil.
func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	if rooms == nil {
		panic("nil service passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

// roomResponse is the GET /v1/rooms/:id payload: the room plus the
// advisory capacity flag. The flag tells the client whether to gray
// out the rows/columns inputs; the server re-checks on every write,
// so the flag carries no authority.
type roomResponse struct {
	*model.Room
	CanEditCapacity    bool                   `json:"can_edit_capacity"`
	CapacityLockReason service.DecisionReason `json:"capacity_lock_reason"`
}

// List handles GET /v1/rooms and returns all rooms.
func (h *RoomHandler) List(c echo.Context) error {
	items, err := h.Rooms.ListRooms(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Get handles GET /v1/rooms/:id and returns the room together with a
// freshly computed capacity-edit decision.
func (h *RoomHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	room, dec, err := h.Rooms.GetRoom(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, roomResponse{
		Room:               room,
		CanEditCapacity:    dec.Allowed,
		CapacityLockReason: dec.Reason,
	})
}

// Create handles POST /v1/rooms and creates a room for the admin.
func (h *RoomHandler) Create(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	var body struct {
		Name        string `json:"name"`
		MovieTitle  string `json:"movie_title"`
		MoviePoster string `json:"movie_poster"`
		Rows        uint32 `json:"rows"`
		Columns     uint32 `json:"columns"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	room, err := h.Rooms.CreateRoom(c.Request().Context(), p, service.CreateRoomRequest{
		Name:        body.Name,
		MovieTitle:  body.MovieTitle,
		MoviePoster: body.MoviePoster,
		Rows:        body.Rows,
		Columns:     body.Columns,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Update handles PUT /v1/rooms/:id. Movie-binding fields are always
// editable; a geometry change is rejected as a whole with 409 when
// the room still has active reservations.
func (h *RoomHandler) Update(c echo.Context) error {
	p, err := principalFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	var body struct {
		Name        *string `json:"name"`
		MovieTitle  *string `json:"movie_title"`
		MoviePoster *string `json:"movie_poster"`
		Rows        *uint32 `json:"rows"`
		Columns     *uint32 `json:"columns"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	room, err := h.Rooms.UpdateRoom(c.Request().Context(), p, id, service.UpdateRoomRequest{
		Name:        body.Name,
		MovieTitle:  body.MovieTitle,
		MoviePoster: body.MoviePoster,
		Rows:        body.Rows,
		Columns:     body.Columns,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, room)
}
