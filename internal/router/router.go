package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-room-manager/internal/handler"
	"github.com/iliyamo/cinema-room-manager/internal/middleware"
	"github.com/iliyamo/cinema-room-manager/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Register and
// login live under /v1/auth without middleware; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterRooms registers the room endpoints. Reads are public so
// anyone can browse what is showing; GET /v1/rooms/:id additionally
// returns the advisory capacity-edit flag the admin UI uses to
// disable the geometry inputs. Writes require an ADMIN token — the
// server-side capacity guard inside the update service stays the
// authority regardless of what the client saw at load time.
func RegisterRooms(e *echo.Echo, r *handler.RoomHandler, jwtSecret string) {
	e.GET("/v1/rooms", r.List)
	e.GET("/v1/rooms/:id", r.Get)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/rooms", r.Create)
	admin.PUT("/rooms/:id", r.Update)
}

// RegisterReservations registers the booking endpoints. All of them
// require an authenticated user; the per-room ledger view is
// restricted to admins inside the service.
func RegisterReservations(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.POST("/rooms/:id/reservations", r.Create)
	auth.GET("/rooms/:id/reservations", r.ListForRoom)
	auth.GET("/reservations", r.ListMine)
	auth.DELETE("/reservations/:id", r.Cancel)
}
