package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/viaroute/seat-reservation/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require a session on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the public catalog endpoints.  These routes
// serve externally owned reference data (route stops and bus layouts) and
// are good candidates for the response cache middleware, which callers
// attach per-route via the cached argument.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cached echo.MiddlewareFunc) {
	// Ordered stops of a route; the foundation of the segment algebra
	e.GET("/v1/routes/:id/stops", h.GetRouteStops, cached)
	// Physical seat layout of a bus, including deactivated seats
	e.GET("/v1/buses/:id/seats", h.GetBusSeats, cached)
}

// RegisterFleet registers the operator-facing layout endpoints.  They are
// mutation routes, so the response cache is never attached here.
func RegisterFleet(e *echo.Echo, h *handler.FleetHandler) {
	// One-time layout publication for a new bus
	e.POST("/v1/fleet/buses/:id/seats", h.PublishBusLayout)
	// Soft-disable a seat; the layout itself never shrinks
	e.POST("/v1/fleet/seats/:id/deactivate", h.DeactivateSeat)
}

// RegisterReservation registers the seat-map, hold and booking endpoints.
// All of them run behind the anonymous session middleware so the session
// id can be threaded explicitly into the core.
func RegisterReservation(e *echo.Echo, seatMap *handler.SeatMapHandler, holds *handler.HoldHandler, bookings *handler.BookingHandler) {
	// Per-viewer seat map for a candidate segment; eventually-consistent read
	e.GET("/v1/trips/:id/seats", seatMap.GetSeatMap)
	// Single-seat availability precheck backed by the occupancy index
	e.GET("/v1/trips/:id/seats/:seatId", seatMap.GetSeatStatus)
	// Hold lifecycle: place, extend, release.  Release is idempotent.
	e.POST("/v1/trips/:id/holds", holds.PlaceHold)
	e.PATCH("/v1/trips/:id/holds/:seatId", holds.ExtendHold)
	e.DELETE("/v1/trips/:id/holds/:seatId", holds.ReleaseHold)
	// Finalization consumes the hold in the same transaction that writes
	// the booking; confirm/cancel are append-only status transitions.
	e.POST("/v1/trips/:id/bookings", bookings.FinalizeBooking)
	e.POST("/v1/bookings/:id/confirm", bookings.ConfirmBooking)
	e.POST("/v1/bookings/:id/cancel", bookings.CancelBooking)
	e.GET("/v1/my/bookings", bookings.ListBookings)
}
