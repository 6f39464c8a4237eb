package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
)

// writeError translates core errors into HTTP responses.  Conflicts map to
// 409 so clients know to refresh the seat map and re-select; the hold cap
// maps to 422; upstream outages map to 503 and are not retried here.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, segment.ErrInvalidSegment):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin stop must precede destination stop"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat no longer available"})
	case errors.Is(err, repository.ErrHoldLimitExceeded):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "hold limit exceeded"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrStopNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "stop not found"})
	case errors.Is(err, repository.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case errors.Is(err, repository.ErrTripNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrUpstream):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
