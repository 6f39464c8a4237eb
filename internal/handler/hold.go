package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viaroute/seat-reservation/internal/hold"
	"github.com/viaroute/seat-reservation/internal/middleware"
	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
)

// HoldHandler exposes hold placement, extension and release.  All methods
// resolve the caller's anonymous session from the context and thread it
// explicitly into the hold manager; the manager itself never reads ambient
// session state.
type HoldHandler struct {
	TripRepo *repository.TripRepo
	StopRepo *repository.StopRepo
	SeatRepo *repository.SeatRepo
	Manager  *hold.Manager
}

// NewHoldHandler constructs a HoldHandler.  All dependencies must be
// non-nil.
func NewHoldHandler(tripRepo *repository.TripRepo, stopRepo *repository.StopRepo, seatRepo *repository.SeatRepo, manager *hold.Manager) *HoldHandler {
	if tripRepo == nil || stopRepo == nil || seatRepo == nil || manager == nil {
		panic("nil dependency passed to NewHoldHandler")
	}
	return &HoldHandler{TripRepo: tripRepo, StopRepo: stopRepo, SeatRepo: seatRepo, Manager: manager}
}

// PlaceHold handles POST /v1/trips/:id/holds.  The body names a seat and
// the origin/destination stops.  On success it returns 201 with the hold
// id, its correlation token and the expiry timestamp.  A conflicting
// segment or a deactivated seat returns 409; exceeding the session's cap
// returns 422.
func (h *HoldHandler) PlaceHold(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	var body struct {
		SeatID            uint64 `json:"seat_id"`
		OriginStopID      uint64 `json:"origin_stop_id"`
		DestinationStopID uint64 `json:"destination_stop_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SeatID == 0 || body.OriginStopID == 0 || body.DestinationStopID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id, origin_stop_id and destination_stop_id are required"})
	}

	ctx := c.Request().Context()
	trip, err := h.TripRepo.GetByID(ctx, tripID)
	if err != nil {
		return writeError(c, err)
	}
	seat, err := h.SeatRepo.GetByID(ctx, body.SeatID)
	if err != nil {
		return writeError(c, err)
	}
	if seat.BusID != trip.BusID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	}
	if !seat.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat is not in service"})
	}
	originOrder, err := h.StopRepo.GetOrder(ctx, trip.RouteID, body.OriginStopID)
	if err != nil {
		return writeError(c, err)
	}
	destinationOrder, err := h.StopRepo.GetOrder(ctx, trip.RouteID, body.DestinationStopID)
	if err != nil {
		return writeError(c, err)
	}
	seg, err := segment.New(originOrder, destinationOrder)
	if err != nil {
		return writeError(c, err)
	}

	sessionID := middleware.SessionID(c)
	placed, err := h.Manager.Place(ctx, tripID, body.SeatID, seg, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"hold_id":    placed.ID,
		"hold_token": placed.HoldToken,
		"expires_at": placed.ExpiresAt.Format(time.RFC3339),
	})
}

// ExtendHold handles PATCH /v1/trips/:id/holds/:seatId.  It pushes the
// expiry of the caller's live hold forward by the configured TTL.  An
// absent or expired hold returns 404.
func (h *HoldHandler) ExtendHold(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	seatID, err := strconv.ParseUint(c.Param("seatId"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}

	sessionID := middleware.SessionID(c)
	expiresAt, err := h.Manager.Extend(c.Request().Context(), tripID, seatID, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// ReleaseHold handles DELETE /v1/trips/:id/holds/:seatId.  It releases the
// caller's hold on the seat.  Releasing an absent hold is a success, not
// an error, so retries and double-clicks are harmless.
func (h *HoldHandler) ReleaseHold(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	seatID, err := strconv.ParseUint(c.Param("seatId"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}

	sessionID := middleware.SessionID(c)
	released, err := h.Manager.Release(c.Request().Context(), tripID, seatID, sessionID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"released": released,
	})
}
