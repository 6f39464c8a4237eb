package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viaroute/seat-reservation/internal/middleware"
	"github.com/viaroute/seat-reservation/internal/occupancy"
	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
	"github.com/viaroute/seat-reservation/internal/view"
)

// SeatMapHandler renders the per-viewer seat map for a trip segment.  The
// read is a non-blocking, eventually-consistent snapshot: bookings and
// live holds are fetched for the whole trip in two queries and projected
// with the pure view code.  Clients recompute on every poll and on every
// seat-map change notification; recomputation is idempotent.
type SeatMapHandler struct {
	TripRepo     *repository.TripRepo
	StopRepo     *repository.StopRepo
	SeatRepo     *repository.SeatRepo
	BookingRepo  *repository.BookingRepo
	SeatHoldRepo *repository.SeatHoldRepo
	Occupancy    *occupancy.Index
}

// NewSeatMapHandler constructs a SeatMapHandler.  All dependencies must be
// non-nil.
func NewSeatMapHandler(tripRepo *repository.TripRepo, stopRepo *repository.StopRepo, seatRepo *repository.SeatRepo, bookingRepo *repository.BookingRepo, seatHoldRepo *repository.SeatHoldRepo, index *occupancy.Index) *SeatMapHandler {
	if tripRepo == nil || stopRepo == nil || seatRepo == nil || bookingRepo == nil || seatHoldRepo == nil || index == nil {
		panic("nil dependency passed to NewSeatMapHandler")
	}
	return &SeatMapHandler{
		TripRepo:     tripRepo,
		StopRepo:     stopRepo,
		SeatRepo:     seatRepo,
		BookingRepo:  bookingRepo,
		SeatHoldRepo: seatHoldRepo,
		Occupancy:    index,
	}
}

// GetSeatMap handles GET /v1/trips/:id/seats?from=<stop_id>&to=<stop_id>.
// It resolves the requested stops to their route orders, classifies every
// seat of the trip's bus against the candidate segment for the calling
// session, and returns the display records.
func (h *SeatMapHandler) GetSeatMap(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	fromID, err := strconv.ParseUint(c.QueryParam("from"), 10, 64)
	if err != nil || fromID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from stop is required"})
	}
	toID, err := strconv.ParseUint(c.QueryParam("to"), 10, 64)
	if err != nil || toID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to stop is required"})
	}

	ctx := c.Request().Context()
	trip, err := h.TripRepo.GetByID(ctx, tripID)
	if err != nil {
		return writeError(c, err)
	}
	originOrder, err := h.StopRepo.GetOrder(ctx, trip.RouteID, fromID)
	if err != nil {
		return writeError(c, err)
	}
	destinationOrder, err := h.StopRepo.GetOrder(ctx, trip.RouteID, toID)
	if err != nil {
		return writeError(c, err)
	}
	candidate, err := segment.New(originOrder, destinationOrder)
	if err != nil {
		return writeError(c, err)
	}

	seats, err := h.SeatRepo.GetByBus(ctx, trip.BusID)
	if err != nil {
		return writeError(c, err)
	}
	now := time.Now().UTC()
	bookings, err := h.BookingRepo.OccupyingByTrip(ctx, tripID)
	if err != nil {
		return writeError(c, err)
	}
	holds, err := h.SeatHoldRepo.LiveByTrip(ctx, tripID, now)
	if err != nil {
		return writeError(c, err)
	}

	sessionID := middleware.SessionID(c)
	views := view.Project(seats, candidate, bookings, holds, sessionID, now)
	return c.JSON(http.StatusOK, echo.Map{
		"trip_id":           tripID,
		"origin_order":      originOrder,
		"destination_order": destinationOrder,
		"items":             views,
	})
}

// GetSeatStatus handles GET /v1/trips/:id/seats/:seatId?from=<stop_id>&to=<stop_id>.
// It is the cheap precheck clients run before placing a hold: the
// occupancy index fetches only the claims of the one seat and classifies
// the candidate segment for the calling session.  The answer carries no
// reservation, so a free seat can still be lost to a faster session.
func (h *SeatMapHandler) GetSeatStatus(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	seatID, err := strconv.ParseUint(c.Param("seatId"), 10, 64)
	if err != nil || seatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	fromID, err := strconv.ParseUint(c.QueryParam("from"), 10, 64)
	if err != nil || fromID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from stop is required"})
	}
	toID, err := strconv.ParseUint(c.QueryParam("to"), 10, 64)
	if err != nil || toID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to stop is required"})
	}

	ctx := c.Request().Context()
	trip, err := h.TripRepo.GetByID(ctx, tripID)
	if err != nil {
		return writeError(c, err)
	}
	seat, err := h.SeatRepo.GetByID(ctx, seatID)
	if err != nil {
		return writeError(c, err)
	}
	if seat.BusID != trip.BusID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	}
	originOrder, err := h.StopRepo.GetOrder(ctx, trip.RouteID, fromID)
	if err != nil {
		return writeError(c, err)
	}
	destinationOrder, err := h.StopRepo.GetOrder(ctx, trip.RouteID, toID)
	if err != nil {
		return writeError(c, err)
	}
	candidate, err := segment.New(originOrder, destinationOrder)
	if err != nil {
		return writeError(c, err)
	}

	status, err := h.Occupancy.ClassifySeat(ctx, tripID, seatID, candidate, middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"trip_id":       tripID,
		"seat_id":       seatID,
		"status":        status,
		"is_selectable": seat.IsActive && status == occupancy.StatusFree,
	})
}
