package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viaroute/seat-reservation/internal/booking"
	"github.com/viaroute/seat-reservation/internal/middleware"
	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
)

// BookingHandler exposes booking finalization and the append-only status
// transitions.  Finalization consumes the caller's hold atomically; the
// status endpoints drive the PENDING → CONFIRMED and → CANCELLED moves.
type BookingHandler struct {
	TripRepo    *repository.TripRepo
	StopRepo    *repository.StopRepo
	BookingRepo *repository.BookingRepo
	Finalizer   *booking.Finalizer
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must be
// non-nil.
func NewBookingHandler(tripRepo *repository.TripRepo, stopRepo *repository.StopRepo, bookingRepo *repository.BookingRepo, finalizer *booking.Finalizer) *BookingHandler {
	if tripRepo == nil || stopRepo == nil || bookingRepo == nil || finalizer == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{TripRepo: tripRepo, StopRepo: stopRepo, BookingRepo: bookingRepo, Finalizer: finalizer}
}

// bookingItem is the booking representation returned to clients.
type bookingItem struct {
	ID               uint64 `json:"id"`
	TripID           uint64 `json:"trip_id"`
	SeatID           uint64 `json:"seat_id"`
	OriginOrder      uint32 `json:"origin_order"`
	DestinationOrder uint32 `json:"destination_order"`
	PassengerName    string `json:"passenger_name"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

// FinalizeBooking handles POST /v1/trips/:id/bookings.  It converts the
// caller's hold into a PENDING booking.  The hold is advisory: occupancy
// is re-checked at commit time, so a competing booking that landed in the
// meantime yields 409 even though the caller held the seat.
func (h *BookingHandler) FinalizeBooking(c echo.Context) error {
	tripID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tripID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
	}
	var body struct {
		SeatID            uint64 `json:"seat_id"`
		OriginStopID      uint64 `json:"origin_stop_id"`
		DestinationStopID uint64 `json:"destination_stop_id"`
		HoldID            uint64 `json:"hold_id"`
		PassengerName     string `json:"passenger_name"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SeatID == 0 || body.OriginStopID == 0 || body.DestinationStopID == 0 || body.HoldID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_id, origin_stop_id, destination_stop_id and hold_id are required"})
	}
	if body.PassengerName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "passenger_name is required"})
	}

	ctx := c.Request().Context()
	trip, err := h.TripRepo.GetByID(ctx, tripID)
	if err != nil {
		return writeError(c, err)
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
	b, err := h.Finalizer.Finalize(ctx, tripID, body.SeatID, seg, body.HoldID, sessionID,
		body.OriginStopID, body.DestinationStopID, booking.Passenger{Name: body.PassengerName})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id": b.ID,
		"status":     b.Status,
	})
}

// ConfirmBooking handles POST /v1/bookings/:id/confirm.  In production the
// payment callback drives this transition; the endpoint guards it with the
// same session check as cancellation.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	existing, err := h.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return writeError(c, err)
	}
	if existing.SessionID != middleware.SessionID(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	b, err := h.Finalizer.Confirm(ctx, bookingID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id": b.ID,
		"status":     b.Status,
	})
}

// CancelBooking handles POST /v1/bookings/:id/cancel.  Cancellation is an
// append-only status transition: the row stays, the segment is freed
// permanently.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	sessionID := middleware.SessionID(c)
	if err := h.Finalizer.Cancel(c.Request().Context(), bookingID, sessionID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListBookings handles GET /v1/my/bookings.  It returns the calling
// session's bookings, newest first.  When none exist, it returns an empty
// array.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	sessionID := middleware.SessionID(c)
	bookings, err := h.BookingRepo.ListBySession(c.Request().Context(), sessionID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]bookingItem, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, bookingItem{
			ID:               b.ID,
			TripID:           b.TripID,
			SeatID:           b.SeatID,
			OriginOrder:      b.OriginOrder,
			DestinationOrder: b.DestinationOrder,
			PassengerName:    b.PassengerName,
			Status:           b.Status,
			CreatedAt:        b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
