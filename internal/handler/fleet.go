package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/viaroute/seat-reservation/internal/model"
    "github.com/viaroute/seat-reservation/internal/repository"
)

// FleetHandler exposes the operator-facing seat layout mutations: publishing
// a bus layout and deactivating single seats.  Layouts are published once
// and never restructured; deactivation is the only later mutation and it is
// soft, so historical bookings keep pointing at the seat.
type FleetHandler struct {
    SeatRepo *repository.SeatRepo
}

// NewFleetHandler constructs a FleetHandler.
func NewFleetHandler(seatRepo *repository.SeatRepo) *FleetHandler {
    if seatRepo == nil {
        panic("nil repository passed to NewFleetHandler")
    }
    return &FleetHandler{SeatRepo: seatRepo}
}

// maxLayoutRows and maxLayoutColumns bound a published grid to something a
// bus can physically carry.
const (
    maxLayoutRows    = 30
    maxLayoutColumns = 6
)

// PublishBusLayout handles POST /v1/fleet/buses/:id/seats.  The body names
// the grid dimensions; every cell becomes one active seat.  Publishing a
// layout for a bus that already has seats is rejected to keep seat ids
// stable for existing bookings.
func (h *FleetHandler) PublishBusLayout(c echo.Context) error {
    busID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || busID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus id"})
    }
    var body struct {
        Rows    uint32 `json:"rows"`
        Columns uint32 `json:"columns"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if body.Rows == 0 || body.Columns == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "rows and columns are required"})
    }
    if body.Rows > maxLayoutRows || body.Columns > maxLayoutColumns {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "layout dimensions out of range"})
    }

    ctx := c.Request().Context()
    existing, err := h.SeatRepo.GetByBus(ctx, busID)
    if err != nil {
        return writeError(c, err)
    }
    if len(existing) > 0 {
        return c.JSON(http.StatusConflict, echo.Map{"error": "bus already has a published layout"})
    }

    seats := make([]model.Seat, 0, int(body.Rows)*int(body.Columns))
    for row := uint32(1); row <= body.Rows; row++ {
        for col := uint32(1); col <= body.Columns; col++ {
            seats = append(seats, model.Seat{BusID: busID, RowNumber: row, ColumnNumber: col, IsActive: true})
        }
    }
    if err := h.SeatRepo.CreateBulk(ctx, seats); err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"created": len(seats)})
}

// DeactivateSeat handles POST /v1/fleet/seats/:id/deactivate.  The seat
// stays in the layout with is_active=false; the seat map renders it as
// never selectable and future holds exclude it.
func (h *FleetHandler) DeactivateSeat(c echo.Context) error {
    seatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || seatID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
    }
    ctx := c.Request().Context()
    if err := h.SeatRepo.Deactivate(ctx, seatID); err != nil {
        return writeError(c, err)
    }
    seat, err := h.SeatRepo.GetByID(ctx, seatID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "seat_id":   seat.ID,
        "bus_id":    seat.BusID,
        "row":       seat.RowNumber,
        "column":    seat.ColumnNumber,
        "is_active": seat.IsActive,
    })
}
