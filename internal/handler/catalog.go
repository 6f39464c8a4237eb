// Package handler exposes HTTP handlers for the reservation API. This file
// defines the public catalog handlers: route stops and bus seat layouts.
// Both are read-mostly reference data owned by external systems; the
// responses are safe to cache.
package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/viaroute/seat-reservation/internal/repository"
)

// CatalogHandler aggregates the read-only catalog repositories.
type CatalogHandler struct {
	StopRepo *repository.StopRepo // ordered stops per route
	SeatRepo *repository.SeatRepo // seat layout per bus
}

// NewCatalogHandler constructs a CatalogHandler.  All dependencies must be
// non-nil.
func NewCatalogHandler(stopRepo *repository.StopRepo, seatRepo *repository.SeatRepo) *CatalogHandler {
	if stopRepo == nil || seatRepo == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{StopRepo: stopRepo, SeatRepo: seatRepo}
}

// publicStop is the sanitized stop representation for catalog responses.
type publicStop struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	StopOrder uint32 `json:"stop_order"`
}

// publicSeat is the sanitized seat representation for layout responses.
type publicSeat struct {
	ID       uint64 `json:"id"`
	Row      uint32 `json:"row"`
	Column   uint32 `json:"column"`
	IsActive bool   `json:"is_active"`
}

// GetRouteStops handles GET /v1/routes/:id/stops.  It returns the route's
// stops in stop_order; an unknown route yields an empty list rather than a
// 404 because the catalog is externally owned.
func (h *CatalogHandler) GetRouteStops(c echo.Context) error {
	routeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || routeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	stops, err := h.StopRepo.GetByRoute(c.Request().Context(), routeID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]publicStop, 0, len(stops))
	for _, s := range stops {
		out = append(out, publicStop{ID: s.ID, Name: s.Name, StopOrder: s.StopOrder})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetBusSeats handles GET /v1/buses/:id/seats.  It returns the bus's seat
// layout ordered by row then column, including deactivated seats marked
// with is_active=false so clients can render gaps.
func (h *CatalogHandler) GetBusSeats(c echo.Context) error {
	busID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || busID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus id"})
	}
	seats, err := h.SeatRepo.GetByBus(c.Request().Context(), busID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]publicSeat, 0, len(seats))
	for _, s := range seats {
		out = append(out, publicSeat{ID: s.ID, Row: s.RowNumber, Column: s.ColumnNumber, IsActive: s.IsActive})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
