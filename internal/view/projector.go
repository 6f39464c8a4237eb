// Package view implements the live view projector: a pure mapping from a
// bus's seats and their occupancy classification to per-seat display
// records.  Nothing here touches the store; the projection is recomputed
// on every poll and on every change notification, which is safe because
// recomputation is idempotent.
package view

import (
	"time"

	"github.com/viaroute/seat-reservation/internal/model"
	"github.com/viaroute/seat-reservation/internal/occupancy"
	"github.com/viaroute/seat-reservation/internal/segment"
)

// SeatStatus is the display status of one seat for one viewer.
type SeatStatus string

const (
	StatusAvailable SeatStatus = "available"
	StatusSelected  SeatStatus = "selected"
	StatusReserved  SeatStatus = "reserved"
	StatusBooked    SeatStatus = "booked"
)

// SeatView is the per-seat display record handed to clients.
type SeatView struct {
	SeatID       uint64     `json:"seat_id"`
	RowNumber    uint32     `json:"row"`
	ColumnNumber uint32     `json:"column"`
	Status       SeatStatus `json:"status"`
	IsSelectable bool       `json:"is_selectable"`
}

// fromOccupancy maps an occupancy classification to a display status.
func fromOccupancy(s occupancy.Status) SeatStatus {
	switch s {
	case occupancy.StatusBooked:
		return StatusBooked
	case occupancy.StatusReservedByOther:
		return StatusReserved
	case occupancy.StatusSelectedByViewer:
		return StatusSelected
	default:
		return StatusAvailable
	}
}

// Project derives the seat map one viewer sees for a candidate segment.
// Each seat is classified against its bookings and live holds with the
// half-open overlap rule; a deactivated seat is never selectable
// regardless of classification.  is_selectable is true exactly for the
// available and selected statuses on active seats.
func Project(seats []model.Seat, candidate segment.Segment, bookings map[uint64][]model.Booking, holds map[uint64][]model.SeatHold, viewerSessionID string, now time.Time) []SeatView {
	out := make([]SeatView, 0, len(seats))
	for _, seat := range seats {
		status := fromOccupancy(occupancy.Classify(candidate, bookings[seat.ID], holds[seat.ID], viewerSessionID, now))
		selectable := seat.IsActive && (status == StatusAvailable || status == StatusSelected)
		out = append(out, SeatView{
			SeatID:       seat.ID,
			RowNumber:    seat.RowNumber,
			ColumnNumber: seat.ColumnNumber,
			Status:       status,
			IsSelectable: selectable,
		})
	}
	return out
}
