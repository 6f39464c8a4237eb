package model

import (
	"time"

	"github.com/viaroute/seat-reservation/internal/segment"
)

// Booking status values.  Transitions are append-only: a booking row is
// never physically deleted, its status moves through the lifecycle instead.
// Only PENDING and CONFIRMED bookings participate in occupancy checks; a
// cancelled booking frees its segment permanently.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
	BookingStatusCompleted = "COMPLETED"
)

// Booking records a passenger's purchase of one seat for a sub-segment of
// a trip.  Origin and destination stop orders are denormalized onto the
// row so occupancy checks need no join against the stops table.
//
// Fields:
//  ID                – primary key identifier.
//  TripID            – trip being travelled.
//  SeatID            – seat occupied for the segment.
//  OriginStopID      – stop where the passenger boards.
//  DestinationStopID – stop where the passenger alights.
//  OriginOrder       – stop_order of the origin stop.
//  DestinationOrder  – stop_order of the destination stop.
//  SessionID         – anonymous checkout session that created the booking.
//  PassengerName     – name on the ticket.
//  Status            – lifecycle state (see constants above).
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Booking struct {
	ID                uint64    // bookings.id
	TripID            uint64    // bookings.trip_id
	SeatID            uint64    // bookings.seat_id
	OriginStopID      uint64    // bookings.origin_stop_id
	DestinationStopID uint64    // bookings.destination_stop_id
	OriginOrder       uint32    // bookings.origin_order
	DestinationOrder  uint32    // bookings.destination_order
	SessionID         string    // bookings.session_id
	PassengerName     string    // bookings.passenger_name
	Status            string    // bookings.status
	CreatedAt         time.Time // bookings.created_at
	UpdatedAt         time.Time // bookings.updated_at
}

// Segment returns the half-open stop-order interval claimed by the booking.
func (b Booking) Segment() segment.Segment {
	return segment.Segment{OriginOrder: b.OriginOrder, DestinationOrder: b.DestinationOrder}
}

// Occupies reports whether the booking participates in occupancy checks.
func (b Booking) Occupies() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
