package model

import (
	"time"

	"github.com/viaroute/seat-reservation/internal/segment"
)

// SeatHold is a time-boxed claim on a seat segment placed while a viewer
// is in checkout.  Holds prevent double-selection but are advisory, not a
// lock: finalization re-checks occupancy at commit time.  A hold past its
// ExpiresAt is treated as absent by every read (lazy expiry); rows are
// deleted on explicit release, on consumption by a booking, or by the
// hygiene sweep.
//
// Fields:
//  ID               – primary key identifier.
//  TripID           – trip for which the seat is held.
//  SeatID           – seat being held.
//  OriginOrder      – origin stop order of the held segment.
//  DestinationOrder – destination stop order of the held segment.
//  SessionID        – anonymous session that owns the hold.
//  HoldToken        – opaque token returned to the client for correlation.
//  ExpiresAt        – when the hold expires.
//  CreatedAt        – when the hold was created.
type SeatHold struct {
	ID               uint64    // seat_holds.id
	TripID           uint64    // seat_holds.trip_id
	SeatID           uint64    // seat_holds.seat_id
	OriginOrder      uint32    // seat_holds.origin_order
	DestinationOrder uint32    // seat_holds.destination_order
	SessionID        string    // seat_holds.session_id
	HoldToken        string    // seat_holds.hold_token
	ExpiresAt        time.Time // seat_holds.expires_at
	CreatedAt        time.Time // seat_holds.created_at
}

// Segment returns the half-open stop-order interval claimed by the hold.
func (h SeatHold) Segment() segment.Segment {
	return segment.Segment{OriginOrder: h.OriginOrder, DestinationOrder: h.DestinationOrder}
}

// Live reports whether the hold is still in effect at the given instant.
// Expiry is evaluated at read time; no deletion is required.
func (h SeatHold) Live(now time.Time) bool {
	return h.ExpiresAt.After(now)
}
