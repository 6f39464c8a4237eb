// Package queue defines message payloads exchanged over the message broker.
package queue

// SeatMapChangedEvent is published on every hold or booking mutation for a
// trip. It deliberately carries no seat detail: consumers re-derive the
// projection from the store, so deliveries may be redundant and arrive
// more than once without harm.
type SeatMapChangedEvent struct {
	TripID    uint64 `json:"trip_id"`
	ChangedAt string `json:"changed_at"`
}

// BookingConfirmedEvent is published when a booking transitions to
// CONFIRMED. It contains enough information for downstream consumers to
// log, notify, or trigger ticket generation without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID        uint64 `json:"booking_id"`
	TripID           uint64 `json:"trip_id"`
	SeatID           uint64 `json:"seat_id"`
	OriginOrder      uint32 `json:"origin_order"`
	DestinationOrder uint32 `json:"destination_order"`
	SessionID        string `json:"session_id"`
	PassengerName    string `json:"passenger_name"`
	ConfirmedAt      string `json:"confirmed_at"`
}
