package model

import "time"

// Trip is one departure of a bus along a route on a given date.  All
// occupancy state (bookings and holds) is scoped to a trip: the same
// physical seat is a fresh resource on every departure.
//
// Fields:
//  ID          – primary key identifier.
//  RouteID     – route the trip runs along.
//  BusID       – bus operating the trip, which fixes the seat layout.
//  DepartsAt   – scheduled departure of the first stop.
//  Status      – state of the trip (SCHEDULED, CANCELLED, FINISHED).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Trip struct {
	ID        uint64    // trips.id
	RouteID   uint64    // trips.route_id
	BusID     uint64    // trips.bus_id
	DepartsAt time.Time // trips.departs_at
	Status    string    // trips.status
	CreatedAt time.Time // trips.created_at
	UpdatedAt time.Time // trips.updated_at
}
