package model

import "time"

// Stop is one boarding point on a route.  StopOrder is a monotonically
// increasing integer unique per route; together the stops of a route form a
// total order of physical locations, and every journey on that route is the
// half-open interval [origin stop order, destination stop order).
//
// Fields:
//  ID        – primary key identifier.
//  RouteID   – route this stop belongs to.
//  Name      – human readable stop name.
//  StopOrder – position of the stop within the route (unique per route).
//  CreatedAt – creation timestamp.
type Stop struct {
	ID        uint64    // stops.id
	RouteID   uint64    // stops.route_id
	Name      string    // stops.name
	StopOrder uint32    // stops.stop_order
	CreatedAt time.Time // stops.created_at
}
