// Package segment implements the stop-order interval algebra used by the
// reservation core.  A passenger occupies a seat for the half-open interval
// [origin_order, destination_order) over the route's ordered stops.  Two
// passengers may share a physical seat as long as their intervals do not
// overlap; a shared boundary stop (one alights where the other boards) is
// not an overlap.
package segment

import (
	"errors"
	"fmt"
)

// ErrInvalidSegment is returned when origin_order is not strictly less
// than destination_order.  An empty or inverted interval never describes
// a real journey.
var ErrInvalidSegment = errors.New("invalid segment: origin must precede destination")

// Segment is the half-open stop-order interval [OriginOrder, DestinationOrder).
type Segment struct {
	OriginOrder      uint32 `json:"origin_order"`
	DestinationOrder uint32 `json:"destination_order"`
}

// New builds a validated Segment.
func New(origin, destination uint32) (Segment, error) {
	s := Segment{OriginOrder: origin, DestinationOrder: destination}
	if err := s.Validate(); err != nil {
		return Segment{}, err
	}
	return s, nil
}

// Validate checks the origin < destination invariant.
func (s Segment) Validate() error {
	if s.OriginOrder >= s.DestinationOrder {
		return ErrInvalidSegment
	}
	return nil
}

// Overlaps reports whether two segments conflict.  Segments [a,b) and [c,d)
// overlap iff NOT (b <= c OR a >= d); adjacent segments sharing a boundary
// stop do not conflict.
func (s Segment) Overlaps(o Segment) bool {
	return !(s.DestinationOrder <= o.OriginOrder || s.OriginOrder >= o.DestinationOrder)
}

// Contains reports whether the stop order falls inside the interval.  The
// destination boundary is exclusive: a passenger leaving at a stop does not
// occupy the seat from that stop onwards.
func (s Segment) Contains(stopOrder uint32) bool {
	return stopOrder >= s.OriginOrder && stopOrder < s.DestinationOrder
}

// String renders the interval in half-open notation, e.g. "[2,5)".
func (s Segment) String() string {
	return fmt.Sprintf("[%d,%d)", s.OriginOrder, s.DestinationOrder)
}
