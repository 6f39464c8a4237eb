// Package occupancy implements the segment occupancy index: given a trip,
// a seat and a candidate stop-order segment, it classifies the segment as
// free, booked, reserved by another session or selected by the viewer.
// Classification is a pure function over the seat's bookings and live
// holds; the store-backed Index only fetches the inputs.  It has no side
// effects and is safe to call concurrently and arbitrarily often.
package occupancy

import (
	"context"
	"time"

	"github.com/viaroute/seat-reservation/internal/model"
	"github.com/viaroute/seat-reservation/internal/segment"
)

// Status classifies a candidate segment on one seat.
type Status string

const (
	// StatusFree means no booking and no foreign hold overlaps the segment.
	StatusFree Status = "free"
	// StatusBooked means a PENDING or CONFIRMED booking overlaps the
	// segment.  Booked always outranks every other classification: a
	// booking can never be hidden by a mere hold.
	StatusBooked Status = "booked"
	// StatusReservedByOther means a live hold from another session overlaps
	// the segment.
	StatusReservedByOther Status = "reserved-by-other"
	// StatusSelectedByViewer means the only overlapping claim is a live
	// hold owned by the viewer's own session.
	StatusSelectedByViewer Status = "selected-by-viewer"
)

// Classify applies the half-open overlap rule to the candidate segment.
// Expired holds are skipped at read time, so two calls straddling a hold's
// expiry instant yield different results without any write in between.
// Precedence when several claims overlap: booked, then reserved-by-other,
// then selected-by-viewer.
func Classify(candidate segment.Segment, bookings []model.Booking, holds []model.SeatHold, viewerSessionID string, now time.Time) Status {
	for _, b := range bookings {
		if b.Occupies() && candidate.Overlaps(b.Segment()) {
			return StatusBooked
		}
	}
	selected := false
	for _, h := range holds {
		if !h.Live(now) || !candidate.Overlaps(h.Segment()) {
			continue
		}
		if h.SessionID == viewerSessionID {
			selected = true
			continue
		}
		return StatusReservedByOther
	}
	if selected {
		return StatusSelectedByViewer
	}
	return StatusFree
}

// BookingSource yields the occupancy-relevant bookings of one seat.
type BookingSource interface {
	OccupyingBySeat(ctx context.Context, tripID, seatID uint64) ([]model.Booking, error)
}

// HoldSource yields the live holds of one seat.
type HoldSource interface {
	LiveBySeat(ctx context.Context, tripID, seatID uint64, now time.Time) ([]model.SeatHold, error)
}

// Index is the store-backed occupancy index.  It reads bookings and holds
// through narrow interfaces and classifies with the pure function above.
type Index struct {
	bookings BookingSource
	holds    HoldSource
	now      func() time.Time
}

// NewIndex constructs an Index over the given sources.  The now function
// may be nil, in which case time.Now in UTC is used.
func NewIndex(bookings BookingSource, holds HoldSource, now func() time.Time) *Index {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Index{bookings: bookings, holds: holds, now: now}
}

// ClassifySeat fetches the current claims on (trip, seat) and classifies
// the candidate segment for the given viewer.
func (i *Index) ClassifySeat(ctx context.Context, tripID, seatID uint64, candidate segment.Segment, viewerSessionID string) (Status, error) {
	bookings, err := i.bookings.OccupyingBySeat(ctx, tripID, seatID)
	if err != nil {
		return "", err
	}
	holds, err := i.holds.LiveBySeat(ctx, tripID, seatID, i.now())
	if err != nil {
		return "", err
	}
	return Classify(candidate, bookings, holds, viewerSessionID, i.now()), nil
}
