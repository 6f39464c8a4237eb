// Package booking implements booking finalization: converting a seat hold
// into a persisted booking.  A hold is advisory, not a lock, so the
// finalizer re-checks occupancy at commit time inside the same advisory-
// locked transaction that inserts the booking and consumes the hold.
package booking

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/viaroute/seat-reservation/internal/model"
	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
)

// Notifier publishes booking lifecycle and seat-map change events.
type Notifier interface {
	SeatMapChanged(ctx context.Context, tripID uint64) error
	BookingConfirmed(ctx context.Context, b model.Booking) error
}

// Passenger carries the ticket holder details captured at checkout.
type Passenger struct {
	Name string
}

// Finalizer converts holds into bookings and drives the append-only
// booking status transitions.
type Finalizer struct {
	db       *sql.DB
	holds    *repository.SeatHoldRepo
	bookings *repository.BookingRepo
	notifier Notifier
	now      func() time.Time
}

// NewFinalizer builds a Finalizer.  notifier may be nil and now may be
// nil (UTC wall clock).
func NewFinalizer(db *sql.DB, holds *repository.SeatHoldRepo, bookings *repository.BookingRepo, notifier Notifier, now func() time.Time) *Finalizer {
	if db == nil || holds == nil || bookings == nil {
		panic("nil dependency passed to NewFinalizer")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Finalizer{db: db, holds: holds, bookings: bookings, notifier: notifier, now: now}
}

// Finalize performs the held → consumed transition: it inserts a PENDING
// booking for the held segment and deletes the hold in the same
// transaction.
//
// The caller's hold must exist, be live and belong to the session, or
// ErrNotFound is returned.  Because a hold is advisory, the occupancy
// check runs again under the per-seat advisory lock: an overlapping
// PENDING/CONFIRMED booking or a live hold from another session fails the
// whole operation with ErrConflict and nothing is written.
func (f *Finalizer) Finalize(ctx context.Context, tripID, seatID uint64, seg segment.Segment, holdID uint64, sessionID string, originStopID, destinationStopID uint64, p Passenger) (*model.Booking, error) {
	if err := seg.Validate(); err != nil {
		return nil, err
	}
	now := f.now()

	release, err := repository.AcquireSeatLock(ctx, f.db, tripID, seatID)
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	holds, err := f.holds.LiveBySeatTx(ctx, tx, tripID, seatID, now)
	if err != nil {
		return nil, err
	}
	var consumed *model.SeatHold
	for i := range holds {
		if holds[i].ID == holdID && holds[i].SessionID == sessionID {
			consumed = &holds[i]
			break
		}
	}
	if consumed == nil {
		// absent, expired, or owned by someone else
		return nil, repository.ErrNotFound
	}
	if consumed.Segment() != seg {
		return nil, repository.ErrConflict
	}

	// commit-time re-check: the hold never excused us from this
	bookings, err := f.bookings.OccupyingBySeatTx(ctx, tx, tripID, seatID)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if seg.Overlaps(b.Segment()) {
			return nil, repository.ErrConflict
		}
	}
	for _, h := range holds {
		if h.ID != consumed.ID && h.SessionID != sessionID && seg.Overlaps(h.Segment()) {
			return nil, repository.ErrConflict
		}
	}

	b := &model.Booking{
		TripID:            tripID,
		SeatID:            seatID,
		OriginStopID:      originStopID,
		DestinationStopID: destinationStopID,
		OriginOrder:       seg.OriginOrder,
		DestinationOrder:  seg.DestinationOrder,
		SessionID:         sessionID,
		PassengerName:     p.Name,
		Status:            model.BookingStatusPending,
	}
	if err := f.bookings.CreateTx(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := f.holds.DeleteByIDTx(ctx, tx, consumed.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	f.notifySeatMapChanged(ctx, tripID)
	return b, nil
}

// Confirm transitions a booking PENDING → CONFIRMED (e.g. after payment
// capture) and publishes the booking.confirmed event.
func (f *Finalizer) Confirm(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	if err := f.bookings.UpdateStatus(ctx, bookingID, model.BookingStatusConfirmed, model.BookingStatusPending); err != nil {
		return nil, err
	}
	b, err := f.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if f.notifier != nil {
		if err := f.notifier.BookingConfirmed(ctx, *b); err != nil {
			log.Printf("finalizer: booking confirmed notification failed for booking %d: %v", b.ID, err)
		}
	}
	f.notifySeatMapChanged(ctx, b.TripID)
	return b, nil
}

// Cancel transitions a booking to CANCELLED, freeing its segment
// permanently.  Rows are never deleted; only the status moves.  The
// booking must belong to the calling session.
func (f *Finalizer) Cancel(ctx context.Context, bookingID uint64, sessionID string) error {
	b, err := f.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.SessionID != sessionID {
		return repository.ErrNotFound
	}
	if err := f.bookings.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled,
		model.BookingStatusPending, model.BookingStatusConfirmed); err != nil {
		return err
	}
	f.notifySeatMapChanged(ctx, b.TripID)
	return nil
}

func (f *Finalizer) notifySeatMapChanged(ctx context.Context, tripID uint64) {
	if f.notifier == nil {
		return
	}
	if err := f.notifier.SeatMapChanged(ctx, tripID); err != nil {
		log.Printf("finalizer: seat map notification failed for trip %d: %v", tripID, err)
	}
}
