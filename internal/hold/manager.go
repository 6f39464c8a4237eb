// Package hold implements the seat hold lifecycle.  The Manager is the
// only component that creates or removes seat_holds rows; it owns the
// state machine none → held → {released, expired, consumed}.  Released is
// an explicit deletion, expired is passive (reads treat a past-expiry row
// as absent), and consumed happens inside the booking finalizer's
// transaction.
package hold

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/viaroute/seat-reservation/internal/model"
	"github.com/viaroute/seat-reservation/internal/occupancy"
	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
)

// DefaultTTL is how long a fresh hold lives before lazy expiry.
const DefaultTTL = 10 * time.Minute

// DefaultMaxSeats caps how many live holds one session may own at once.
const DefaultMaxSeats = 1

// Notifier publishes seat-map change notifications keyed by trip.
// Delivery is at-least-once and consumers recompute idempotently, so the
// manager treats publish failures as non-fatal and only logs them.
type Notifier interface {
	SeatMapChanged(ctx context.Context, tripID uint64) error
}

// Config tunes the manager.  Zero values fall back to the defaults above.
type Config struct {
	TTL      time.Duration // hold lifetime
	MaxSeats int           // live holds allowed per session
}

// Manager coordinates atomic hold placement against the shared store.
type Manager struct {
	db       *sql.DB
	holds    *repository.SeatHoldRepo
	bookings *repository.BookingRepo
	ttl      time.Duration
	maxSeats int
	notifier Notifier
	now      func() time.Time
}

// NewManager builds a Manager.  notifier may be nil (notifications are
// skipped) and now may be nil (UTC wall clock).
func NewManager(db *sql.DB, holds *repository.SeatHoldRepo, bookings *repository.BookingRepo, cfg Config, notifier Notifier, now func() time.Time) *Manager {
	if db == nil || holds == nil || bookings == nil {
		panic("nil dependency passed to NewManager")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSeats <= 0 {
		cfg.MaxSeats = DefaultMaxSeats
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{
		db:       db,
		holds:    holds,
		bookings: bookings,
		ttl:      cfg.TTL,
		maxSeats: cfg.MaxSeats,
		notifier: notifier,
		now:      now,
	}
}

// TTL exposes the configured hold lifetime, e.g. for response payloads.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Place attempts the none → held transition for (trip, seat, session).
//
// The whole operation is one transaction executed under the per-seat
// advisory lock, so the overlap check and the insert cannot interleave
// with a competing writer.  Any overlapping PENDING/CONFIRMED booking or
// live hold from another session fails the precondition with ErrConflict
// and nothing is written.  A live hold from the same session on the same
// seat is replaced rather than duplicated: re-selecting a different
// segment supersedes the previous selection.
//
// The session cap is enforced under a per-session advisory lock held
// across the count and the insert: when the session already owns maxSeats
// live holds on other seats, Place returns ErrHoldLimitExceeded without
// writing, and two concurrent placements from one session on different
// seats cannot both slip under the cap.  The seat lock is always taken
// before the session lock so placements never deadlock.
func (m *Manager) Place(ctx context.Context, tripID, seatID uint64, seg segment.Segment, sessionID string) (*model.SeatHold, error) {
	if err := seg.Validate(); err != nil {
		return nil, err
	}
	now := m.now()

	release, err := repository.AcquireSeatLock(ctx, m.db, tripID, seatID)
	if err != nil {
		return nil, err
	}
	defer release()

	releaseSession, err := repository.AcquireSessionLock(ctx, m.db, sessionID)
	if err != nil {
		return nil, err
	}
	defer releaseSession()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// supersede the session's previous selection of this seat
	if _, err := m.holds.DeleteBySeatAndSessionTx(ctx, tx, tripID, seatID, sessionID); err != nil {
		return nil, err
	}

	count, err := m.holds.CountLiveBySessionTx(ctx, tx, sessionID, now)
	if err != nil {
		return nil, err
	}
	if count >= m.maxSeats {
		return nil, repository.ErrHoldLimitExceeded
	}

	bookings, err := m.bookings.OccupyingBySeatTx(ctx, tx, tripID, seatID)
	if err != nil {
		return nil, err
	}
	holds, err := m.holds.LiveBySeatTx(ctx, tx, tripID, seatID, now)
	if err != nil {
		return nil, err
	}
	switch occupancy.Classify(seg, bookings, holds, sessionID, now) {
	case occupancy.StatusFree:
		// precondition holds
	default:
		return nil, repository.ErrConflict
	}

	token, err := repository.NewHoldToken()
	if err != nil {
		return nil, err
	}
	h := &model.SeatHold{
		TripID:           tripID,
		SeatID:           seatID,
		OriginOrder:      seg.OriginOrder,
		DestinationOrder: seg.DestinationOrder,
		SessionID:        sessionID,
		HoldToken:        token,
		ExpiresAt:        now.Add(m.ttl),
		CreatedAt:        now,
	}
	if err := m.holds.CreateTx(ctx, tx, h); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	m.notifySeatMapChanged(ctx, tripID)
	return h, nil
}

// Release performs the held → released transition.  It deletes the
// session's holds on (trip, seat) and reports how many rows were removed.
// Releasing an absent hold is a no-op, not an error.
func (m *Manager) Release(ctx context.Context, tripID, seatID uint64, sessionID string) (int64, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	n, err := m.holds.DeleteBySeatAndSessionTx(ctx, tx, tripID, seatID, sessionID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true

	if n > 0 {
		m.notifySeatMapChanged(ctx, tripID)
	}
	return n, nil
}

// Extend pushes the expiry of a live hold forward by the configured TTL.
// Unlike Release, extending an absent or expired hold is a hard error:
// ErrNotFound is returned and nothing is written.
func (m *Manager) Extend(ctx context.Context, tripID, seatID uint64, sessionID string) (time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := m.holds.ExtendTx(ctx, tx, tripID, seatID, sessionID, expiresAt, now); err != nil {
		return time.Time{}, err
	}
	if err := tx.Commit(); err != nil {
		return time.Time{}, err
	}
	committed = true
	return expiresAt, nil
}

// SweepExpired deletes holds past their expiry.  Purely storage hygiene:
// reads already ignore expired rows, so correctness never depends on the
// sweep running.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	return m.holds.SweepExpired(ctx, m.now())
}

// RunSweeper runs SweepExpired on the given interval until the context is
// cancelled.  Intended to be launched as a goroutine from main.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := m.SweepExpired(ctx); err != nil {
				log.Printf("hold-sweeper: sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("hold-sweeper: removed %d expired holds", n)
			}
		}
	}
}

func (m *Manager) notifySeatMapChanged(ctx context.Context, tripID uint64) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.SeatMapChanged(ctx, tripID); err != nil {
		log.Printf("hold-manager: seat map notification failed for trip %d: %v", tripID, err)
	}
}
