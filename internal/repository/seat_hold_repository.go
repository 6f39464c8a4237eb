package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/viaroute/seat-reservation/internal/model"
)

// SeatHoldRepo provides data access to the seat_holds table.  It is
// responsible for creating, listing and deleting seat holds.  All methods
// behave with respect to UTC timestamps; callers must ensure that
// expiration comparisons are performed in UTC.
//
// Expiry is lazy: every read filters on expires_at > now, so a hold past
// its expiry instant is invisible without any write having occurred.
// SweepExpired deletes stale rows for storage hygiene only; correctness
// never depends on it.
type SeatHoldRepo struct {
	db *sql.DB
}

// NewSeatHoldRepo returns a new SeatHoldRepo bound to the provided database.
func NewSeatHoldRepo(db *sql.DB) *SeatHoldRepo { return &SeatHoldRepo{db: db} }

const seatHoldColumns = `id, trip_id, seat_id, origin_order, destination_order, session_id, hold_token, expires_at, created_at`

func scanSeatHold(scan func(...interface{}) error) (model.SeatHold, error) {
	var h model.SeatHold
	err := scan(
		&h.ID, &h.TripID, &h.SeatID, &h.OriginOrder, &h.DestinationOrder,
		&h.SessionID, &h.HoldToken, &h.ExpiresAt, &h.CreatedAt,
	)
	return h, err
}

// LiveBySeatTx retrieves all non-expired holds for (trip, seat) within the
// provided transaction.  Used by the hold manager and the finalizer while
// they hold the per-seat advisory lock.
func (r *SeatHoldRepo) LiveBySeatTx(ctx context.Context, tx *sql.Tx, tripID, seatID uint64, now time.Time) ([]model.SeatHold, error) {
	const q = `SELECT ` + seatHoldColumns + `
	           FROM seat_holds
	           WHERE trip_id = ? AND seat_id = ? AND expires_at > ?`
	rows, err := tx.QueryContext(ctx, q, tripID, seatID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []model.SeatHold
	for rows.Next() {
		h, err := scanSeatHold(rows.Scan)
		if err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}

// LiveBySeat is the non-transactional variant of LiveBySeatTx, used by
// seat-map reads which are eventually-consistent snapshots.
func (r *SeatHoldRepo) LiveBySeat(ctx context.Context, tripID, seatID uint64, now time.Time) ([]model.SeatHold, error) {
	const q = `SELECT ` + seatHoldColumns + `
	           FROM seat_holds
	           WHERE trip_id = ? AND seat_id = ? AND expires_at > ?`
	rows, err := r.db.QueryContext(ctx, q, tripID, seatID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []model.SeatHold
	for rows.Next() {
		h, err := scanSeatHold(rows.Scan)
		if err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}

// LiveByTrip retrieves every non-expired hold for a trip in one query,
// keyed by seat.  Seat-map rendering uses this to avoid one round trip
// per seat.
func (r *SeatHoldRepo) LiveByTrip(ctx context.Context, tripID uint64, now time.Time) (map[uint64][]model.SeatHold, error) {
	const q = `SELECT ` + seatHoldColumns + `
	           FROM seat_holds
	           WHERE trip_id = ? AND expires_at > ?`
	rows, err := r.db.QueryContext(ctx, q, tripID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holds := make(map[uint64][]model.SeatHold)
	for rows.Next() {
		h, err := scanSeatHold(rows.Scan)
		if err != nil {
			return nil, err
		}
		holds[h.SeatID] = append(holds[h.SeatID], h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}

// CountLiveBySessionTx counts the session's non-expired holds across all
// trips.  The hold manager uses this inside its transaction to enforce
// the per-session seat cap.
func (r *SeatHoldRepo) CountLiveBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string, now time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM seat_holds WHERE session_id = ? AND expires_at > ?`
	var n int
	if err := tx.QueryRowContext(ctx, q, sessionID, now.UTC()).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateTx inserts a seat hold within the provided transaction.  On
// success the hold's ID is populated.  The caller is responsible for
// committing or rolling back the transaction.
func (r *SeatHoldRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.SeatHold) error {
	const q = `INSERT INTO seat_holds
	           (trip_id, seat_id, origin_order, destination_order, session_id, hold_token, expires_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		h.TripID, h.SeatID, h.OriginOrder, h.DestinationOrder,
		h.SessionID, h.HoldToken, h.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// DeleteBySeatAndSessionTx removes the session's holds on (trip, seat) and
// returns the number of rows removed.  Zero rows is not an error: release
// is idempotent and an absent hold is treated as already released.
func (r *SeatHoldRepo) DeleteBySeatAndSessionTx(ctx context.Context, tx *sql.Tx, tripID, seatID uint64, sessionID string) (int64, error) {
	const q = `DELETE FROM seat_holds WHERE trip_id = ? AND seat_id = ? AND session_id = ?`
	res, err := tx.ExecContext(ctx, q, tripID, seatID, sessionID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteByIDTx removes a single hold by primary key.  The finalizer calls
// this in the same transaction that inserts the booking so the hold is
// consumed atomically.
func (r *SeatHoldRepo) DeleteByIDTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM seat_holds WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// ExtendTx pushes the expiry of the session's live hold on (trip, seat)
// forward.  Unlike release, extending an absent or already expired hold is
// a hard error: the update touches no rows and ErrNotFound is returned.
func (r *SeatHoldRepo) ExtendTx(ctx context.Context, tx *sql.Tx, tripID, seatID uint64, sessionID string, expiresAt, now time.Time) error {
	const q = `UPDATE seat_holds SET expires_at = ?
	           WHERE trip_id = ? AND seat_id = ? AND session_id = ? AND expires_at > ?`
	res, err := tx.ExecContext(ctx, q,
		expiresAt.UTC().Format("2006-01-02 15:04:05"),
		tripID, seatID, sessionID, now.UTC(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SweepExpired deletes holds whose expiry has passed.  The sweep exists for
// storage hygiene only; reads already ignore expired rows.
func (r *SeatHoldRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM seat_holds WHERE expires_at <= ?`
	res, err := r.db.ExecContext(ctx, q, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// randomToken generates a random hexadecimal string of length n*2 bytes.
// It is used to populate the hold_token column.  The underlying call to
// crypto/rand ensures cryptographically secure random bytes.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewHoldToken returns an opaque correlation token for a fresh hold.
func NewHoldToken() (string, error) { return randomToken(32) }
