package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// lockTimeout bounds how long a writer waits for a named advisory lock.
const lockTimeout = 5 * time.Second

// AcquireSeatLock takes the MySQL named advisory lock for (trip, seat).
// Every mutation of a seat's occupancy timeline (hold placement, booking
// finalization) must run while holding this lock, which makes the
// check-and-insert atomic across concurrent sessions: two overlapping
// placement attempts serialize here instead of racing between the overlap
// check and the insert.
func AcquireSeatLock(ctx context.Context, db *sql.DB, tripID, seatID uint64) (release func(), err error) {
	return acquireNamedLock(ctx, db, fmt.Sprintf("seat:%d:%d", tripID, seatID))
}

// AcquireSessionLock takes the advisory lock for one checkout session.
// The hold manager holds it across the cap count and the insert, so two
// concurrent placements from the same session on different seats cannot
// both observe a count below the cap.
func AcquireSessionLock(ctx context.Context, db *sql.DB, sessionID string) (release func(), err error) {
	return acquireNamedLock(ctx, db, "session:"+sessionID)
}

// acquireNamedLock takes a MySQL GET_LOCK by name.  The lock lives on its
// own pooled connection rather than the caller's transaction, so it is
// held across the whole transaction and released even when the transaction
// rolls back.  The returned release function must always be called; it is
// safe to call after a failed transaction.
func acquireNamedLock(ctx context.Context, db *sql.DB, key string) (release func(), err error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("advisory lock: %w: %v", ErrUpstream, err)
	}

	var got sql.NullInt64
	err = conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, key, int(lockTimeout/time.Second)).Scan(&got)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("advisory lock: %w: %v", ErrUpstream, err)
	}
	if !got.Valid || got.Int64 != 1 {
		// timed out waiting for a competing writer
		conn.Close()
		return nil, fmt.Errorf("advisory lock %s: %w", key, ErrUpstream)
	}

	return func() {
		// DO discards the result; the lock also dies with the connection.
		_, _ = conn.ExecContext(context.Background(), `DO RELEASE_LOCK(?)`, key)
		conn.Close()
	}, nil
}
