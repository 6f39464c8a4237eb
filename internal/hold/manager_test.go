package hold

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, cfg Config) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	m := NewManager(db, repository.NewSeatHoldRepo(db), repository.NewBookingRepo(db), cfg, nil, func() time.Time { return testNow })
	return m, mock
}

func holdColumns() []string {
	return []string{"id", "trip_id", "seat_id", "origin_order", "destination_order", "session_id", "hold_token", "expires_at", "created_at"}
}

func bookingColumns() []string {
	return []string{"id", "trip_id", "seat_id", "origin_stop_id", "destination_stop_id", "origin_order", "destination_order", "session_id", "passenger_name", "status", "created_at", "updated_at"}
}

func expectLock(mock sqlmock.Sqlmock, key string) {
	mock.ExpectQuery("GET_LOCK").
		WithArgs(key, 5).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
}

func expectUnlock(mock sqlmock.Sqlmock, key string) {
	mock.ExpectExec("RELEASE_LOCK").
		WithArgs(key).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestPlaceSucceedsOnFreeSeat(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	expectLock(mock, "seat:7:11")
	expectLock(mock, "session:sess-a")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()))
	mock.ExpectQuery("FROM seat_holds").
		WillReturnRows(sqlmock.NewRows(holdColumns()))
	mock.ExpectExec("INSERT INTO seat_holds").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()
	expectUnlock(mock, "session:sess-a")
	expectUnlock(mock, "seat:7:11")

	h, err := m.Place(context.Background(), 7, 11, segment.Segment{OriginOrder: 0, DestinationOrder: 3}, "sess-a")
	if err != nil {
		t.Fatalf("place failed: %v", err)
	}
	if h.ID != 42 {
		t.Fatalf("hold id = %d, want 42", h.ID)
	}
	if want := testNow.Add(DefaultTTL); !h.ExpiresAt.Equal(want) {
		t.Fatalf("expires_at = %v, want %v", h.ExpiresAt, want)
	}
	if h.HoldToken == "" {
		t.Fatal("hold token must be populated")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaceConflictOnOverlappingBooking(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	expectLock(mock, "seat:7:11")
	expectLock(mock, "session:sess-a")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(1, 7, 11, 100, 102, 1, 4, "sess-b", "Ada", "CONFIRMED", testNow, testNow))
	mock.ExpectQuery("FROM seat_holds").
		WillReturnRows(sqlmock.NewRows(holdColumns()))
	mock.ExpectRollback()
	expectUnlock(mock, "session:sess-a")
	expectUnlock(mock, "seat:7:11")

	_, err := m.Place(context.Background(), 7, 11, segment.Segment{OriginOrder: 2, DestinationOrder: 5}, "sess-a")
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaceAdjacentToBookingSucceeds(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	expectLock(mock, "seat:7:11")
	expectLock(mock, "session:sess-a")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// booking [0,3) on the same seat; candidate [3,6) shares only the boundary
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(1, 7, 11, 100, 103, 0, 3, "sess-b", "Ada", "CONFIRMED", testNow, testNow))
	mock.ExpectQuery("FROM seat_holds").
		WillReturnRows(sqlmock.NewRows(holdColumns()))
	mock.ExpectExec("INSERT INTO seat_holds").
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectCommit()
	expectUnlock(mock, "session:sess-a")
	expectUnlock(mock, "seat:7:11")

	if _, err := m.Place(context.Background(), 7, 11, segment.Segment{OriginOrder: 3, DestinationOrder: 6}, "sess-a"); err != nil {
		t.Fatalf("adjacent segments must not conflict: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaceConflictOnForeignHoldButNotExpiredOne(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	// live foreign hold overlaps -> conflict
	expectLock(mock, "seat:7:11")
	expectLock(mock, "session:sess-a")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()))
	mock.ExpectQuery("FROM seat_holds").
		WillReturnRows(sqlmock.NewRows(holdColumns()).
			AddRow(5, 7, 11, 1, 4, "sess-b", "tok", testNow.Add(time.Minute), testNow))
	mock.ExpectRollback()
	expectUnlock(mock, "session:sess-a")
	expectUnlock(mock, "seat:7:11")

	_, err := m.Place(context.Background(), 7, 11, segment.Segment{OriginOrder: 2, DestinationOrder: 5}, "sess-a")
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// the repository filters expired holds at read time, so after expiry the
	// same placement succeeds with no cleanup write in between
	expectLock(mock, "seat:7:11")
	expectLock(mock, "session:sess-a")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()))
	mock.ExpectQuery("FROM seat_holds").
		WillReturnRows(sqlmock.NewRows(holdColumns()))
	mock.ExpectExec("INSERT INTO seat_holds").
		WillReturnResult(sqlmock.NewResult(44, 1))
	mock.ExpectCommit()
	expectUnlock(mock, "session:sess-a")
	expectUnlock(mock, "seat:7:11")

	if _, err := m.Place(context.Background(), 7, 11, segment.Segment{OriginOrder: 2, DestinationOrder: 5}, "sess-a"); err != nil {
		t.Fatalf("place after expiry failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaceEnforcesSessionCap(t *testing.T) {
	m, mock := newTestManager(t, Config{MaxSeats: 1})

	// the session lock must be acquired before the count runs and held
	// until after the rollback, so a second placement from the same
	// session cannot interleave between count and insert
	expectLock(mock, "seat:7:12")
	expectLock(mock, "session:sess-a")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	// session already holds one seat elsewhere
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()
	expectUnlock(mock, "session:sess-a")
	expectUnlock(mock, "seat:7:12")

	_, err := m.Place(context.Background(), 7, 12, segment.Segment{OriginOrder: 0, DestinationOrder: 2}, "sess-a")
	if !errors.Is(err, repository.ErrHoldLimitExceeded) {
		t.Fatalf("expected ErrHoldLimitExceeded, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaceAbortsWhenSessionLockTimesOut(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	expectLock(mock, "seat:7:11")
	mock.ExpectQuery("GET_LOCK").
		WithArgs("session:sess-a", 5).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(0))
	expectUnlock(mock, "seat:7:11")

	_, err := m.Place(context.Background(), 7, 11, segment.Segment{OriginOrder: 0, DestinationOrder: 3}, "sess-a")
	if !errors.Is(err, repository.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPlaceRejectsInvalidSegmentWithoutTouchingStore(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	_, err := m.Place(context.Background(), 7, 11, segment.Segment{OriginOrder: 3, DestinationOrder: 3}, "sess-a")
	if !errors.Is(err, segment.ErrInvalidSegment) {
		t.Fatalf("expected ErrInvalidSegment, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store must not be touched: %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	// first release removes the hold
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WithArgs(uint64(7), uint64(11), "sess-a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// second release finds nothing and still succeeds
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM seat_holds").
		WithArgs(uint64(7), uint64(11), "sess-a").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	n, err := m.Release(context.Background(), 7, 11, "sess-a")
	if err != nil || n != 1 {
		t.Fatalf("first release: n=%d err=%v", n, err)
	}
	n, err = m.Release(context.Background(), 7, 11, "sess-a")
	if err != nil || n != 0 {
		t.Fatalf("second release must be a no-op: n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExtendMissingHoldIsNotFound(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := m.Extend(context.Background(), 7, 11, "sess-a")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestExtendPushesExpiryForward(t *testing.T) {
	m, mock := newTestManager(t, Config{TTL: 10 * time.Minute})

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expiresAt, err := m.Extend(context.Background(), 7, 11, "sess-a")
	if err != nil {
		t.Fatalf("extend failed: %v", err)
	}
	if want := testNow.Add(10 * time.Minute); !expiresAt.Equal(want) {
		t.Fatalf("expires_at = %v, want %v", expiresAt, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSweepExpiredReportsDeletedRows(t *testing.T) {
	m, mock := newTestManager(t, Config{})

	mock.ExpectExec("DELETE FROM seat_holds").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := m.SweepExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("swept %d rows, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
