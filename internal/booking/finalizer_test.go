package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/viaroute/seat-reservation/internal/model"
	"github.com/viaroute/seat-reservation/internal/repository"
	"github.com/viaroute/seat-reservation/internal/segment"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestFinalizer(t *testing.T) (*Finalizer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	f := NewFinalizer(db, repository.NewSeatHoldRepo(db), repository.NewBookingRepo(db), nil, func() time.Time { return testNow })
	return f, mock
}

func holdColumns() []string {
	return []string{"id", "trip_id", "seat_id", "origin_order", "destination_order", "session_id", "hold_token", "expires_at", "created_at"}
}

func bookingColumns() []string {
	return []string{"id", "trip_id", "seat_id", "origin_stop_id", "destination_stop_id", "origin_order", "destination_order", "session_id", "passenger_name", "status", "created_at", "updated_at"}
}

func expectSeatLockCycle(mock sqlmock.Sqlmock, body func()) {
	mock.ExpectQuery("GET_LOCK").
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	body()
	mock.ExpectExec("RELEASE_LOCK").
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestFinalizeConsumesHoldAndInsertsPendingBooking(t *testing.T) {
	f, mock := newTestFinalizer(t)

	expectSeatLockCycle(mock, func() {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM seat_holds").
			WillReturnRows(sqlmock.NewRows(holdColumns()).
				AddRow(9, 7, 11, 0, 3, "sess-a", "tok", testNow.Add(time.Minute), testNow))
		mock.ExpectQuery("FROM bookings").
			WillReturnRows(sqlmock.NewRows(bookingColumns()))
		mock.ExpectExec("INSERT INTO bookings").
			WillReturnResult(sqlmock.NewResult(71, 1))
		mock.ExpectExec("DELETE FROM seat_holds").
			WithArgs(uint64(9)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	})

	b, err := f.Finalize(context.Background(), 7, 11, segment.Segment{OriginOrder: 0, DestinationOrder: 3}, 9, "sess-a", 100, 103, Passenger{Name: "Ada"})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if b.ID != 71 {
		t.Fatalf("booking id = %d, want 71", b.ID)
	}
	if b.Status != model.BookingStatusPending {
		t.Fatalf("status = %s, want PENDING", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFinalizeMissingOrExpiredHoldIsNotFound(t *testing.T) {
	f, mock := newTestFinalizer(t)

	expectSeatLockCycle(mock, func() {
		mock.ExpectBegin()
		// live-holds read returns nothing: the hold expired or never existed
		mock.ExpectQuery("FROM seat_holds").
			WillReturnRows(sqlmock.NewRows(holdColumns()))
		mock.ExpectRollback()
	})

	_, err := f.Finalize(context.Background(), 7, 11, segment.Segment{OriginOrder: 0, DestinationOrder: 3}, 9, "sess-a", 100, 103, Passenger{Name: "Ada"})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFinalizeConflictsWithCommittedBooking(t *testing.T) {
	f, mock := newTestFinalizer(t)

	// the hold is advisory: a booking landed in the meantime and wins
	expectSeatLockCycle(mock, func() {
		mock.ExpectBegin()
		mock.ExpectQuery("FROM seat_holds").
			WillReturnRows(sqlmock.NewRows(holdColumns()).
				AddRow(9, 7, 11, 0, 3, "sess-a", "tok", testNow.Add(time.Minute), testNow))
		mock.ExpectQuery("FROM bookings").
			WillReturnRows(sqlmock.NewRows(bookingColumns()).
				AddRow(1, 7, 11, 100, 102, 2, 4, "sess-b", "Grace", "PENDING", testNow, testNow))
		mock.ExpectRollback()
	})

	_, err := f.Finalize(context.Background(), 7, 11, segment.Segment{OriginOrder: 0, DestinationOrder: 3}, 9, "sess-a", 100, 103, Passenger{Name: "Ada"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfirmTransitionsPendingBooking(t *testing.T) {
	f, mock := newTestFinalizer(t)

	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(71, 7, 11, 100, 103, 0, 3, "sess-a", "Ada", "CONFIRMED", testNow, testNow))

	b, err := f.Confirm(context.Background(), 71)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if b.Status != model.BookingStatusConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", b.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelRejectsForeignSession(t *testing.T) {
	f, mock := newTestFinalizer(t)

	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(71, 7, 11, 100, 103, 0, 3, "sess-a", "Ada", "PENDING", testNow, testNow))

	err := f.Cancel(context.Background(), 71, "sess-b")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign session, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCancelledBookingCannotBeCancelledAgain(t *testing.T) {
	f, mock := newTestFinalizer(t)

	mock.ExpectQuery("FROM bookings").
		WillReturnRows(sqlmock.NewRows(bookingColumns()).
			AddRow(71, 7, 11, 100, 103, 0, 3, "sess-a", "Ada", "CANCELLED", testNow, testNow))
	// compare-and-swap touches no rows, repo re-reads the status
	mock.ExpectExec("UPDATE bookings").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("CANCELLED"))

	err := f.Cancel(context.Background(), 71, "sess-a")
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
