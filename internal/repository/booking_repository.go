// Package repository contains data access logic for bookings. Booking rows
// are append-only: status transitions replace physical deletion, so the
// occupancy history of every seat survives cancellation.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/viaroute/seat-reservation/internal/model"
)

// ErrBookingNotFound indicates that a booking was not located in the DB.
var ErrBookingNotFound = errors.New("booking not found")

// BookingRepo encapsulates database operations for bookings.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo given a DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, trip_id, seat_id, origin_stop_id, destination_stop_id,
	origin_order, destination_order, session_id, passenger_name, status, created_at, updated_at`

func scanBooking(scan func(...interface{}) error) (model.Booking, error) {
	var b model.Booking
	err := scan(
		&b.ID, &b.TripID, &b.SeatID, &b.OriginStopID, &b.DestinationStopID,
		&b.OriginOrder, &b.DestinationOrder, &b.SessionID, &b.PassengerName,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// OccupyingBySeatTx retrieves all bookings on (trip, seat) that participate
// in occupancy checks, i.e. whose status is PENDING or CONFIRMED.  The
// query runs inside the provided transaction so that the hold manager and
// the finalizer observe a state consistent with their advisory lock.
func (r *BookingRepo) OccupyingBySeatTx(ctx context.Context, tx *sql.Tx, tripID, seatID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE trip_id = ? AND seat_id = ? AND status IN ('PENDING', 'CONFIRMED')`
	rows, err := tx.QueryContext(ctx, q, tripID, seatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// OccupyingBySeat is the non-transactional variant of OccupyingBySeatTx,
// used by seat-map reads which are eventually-consistent snapshots.
func (r *BookingRepo) OccupyingBySeat(ctx context.Context, tripID, seatID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE trip_id = ? AND seat_id = ? AND status IN ('PENDING', 'CONFIRMED')`
	rows, err := r.db.QueryContext(ctx, q, tripID, seatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// OccupyingByTrip retrieves every occupancy-relevant booking for a trip in
// one query, keyed by seat.  Seat-map rendering uses this to avoid one
// round trip per seat.
func (r *BookingRepo) OccupyingByTrip(ctx context.Context, tripID uint64) (map[uint64][]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE trip_id = ? AND status IN ('PENDING', 'CONFIRMED')`
	rows, err := r.db.QueryContext(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[uint64][]model.Booking)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		result[b.SeatID] = append(result[b.SeatID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateTx inserts a new booking inside the provided transaction.  On
// success the booking's ID is populated.  The caller must commit or roll
// back the transaction.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
	           (trip_id, seat_id, origin_stop_id, destination_stop_id, origin_order, destination_order, session_id, passenger_name, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.TripID, b.SeatID, b.OriginStopID, b.DestinationStopID,
		b.OriginOrder, b.DestinationOrder, b.SessionID, b.PassengerName, b.Status,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID retrieves a booking by its id.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateStatus performs an append-only lifecycle transition.  The fromStatuses
// guard makes the transition a compare-and-swap: when the booking is not in
// one of the expected states the update affects no rows and ErrConflict is
// returned, when the booking does not exist at all ErrBookingNotFound is
// returned.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, toStatus string, fromStatuses ...string) error {
	if len(fromStatuses) == 0 {
		return errors.New("at least one from-status is required")
	}
	q := `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status IN (`
	args := make([]interface{}, 0, len(fromStatuses)+2)
	args = append(args, toStatus, id)
	for i, s := range fromStatuses {
		if i > 0 {
			q += ","
		}
		q += "?"
		args = append(args, s)
	}
	q += ")"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish missing booking from wrong state
		var status string
		err := r.db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// ListBySession returns all bookings created by the given checkout session,
// newest first.
func (r *BookingRepo) ListBySession(ctx context.Context, sessionID string) ([]model.Booking, error) {
	const q = `SELECT ` + bookingColumns + `
	           FROM bookings
	           WHERE session_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
