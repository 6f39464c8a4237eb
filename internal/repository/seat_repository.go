package repository // repository defines data access for seats

import (
	"context"      // context allows query cancellation and timeouts
	"database/sql" // sql provides DB primitives
	"errors"       // errors for sentinel definitions

	"github.com/viaroute/seat-reservation/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with seats in the database.  A bus
// layout is published once and never restructured; the only mutation this
// repository exposes is deactivation.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// CreateBulk inserts multiple seats in a single statement.  Used when a
// bus layout is first published.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (bus_id, row_no, col_no, is_active) VALUES `
	args := make([]interface{}, 0, len(seats)*4)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, seat.BusID, seat.RowNumber, seat.ColumnNumber, seat.IsActive)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// GetByBus retrieves all seats of a bus ordered by row then column.
func (r *SeatRepo) GetByBus(ctx context.Context, busID uint64) ([]model.Seat, error) {
	const q = `SELECT id, bus_id, row_no, col_no, is_active, created_at, updated_at
	           FROM seats
	           WHERE bus_id = ?
	           ORDER BY row_no, col_no`
	rows, err := r.db.QueryContext(ctx, q, busID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(
			&s.ID, &s.BusID, &s.RowNumber, &s.ColumnNumber,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, bus_id, row_no, col_no, is_active, created_at, updated_at
	           FROM seats WHERE id = ?`
	var s model.Seat
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&s.ID, &s.BusID, &s.RowNumber, &s.ColumnNumber, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Deactivate soft-disables a seat.  Future holds and bookings must exclude
// it; historical bookings stay untouched.  Returns ErrSeatNotFound when the
// seat does not exist.
func (r *SeatRepo) Deactivate(ctx context.Context, id uint64) error {
	const q = `UPDATE seats SET is_active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatNotFound
	}
	return nil
}
