package model

import "time"

// Seat describes a physical seat in a bus.  Seats are uniquely identified
// by their bus, row number and column number.  A bus layout is immutable
// once published; deactivation is the only mutation.  A deactivated seat
// is excluded from future holds and bookings but historical bookings on it
// remain untouched.
//
// Fields:
//  ID           – primary key identifier.
//  BusID        – bus to which this seat belongs.
//  RowNumber    – row of the seat within the bus (1-based).
//  ColumnNumber – column of the seat within the row (1-based).
//  IsActive     – whether the seat may still be sold.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Seat struct {
	ID           uint64    // seats.id
	BusID        uint64    // seats.bus_id
	RowNumber    uint32    // seats.row_no
	ColumnNumber uint32    // seats.col_no
	IsActive     bool      // seats.is_active
	CreatedAt    time.Time // seats.created_at
	UpdatedAt    time.Time // seats.updated_at
}
