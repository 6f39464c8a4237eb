// Package repository contains data access logic for trips. A Trip is one
// departure of a bus along a route; all occupancy state is scoped to it.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/viaroute/seat-reservation/internal/model"
)

// ErrTripNotFound indicates that a trip was not located in the DB.
var ErrTripNotFound = errors.New("trip not found")

// TripRepo manages read access to trips.
type TripRepo struct {
	db *sql.DB
}

// NewTripRepo constructs a TripRepo with the given DB handle.
func NewTripRepo(db *sql.DB) *TripRepo {
	return &TripRepo{db: db}
}

// GetByID retrieves a trip by its id.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (*model.Trip, error) {
	const q = `SELECT id, route_id, bus_id, departs_at, status, created_at, updated_at
	           FROM trips WHERE id = ?`
	var t model.Trip
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&t.ID, &t.RouteID, &t.BusID, &t.DepartsAt, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return &t, nil
}
