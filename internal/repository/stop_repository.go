// Package repository contains data access logic for the reservation core.
// This file defines the StopRepo, the read-only catalog of route stops.
// Stop ordering is the foundation of the segment algebra: every journey is
// expressed as a half-open interval over stop_order values.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/viaroute/seat-reservation/internal/model"
)

// ErrStopNotFound indicates that a stop lookup yielded no rows.
var ErrStopNotFound = errors.New("stop not found")

// StopRepo provides read access to the stops catalog.  The catalog is
// owned by an external system; this repository never writes to it.
type StopRepo struct {
	db *sql.DB
}

// NewStopRepo constructs a StopRepo with the given DB handle.
func NewStopRepo(db *sql.DB) *StopRepo {
	return &StopRepo{db: db}
}

// GetByRoute retrieves all stops of a route ordered by stop_order.
func (r *StopRepo) GetByRoute(ctx context.Context, routeID uint64) ([]model.Stop, error) {
	const q = `SELECT id, route_id, name, stop_order, created_at
	           FROM stops
	           WHERE route_id = ?
	           ORDER BY stop_order`
	rows, err := r.db.QueryContext(ctx, q, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Stop
	for rows.Next() {
		var s model.Stop
		if err := rows.Scan(&s.ID, &s.RouteID, &s.Name, &s.StopOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetOrder resolves a stop id on a route to its stop_order.  Returns
// ErrStopNotFound when the stop does not exist or belongs to another route.
func (r *StopRepo) GetOrder(ctx context.Context, routeID, stopID uint64) (uint32, error) {
	const q = `SELECT stop_order FROM stops WHERE id = ? AND route_id = ?`
	var order uint32
	err := r.db.QueryRowContext(ctx, q, stopID, routeID).Scan(&order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrStopNotFound
		}
		return 0, err
	}
	return order, nil
}
