// Package repository defines error types that are reused across multiple
// repositories and by the services built on top of them. These sentinel
// values allow higher layers such as handlers to distinguish between
// different failure scenarios and map them onto HTTP status codes.
package repository

import "errors"

// ErrConflict is returned when a requested segment is no longer free: an
// overlapping booking or a live hold from another session already claims
// part of it. Recoverable by refreshing the seat map and re-selecting.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrHoldLimitExceeded is returned when a session attempts to hold more
// seats than its cap allows. Recoverable by releasing another hold first.
// Handlers should translate this into an HTTP 422 response.
var ErrHoldLimitExceeded = errors.New("hold limit exceeded")

// ErrNotFound is returned when an operation references a hold, seat, trip
// or booking that does not exist. Releasing an absent hold is treated as
// success by the hold manager; everywhere else this is a hard error and
// handlers should translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrUpstream is returned when the backing store or the notification
// channel is unavailable. The core never retries automatically; retry
// policy belongs to the caller. Handlers should translate this into an
// HTTP 503 response.
var ErrUpstream = errors.New("upstream unavailable")
