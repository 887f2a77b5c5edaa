package domain

import "errors"

// Log validation failures. A DutyStatusLog never stores a record that
// triggers one of these, so calculators may assume a well-formed sequence.
var (
	ErrEmptyDriver      = errors.New("driver id must not be empty")
	ErrInvalidStatus    = errors.New("invalid duty status")
	ErrInvalidRange     = errors.New("interval end must be after start")
	ErrNonContiguous    = errors.New("interval does not start where the previous one ends")
	ErrOverlap          = errors.New("interval overlaps the existing log")
	ErrOpenInterval     = errors.New("log already has an open interval")
	ErrNoOpenInterval   = errors.New("log has no open interval")
	ErrIntervalNotFound = errors.New("interval not found")
	ErrUnchangedStatus  = errors.New("status is already active")
	ErrEventOutOfOrder  = errors.New("event sequence out of order")
	ErrDriverMismatch   = errors.New("event belongs to another driver")
)

// ErrAsOfOutOfRange is a caller precondition failure: the query instant
// precedes the log (or the open interval) it is evaluated against.
var ErrAsOfOutOfRange = errors.New("as-of instant is before the log start")

// ErrConcurrentAppend is returned by repositories when another writer
// appended to the same driver's log first.
var ErrConcurrentAppend = errors.New("concurrent append to duty log")
