package services

import "errors"

var (
	// ErrEventNotFound means the referenced event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrRecordNotFound means no distribution record exists for the event.
	ErrRecordNotFound = errors.New("distribution record not found")

	// ErrEventNotFinished means the event is not yet eligible for
	// settlement.
	ErrEventNotFinished = errors.New("event has not finished")

	// ErrAlreadyDistributed means a record already exists for the event.
	// Under concurrent triggers this is an expected outcome, not a fault.
	ErrAlreadyDistributed = errors.New("revenue already distributed for event")

	// ErrStore wraps transient storage failures; the next sweep retries.
	ErrStore = errors.New("distribution store failure")

	// ErrComputation wraps unexpected aggregation results, e.g. negative
	// revenue or a percentage outside [0,100].
	ErrComputation = errors.New("distribution computation failed")
)
