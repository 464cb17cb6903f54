package session

import "errors"

var (
	// ErrStreamOrdering is returned when an append carries a timestamp at
	// or before the last accepted one for its stream. The event is dropped
	// and the log is left unchanged.
	ErrStreamOrdering = errors.New("stream ordering violation")

	// ErrNotFound is returned when mutating or deleting an unknown question.
	ErrNotFound = errors.New("question not found")

	// ErrValidation is returned when input is rejected before any mutation,
	// such as empty question content or an unknown language code.
	ErrValidation = errors.New("validation failed")

	// ErrProducerUnavailable marks a producer that reported a failure and
	// halted. Recovery requires an explicit user-initiated restart.
	ErrProducerUnavailable = errors.New("producer unavailable")

	// ErrAlreadyArmed is returned when voice capture is armed while a
	// previous arm is still pending.
	ErrAlreadyArmed = errors.New("voice capture already armed")
)
