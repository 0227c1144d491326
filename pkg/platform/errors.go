package platform

import "errors"

// ErrRegistrationCanceled is returned when a registration round trip is
// abandoned because its context ended first.
var ErrRegistrationCanceled = errors.New("platform: registration canceled")

// ErrMissingDetail is returned when native code delivers a widget event
// without a detail payload.
var ErrMissingDetail = errors.New("platform: event has no detail")

// ErrCallbackPanicked wraps the panic value of a callback target that ran
// inline on the native caller's goroutine.
var ErrCallbackPanicked = errors.New("platform: callback panicked")
