// Package errors provides structured error handling for native bindings.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPlatform indicates a platform channel or native bridge error.
	KindPlatform
	// KindParsing indicates a change-event payload could not be decoded.
	KindParsing
	// KindRegistration indicates a native event handler could not be
	// registered or released.
	KindRegistration
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindParsing:
		return "parsing"
	case KindRegistration:
		return "registration"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// BindError represents a structured error raised while bridging a bound
// value to its native widget.
type BindError struct {
	// Op is the operation that failed (e.g., "input.OnAfterRender").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Channel is the platform channel name, if applicable.
	Channel string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BindError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("%s [%s] channel=%s: %v", e.Op, e.Kind, e.Channel, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "platform.invokeCallback").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ParseError represents a failure to extract a value from a change-event
// payload.
type ParseError struct {
	// Channel is the platform channel or event that carried the payload.
	Channel string
	// DataType is the expected type name.
	DataType string
	// Got is the actual data received.
	Got any
	// Err is the underlying decode error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to parse %s from %s: %v", e.DataType, e.Channel, e.Err)
	}
	return fmt.Sprintf("failed to parse %s from %s: got %T", e.DataType, e.Channel, e.Got)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors that have no caller to return to, such as
// failures while releasing a registration or while handling a dispatched
// native event.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *BindError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
