package platform

import (
	"context"
	"strconv"

	"github.com/google/uuid"
)

// WidgetHandle is an opaque reference to a rendered native widget. The
// rendering framework owns the widget; holders only borrow the handle.
type WidgetHandle struct {
	ViewID int64
}

// NewWidgetHandle returns the handle for the native view with the given ID.
func NewWidgetHandle(viewID int64) WidgetHandle {
	return WidgetHandle{ViewID: viewID}
}

// IsZero reports whether the handle refers to no widget.
func (h WidgetHandle) IsZero() bool {
	return h.ViewID == 0
}

func (h WidgetHandle) String() string {
	return "widget#" + strconv.FormatInt(h.ViewID, 10)
}

// RegistrationToken identifies one live subscription of a callback target
// to a widget event. It is returned by [Interop.Register] and must be passed
// to [Interop.Release] exactly once.
type RegistrationToken string

// NewRegistrationToken returns a fresh random token.
func NewRegistrationToken() RegistrationToken {
	return RegistrationToken(uuid.NewString())
}

// IsZero reports whether the token is empty.
func (t RegistrationToken) IsZero() bool {
	return t == ""
}

func (t RegistrationToken) String() string {
	return string(t)
}

// CallbackTarget receives callbacks from native code once registered.
type CallbackTarget interface {
	// InvokeCallback is called with the callback name given at registration
	// and the raw event payload.
	InvokeCallback(name string, payload []byte) error
}

// Interop subscribes callback targets to native widget events.
type Interop interface {
	// Register subscribes target to event on widget. Native code will call
	// back with the given callback name until the returned token is released.
	// Register blocks until the native side confirms or ctx ends.
	Register(ctx context.Context, widget WidgetHandle, event, callback string, target CallbackTarget) (RegistrationToken, error)

	// Release drops the subscription identified by token. Releasing an
	// unknown or empty token is a no-op.
	Release(token RegistrationToken)
}

// PropertySetter is implemented by interops that can write a value back to
// a native widget.
type PropertySetter interface {
	SetProperty(widget WidgetHandle, name string, value any) error
}
