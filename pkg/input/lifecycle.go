package input

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	bindErrors "github.com/go-drift/nativebind/pkg/errors"
	"github.com/go-drift/nativebind/pkg/platform"
)

// ErrDisposed is returned when a disposed input is asked to handle an event
// or to render.
var ErrDisposed = errors.New("input: disposed")

// ErrNoValue is returned when a change-event payload does not carry the
// bound value.
var ErrNoValue = errors.New("input: change detail has no value")

// State is the position of an Input in its mount lifecycle.
type State int32

const (
	// StateUnmounted is the initial state; the widget has not rendered yet.
	StateUnmounted State = iota
	// StateMounted means the widget rendered but the change handler is not
	// registered.
	StateMounted
	// StateRegistered means native change events reach the input.
	StateRegistered
	// StateDisposed is terminal.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounted:
		return "mounted"
	case StateRegistered:
		return "registered"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// State returns the current lifecycle state.
func (in *Input[T, D]) State() State {
	return State(in.state.Load())
}

// Token returns the live registration token, or the zero token.
func (in *Input[T, D]) Token() platform.RegistrationToken {
	in.lifeMu.Lock()
	defer in.lifeMu.Unlock()
	return in.token
}

// OnAfterRender is the framework's post-render hook. The first call mounts
// the input on widget; while mounted and not yet registered, each call tries
// to register the input for the widget's change event. Once registered,
// further calls do nothing.
//
// A registration error is returned as is and leaves the input mounted.
func (in *Input[T, D]) OnAfterRender(ctx context.Context, widget platform.WidgetHandle) error {
	in.lifeMu.Lock()
	defer in.lifeMu.Unlock()

	switch in.State() {
	case StateDisposed:
		return ErrDisposed
	case StateRegistered:
		return nil
	case StateUnmounted:
		in.widget.Store(widget.ViewID)
		in.state.Store(int32(StateMounted))
	case StateMounted:
		// A later render may carry a fresh handle after a failed attempt.
		if !widget.IsZero() {
			in.widget.Store(widget.ViewID)
		}
	}

	handle := platform.NewWidgetHandle(in.widget.Load())
	token, err := in.interop.Register(ctx, handle, in.event, in.callback, in)
	if err != nil {
		platform.Logger().Debug("input registration failed",
			zap.Stringer("widget", handle),
			zap.String("event", in.event),
			zap.Error(err))
		return err
	}
	in.token = token
	in.state.Store(int32(StateRegistered))
	platform.Logger().Debug("input registered",
		zap.Stringer("widget", handle),
		zap.String("event", in.event),
		zap.Stringer("token", token))
	return nil
}

// InvokeCallback implements platform.CallbackTarget. It decodes payload into
// a D and hands it to HandleChange.
func (in *Input[T, D]) InvokeCallback(name string, payload []byte) error {
	if name != in.callback {
		return fmt.Errorf("%w: %q", platform.ErrMethodNotFound, name)
	}
	detail, err := in.decode(payload)
	if err != nil {
		return &bindErrors.ParseError{
			Channel:  in.event,
			DataType: fmt.Sprintf("%T", detail),
			Got:      string(payload),
			Err:      err,
		}
	}
	return in.HandleChange(detail)
}

// HandleChange routes a widget change into the value pipeline. Errors from
// detail.Value are returned unchanged.
func (in *Input[T, D]) HandleChange(detail D) error {
	if in.State() == StateDisposed {
		return ErrDisposed
	}
	v, err := detail.Value()
	if err != nil {
		return err
	}
	in.set(v, fromWidget)
	return nil
}

// Dispose releases the change-event registration, if any. It is safe to
// call more than once and before the input was ever registered.
func (in *Input[T, D]) Dispose() {
	in.lifeMu.Lock()
	defer in.lifeMu.Unlock()

	if in.State() == StateDisposed {
		return
	}
	if !in.token.IsZero() {
		in.interop.Release(in.token)
		platform.Logger().Debug("input released", zap.Stringer("token", in.token))
		in.token = ""
	}
	in.state.Store(int32(StateDisposed))
}
