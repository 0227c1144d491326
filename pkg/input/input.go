package input

import (
	"sync"
	"sync/atomic"

	"github.com/go-drift/nativebind/pkg/config"
	"github.com/go-drift/nativebind/pkg/errors"
	"github.com/go-drift/nativebind/pkg/platform"
	"github.com/go-drift/nativebind/pkg/validation"
)

// Attributes are extra widget attributes passed through to the renderer
// untouched.
type Attributes map[string]any

// Options configure an Input once, at construction.
type Options[T any] struct {
	// Value is the initial value. It is stored without notifying anyone.
	Value T
	// Comparer suppresses updates equal to the current value.
	// Defaults to DeepEqual.
	Comparer Comparer[T]
	// Assigner maps an incoming value to the stored one. Defaults to identity.
	Assigner Assigner[T]
	// EventName is the widget event to subscribe to.
	// Defaults to config.DefaultEventName.
	EventName string
	// CallbackName is the name native code calls back with.
	// Defaults to config.DefaultCallbackName.
	CallbackName string
	// WriteBack, when set, names the widget property that values set by the
	// owning code are written to once the input is registered. Requires an
	// interop implementing platform.PropertySetter.
	WriteBack string
}

// Params are supplied by the owning code and may change on every render.
type Params[T any] struct {
	// Validation is informed of accepted changes. Optional.
	Validation validation.Notifier
	// FieldIdentifier names the field explicitly. Takes precedence over Field.
	FieldIdentifier *validation.FieldIdentifier
	// Field derives the field on each notification.
	Field validation.FieldSelector
	// OnValueChanged receives every accepted value.
	OnValueChanged func(T)
	// Attributes are forwarded to the widget by the renderer.
	Attributes Attributes
}

type origin int

const (
	fromOwner origin = iota
	fromWidget
)

// Input keeps a value of type T in sync with a native widget whose change
// events carry a D.
type Input[T any, D ChangeEventDetail[T]] struct {
	interop   platform.Interop
	comparer  Comparer[T]
	assigner  Assigner[T]
	decode    DetailDecoder[D]
	event     string
	callback  string
	writeBack string

	mu    sync.Mutex
	value T

	paramsMu sync.RWMutex
	params   Params[T]

	// lifeMu serializes lifecycle transitions. state and widget are also
	// read without it on the value path.
	lifeMu sync.Mutex
	state  atomic.Int32
	widget atomic.Int64
	token  platform.RegistrationToken
}

var _ platform.CallbackTarget = (*Input[string, ValueDetail[string]])(nil)

// New creates an unmounted input. A nil interop uses platform.GetInterop.
func New[T any, D ChangeEventDetail[T]](interop platform.Interop, opts Options[T]) *Input[T, D] {
	if interop == nil {
		interop = platform.GetInterop()
	}
	in := &Input[T, D]{
		interop:   interop,
		comparer:  opts.Comparer,
		assigner:  opts.Assigner,
		decode:    JSONDecoder[D](),
		event:     opts.EventName,
		callback:  opts.CallbackName,
		writeBack: opts.WriteBack,
		value:     opts.Value,
	}
	if in.comparer == nil {
		in.comparer = DeepEqual[T]()
	}
	if in.assigner == nil {
		in.assigner = identity[T]{}
	}
	if in.event == "" {
		in.event = config.DefaultEventName
	}
	if in.callback == "" {
		in.callback = config.DefaultCallbackName
	}
	return in
}

// WithDecoder replaces the payload decoder and returns the input.
func (in *Input[T, D]) WithDecoder(decode DetailDecoder[D]) *Input[T, D] {
	if decode != nil {
		in.decode = decode
	}
	return in
}

// Value returns the current value.
func (in *Input[T, D]) Value() T {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.value
}

// SetValue stores v unless it equals the current value. v is first passed
// through the Assigner and the assigned result is what gets compared, so a
// value that normalizes to the current one is rejected. An accepted value
// is passed to OnValueChanged and then reported to the validation context.
// It reports whether v was accepted.
//
// OnValueChanged and the validation notify run after the value lock is
// released, so they may call SetValue again. Concurrent callers are not
// ordered against each other: OnValueChanged(a) may arrive after
// OnValueChanged(b) even when b was stored last. Hosts that call SetValue
// from several goroutines should read Value for the latest state.
func (in *Input[T, D]) SetValue(v T) bool {
	return in.set(v, fromOwner)
}

// SetParams replaces the parameters supplied by the owning code.
func (in *Input[T, D]) SetParams(p Params[T]) {
	in.paramsMu.Lock()
	in.params = p
	in.paramsMu.Unlock()
}

// Params returns the current parameters.
func (in *Input[T, D]) Params() Params[T] {
	in.paramsMu.RLock()
	defer in.paramsMu.RUnlock()
	return in.params
}

// Attributes returns the extra widget attributes from the current params.
func (in *Input[T, D]) Attributes() Attributes {
	return in.Params().Attributes
}

// FieldIdentifier resolves the field reported to the validation context:
// the explicit identifier if set, otherwise the selector's result. The
// selector is evaluated on every call.
func (in *Input[T, D]) FieldIdentifier() (validation.FieldIdentifier, bool) {
	return resolveField(in.Params())
}

func resolveField[T any](p Params[T]) (validation.FieldIdentifier, bool) {
	if p.FieldIdentifier != nil {
		return *p.FieldIdentifier, true
	}
	if p.Field != nil {
		id := p.Field()
		return id, !id.IsZero()
	}
	return validation.FieldIdentifier{}, false
}

// set runs the compare, store, emit, notify pipeline. The lock covers only
// compare and store so callbacks may call SetValue again.
func (in *Input[T, D]) set(v T, from origin) bool {
	in.mu.Lock()
	next := in.assigner.Assign(v)
	if in.comparer.Equal(in.value, next) {
		in.mu.Unlock()
		return false
	}
	in.value = next
	in.mu.Unlock()

	p := in.Params()
	if p.OnValueChanged != nil {
		p.OnValueChanged(next)
	}
	if p.Validation != nil {
		if id, ok := resolveField(p); ok {
			p.Validation.NotifyFieldChanged(id)
		}
	}
	if from == fromOwner {
		in.pushToWidget(next)
	}
	return true
}

// pushToWidget writes v to the widget property named by Options.WriteBack.
// Changes that came from the widget are never echoed back.
func (in *Input[T, D]) pushToWidget(v T) {
	if in.writeBack == "" || in.State() != StateRegistered {
		return
	}
	setter, ok := in.interop.(platform.PropertySetter)
	if !ok {
		return
	}
	widget := platform.NewWidgetHandle(in.widget.Load())
	if err := setter.SetProperty(widget, in.writeBack, v); err != nil {
		errors.Report(&errors.BindError{
			Op:   "input.SetValue",
			Kind: errors.KindPlatform,
			Err:  err,
		})
	}
}
