package testing

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/go-drift/nativebind/pkg/config"
	"github.com/go-drift/nativebind/pkg/platform"
)

// Call is one method call Go made into the fake native side.
type Call struct {
	Channel string
	Method  string
	Args    map[string]any
}

// Handler is a change handler registered by Go on the fake native side.
type Handler struct {
	Token    string
	ViewID   int64
	Event    string
	Callback string
}

// FakeNative is a platform.NativeBridge that stands in for the native widget
// layer. It records every call, keeps the handlers Go registers, and fires
// widget events back into Go the way a native bridge would.
type FakeNative struct {
	cfg config.Interop

	mu         sync.Mutex
	calls      []Call
	handlers   []Handler
	properties map[int64]map[string]any
	failures   map[string][]error
}

// NewFakeNative returns a fake native side speaking the protocol described
// by cfg. Empty fields in cfg take their defaults.
func NewFakeNative(cfg config.Interop) *FakeNative {
	resolved, err := config.Resolve(cfg)
	if err != nil {
		panic(fmt.Sprintf("bindtest: %v", err))
	}
	return &FakeNative{
		cfg:        *resolved,
		properties: make(map[int64]map[string]any),
		failures:   make(map[string][]error),
	}
}

// Install makes f the platform's native bridge with synchronous dispatch.
// The cleanup function should be testing.T.Cleanup or equivalent.
//
//	native := bindtest.NewFakeNative(config.Interop{})
//	native.Install(t.Cleanup)
func (f *FakeNative) Install(cleanup func(func())) {
	platform.SetupTestBridge(cleanup)
	platform.SetNativeBridge(f)
}

// FailNext makes the next call to method return err. Calls queue up, so
// FailNext may be used several times for the same method.
func (f *FakeNative) FailNext(method string, err error) {
	f.mu.Lock()
	f.failures[method] = append(f.failures[method], err)
	f.mu.Unlock()
}

// InvokeMethod implements platform.NativeBridge.
func (f *FakeNative) InvokeMethod(channel, method string, argsData []byte) ([]byte, error) {
	var args map[string]any
	if len(argsData) > 0 {
		if err := json.Unmarshal(argsData, &args); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Channel: channel, Method: method, Args: args})

	if queued := f.failures[method]; len(queued) > 0 {
		err := queued[0]
		f.failures[method] = queued[1:]
		return nil, err
	}

	if channel == f.cfg.Channel {
		switch method {
		case f.cfg.RegisterMethod:
			viewID, _ := args["viewId"].(float64)
			f.handlers = append(f.handlers, Handler{
				Token:    fmt.Sprint(args["token"]),
				ViewID:   int64(viewID),
				Event:    fmt.Sprint(args["event"]),
				Callback: fmt.Sprint(args["callback"]),
			})
		case f.cfg.ReleaseMethod:
			token := fmt.Sprint(args["token"])
			f.handlers = slices.DeleteFunc(f.handlers, func(h Handler) bool {
				return h.Token == token
			})
		case f.cfg.SetPropertyMethod:
			viewID, _ := args["viewId"].(float64)
			props := f.properties[int64(viewID)]
			if props == nil {
				props = make(map[string]any)
				f.properties[int64(viewID)] = props
			}
			props[fmt.Sprint(args["property"])] = args["value"]
		}
	}
	return platform.DefaultCodec.Encode(nil)
}

// Fire delivers a widget event with the given detail to every handler
// registered for viewID and event. It returns the first error Go reports.
func (f *FakeNative) Fire(viewID int64, event string, detail any) error {
	var firstErr error
	for _, h := range f.Handlers() {
		if h.ViewID != viewID || h.Event != event {
			continue
		}
		args, err := json.Marshal(map[string]any{
			"token":    h.Token,
			"callback": h.Callback,
			"viewId":   h.ViewID,
			"detail":   detail,
		})
		if err != nil {
			return err
		}
		if _, err := platform.HandleMethodCall(f.cfg.Channel, "invokeCallback", args); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Calls returns the recorded calls to method, or every call when method is
// empty.
func (f *FakeNative) Calls(method string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if method == "" {
		return slices.Clone(f.calls)
	}
	var out []Call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Handlers returns the live handlers.
func (f *FakeNative) Handlers() []Handler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.handlers)
}

// Property returns the last value Go wrote to a widget property.
func (f *FakeNative) Property(viewID int64, name string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.properties[viewID][name]
	return v, ok
}
