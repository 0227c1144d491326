package platform

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/go-drift/nativebind/pkg/config"
	"github.com/go-drift/nativebind/pkg/errors"
)

// methodInvokeCallback is the method native code calls on the interop
// channel to deliver a widget event to a registered target.
const methodInvokeCallback = "invokeCallback"

// registration is one live subscription held by a ChannelInterop.
type registration struct {
	widget   WidgetHandle
	event    string
	callback string
	target   CallbackTarget
}

// ChannelInterop implements [Interop] and [PropertySetter] over a
// [MethodChannel].
//
// Outgoing calls:
//
//	registerHandler {viewId, event, token, callback}
//	releaseHandler  {token}
//	setProperty     {viewId, property, value}
//
// Incoming calls:
//
//	invokeCallback  {token, callback, viewId, detail}
//
// A callback without a detail is rejected with [ErrMissingDetail].
//
// Method names come from [config.Interop]. Incoming callbacks are handed to
// [Dispatch] so targets run on the UI thread; without a dispatcher they run
// inline and their error is returned to native code.
type ChannelInterop struct {
	cfg     config.Interop
	channel *MethodChannel

	mu            sync.Mutex
	registrations map[RegistrationToken]registration
}

var _ Interop = (*ChannelInterop)(nil)
var _ PropertySetter = (*ChannelInterop)(nil)

var (
	defaultInterop   *ChannelInterop
	defaultInteropMu sync.Mutex
)

// GetInterop returns the global interop built from [config.Default].
func GetInterop() *ChannelInterop {
	defaultInteropMu.Lock()
	defer defaultInteropMu.Unlock()
	if defaultInterop == nil {
		defaultInterop = newChannelInterop(config.Default())
	}
	return defaultInterop
}

// NewChannelInterop creates an interop on the channel named by cfg. Empty
// fields in cfg take their defaults.
func NewChannelInterop(cfg config.Interop) (*ChannelInterop, error) {
	resolved, err := config.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return newChannelInterop(*resolved), nil
}

func newChannelInterop(cfg config.Interop) *ChannelInterop {
	c := &ChannelInterop{
		cfg:           cfg,
		channel:       NewMethodChannel(cfg.Channel),
		registrations: make(map[RegistrationToken]registration),
	}
	c.channel.SetHandler(c.handleMethodCall)
	return c
}

// Config returns the resolved settings of this interop.
func (c *ChannelInterop) Config() config.Interop {
	return c.cfg
}

// Register subscribes target to event on widget.
//
// When ctx has no deadline the configured register timeout applies. If ctx
// ends before native code answers, Register returns an error wrapping
// [ErrRegistrationCanceled], and a registration that succeeds afterwards is
// released as soon as the answer arrives.
func (c *ChannelInterop) Register(ctx context.Context, widget WidgetHandle, event, callback string, target CallbackTarget) (RegistrationToken, error) {
	if widget.IsZero() {
		return "", c.registrationError(ErrInvalidWidget)
	}
	if target == nil || event == "" || callback == "" {
		return "", c.registrationError(ErrInvalidArguments)
	}
	if _, ok := ctx.Deadline(); !ok && c.cfg.RegisterTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RegisterTimeout)
		defer cancel()
	}

	token := NewRegistrationToken()
	c.mu.Lock()
	c.registrations[token] = registration{
		widget:   widget,
		event:    event,
		callback: callback,
		target:   target,
	}
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := c.channel.Invoke(c.cfg.RegisterMethod, map[string]any{
			"viewId":   widget.ViewID,
			"event":    event,
			"token":    token.String(),
			"callback": callback,
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			c.forget(token)
			return "", c.registrationError(err)
		}
		Logger().Debug("registered native handler",
			zap.Stringer("widget", widget),
			zap.String("event", event),
			zap.Stringer("token", token))
		return token, nil

	case <-ctx.Done():
		c.forget(token)
		go func() {
			if err := <-done; err == nil {
				c.releaseNative(token)
			}
		}()
		return "", c.registrationError(fmt.Errorf("%w: %w", ErrRegistrationCanceled, ctx.Err()))
	}
}

// Release drops the subscription identified by token and tells native code
// to stop calling back. Errors from native code are reported through
// [errors.Report].
func (c *ChannelInterop) Release(token RegistrationToken) {
	if token.IsZero() {
		return
	}
	if !c.forget(token) {
		return
	}
	c.releaseNative(token)
	Logger().Debug("released native handler", zap.Stringer("token", token))
}

// SetProperty writes value to the named property of the native widget.
func (c *ChannelInterop) SetProperty(widget WidgetHandle, name string, value any) error {
	if widget.IsZero() {
		return ErrInvalidWidget
	}
	_, err := c.channel.Invoke(c.cfg.SetPropertyMethod, map[string]any{
		"viewId":   widget.ViewID,
		"property": name,
		"value":    value,
	})
	return err
}

// Registered reports whether token is a live registration.
func (c *ChannelInterop) Registered(token RegistrationToken) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.registrations[token]
	return ok
}

// Len returns the number of live registrations.
func (c *ChannelInterop) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.registrations)
}

// forget removes token and reports whether it was present.
func (c *ChannelInterop) forget(token RegistrationToken) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.registrations[token]; !ok {
		return false
	}
	delete(c.registrations, token)
	return true
}

func (c *ChannelInterop) releaseNative(token RegistrationToken) {
	_, err := c.channel.Invoke(c.cfg.ReleaseMethod, map[string]any{
		"token": token.String(),
	})
	if err != nil {
		errors.Report(&errors.BindError{
			Op:      "platform.Release",
			Kind:    errors.KindRegistration,
			Channel: c.cfg.Channel,
			Err:     err,
		})
	}
}

func (c *ChannelInterop) registrationError(err error) error {
	return &errors.BindError{
		Op:      "platform.Register",
		Kind:    errors.KindRegistration,
		Channel: c.cfg.Channel,
		Err:     err,
	}
}

// handleMethodCall processes incoming method calls from native code.
func (c *ChannelInterop) handleMethodCall(method string, args any) (any, error) {
	switch method {
	case methodInvokeCallback:
		return nil, c.invokeCallback(args)
	default:
		return nil, ErrMethodNotFound
	}
}

func (c *ChannelInterop) invokeCallback(args any) error {
	m := parseMap(args)
	if m == nil {
		return ErrInvalidArguments
	}
	token := RegistrationToken(parseString(m["token"]))
	name := parseString(m["callback"])

	c.mu.Lock()
	reg, ok := c.registrations[token]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}
	if name == "" {
		name = reg.callback
	}
	if viewID, ok := toInt64(m["viewId"]); ok && viewID != reg.widget.ViewID {
		return fmt.Errorf("%w: callback from view %d for %s", ErrInvalidWidget, viewID, reg.widget)
	}

	detail, ok := m["detail"]
	if !ok || detail == nil {
		return &errors.ParseError{Channel: reg.event, DataType: "event detail", Got: detail, Err: ErrMissingDetail}
	}
	payload, err := c.channel.codec.Encode(detail)
	if err != nil {
		return &errors.ParseError{Channel: reg.event, DataType: "event detail", Got: detail, Err: err}
	}

	deliver := func() {
		defer errors.Recover("platform.invokeCallback")
		if err := reg.target.InvokeCallback(name, payload); err != nil {
			errors.Report(&errors.BindError{
				Op:      "platform.invokeCallback",
				Kind:    errors.KindPlatform,
				Channel: c.cfg.Channel,
				Err:     err,
			})
		}
	}
	if Dispatch(deliver) {
		return nil
	}
	return c.deliverInline(reg, name, payload)
}

// deliverInline runs the target on the calling goroutine. A panic in the
// target is reported and returned to native code as an error.
func (c *ChannelInterop) deliverInline(reg registration, name string, payload []byte) (err error) {
	defer errors.RecoverWithCallback("platform.invokeCallback", func(r any) {
		err = &errors.BindError{
			Op:      "platform.invokeCallback",
			Kind:    errors.KindPanic,
			Channel: c.cfg.Channel,
			Err:     fmt.Errorf("%w: %s: %v", ErrCallbackPanicked, name, r),
		}
	})
	return reg.target.InvokeCallback(name, payload)
}
