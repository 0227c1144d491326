package platform

import "sync"

// channelRegistry manages all registered method channels.
type channelRegistry struct {
	methodChannels map[string]*MethodChannel
	mu             sync.RWMutex
}

var registry = &channelRegistry{
	methodChannels: make(map[string]*MethodChannel),
}

func (r *channelRegistry) registerMethod(name string, ch *MethodChannel) {
	r.mu.Lock()
	r.methodChannels[name] = ch
	r.mu.Unlock()
}

func (r *channelRegistry) getMethodChannel(name string) *MethodChannel {
	r.mu.RLock()
	ch := r.methodChannels[name]
	r.mu.RUnlock()
	return ch
}

// NativeBridge defines the interface for calling native platform code.
type NativeBridge interface {
	// InvokeMethod calls a method on the native side.
	InvokeMethod(channel, method string, args []byte) ([]byte, error)
}

var (
	nativeBridge   NativeBridge
	nativeBridgeMu sync.RWMutex
)

// SetNativeBridge sets the native bridge implementation.
// Called by the host during initialization.
func SetNativeBridge(bridge NativeBridge) {
	nativeBridgeMu.Lock()
	nativeBridge = bridge
	nativeBridgeMu.Unlock()
}

func currentBridge() NativeBridge {
	nativeBridgeMu.RLock()
	defer nativeBridgeMu.RUnlock()
	return nativeBridge
}

// invokeNative calls a method on the native side.
func invokeNative(codec MessageCodec, channel, method string, args any) (any, error) {
	bridge := currentBridge()
	if bridge == nil {
		return nil, ErrPlatformUnavailable
	}

	argsData, err := codec.Encode(args)
	if err != nil {
		return nil, err
	}

	resultData, err := bridge.InvokeMethod(channel, method, argsData)
	if err != nil {
		return nil, err
	}

	return codec.Decode(resultData)
}

// HandleMethodCall is called from the bridge when native invokes a Go method.
func HandleMethodCall(channel, method string, argsData []byte) ([]byte, error) {
	ch := registry.getMethodChannel(channel)
	if ch == nil {
		return nil, ErrChannelNotFound
	}

	args, err := ch.codec.Decode(argsData)
	if err != nil {
		return nil, err
	}

	result, err := ch.handleCall(method, args)
	if err != nil {
		return nil, err
	}

	return ch.codec.Encode(result)
}

// ResetForTest resets all global platform state for test isolation.
// It clears the native bridge and the dispatch function and drops every
// registration held by the default interop. This should only be called from
// tests.
func ResetForTest() {
	SetNativeBridge(nil)

	dispatchMu.Lock()
	dispatchFunc = nil
	dispatchMu.Unlock()

	defaultInteropMu.Lock()
	if defaultInterop != nil {
		defaultInterop.mu.Lock()
		defaultInterop.registrations = make(map[RegistrationToken]registration)
		defaultInterop.mu.Unlock()
	}
	defaultInteropMu.Unlock()
}
