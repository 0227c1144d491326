package testing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/nativebind/pkg/config"
	"github.com/go-drift/nativebind/pkg/platform"
	bindtest "github.com/go-drift/nativebind/pkg/testing"
)

type target struct {
	payloads []string
}

func (t *target) InvokeCallback(name string, payload []byte) error {
	t.payloads = append(t.payloads, name+":"+string(payload))
	return nil
}

func setup(t *testing.T) (*bindtest.FakeNative, *platform.ChannelInterop) {
	t.Helper()
	cfg := config.Interop{Channel: "bindtest/" + t.Name()}
	native := bindtest.NewFakeNative(cfg)
	native.Install(t.Cleanup)
	interop, err := platform.NewChannelInterop(cfg)
	require.NoError(t, err)
	return native, interop
}

func TestFakeNative_TracksHandlers(t *testing.T) {
	native, interop := setup(t)

	token, err := interop.Register(context.Background(), platform.NewWidgetHandle(3), "change", "HandleChange", &target{})
	require.NoError(t, err)

	handlers := native.Handlers()
	require.Len(t, handlers, 1)
	assert.Equal(t, bindtest.Handler{Token: token.String(), ViewID: 3, Event: "change", Callback: "HandleChange"}, handlers[0])

	interop.Release(token)
	assert.Empty(t, native.Handlers())
	assert.Len(t, native.Calls(config.DefaultReleaseMethod), 1)
	assert.Len(t, native.Calls(""), 2)
}

func TestFakeNative_Fire(t *testing.T) {
	native, interop := setup(t)
	tgt := &target{}

	_, err := interop.Register(context.Background(), platform.NewWidgetHandle(3), "change", "HandleChange", tgt)
	require.NoError(t, err)

	require.NoError(t, native.Fire(3, "change", map[string]any{"value": 1}))
	require.NoError(t, native.Fire(3, "focus", nil))
	require.NoError(t, native.Fire(4, "change", nil))

	assert.Equal(t, []string{`HandleChange:{"value":1}`}, tgt.payloads)
}

func TestFakeNative_FailNext(t *testing.T) {
	native, interop := setup(t)
	stale := platform.NewChannelError("stale", "view is gone")
	native.FailNext(config.DefaultRegisterMethod, stale)

	_, err := interop.Register(context.Background(), platform.NewWidgetHandle(3), "change", "HandleChange", &target{})
	assert.True(t, errors.Is(err, stale))
	assert.Empty(t, native.Handlers())

	_, err = interop.Register(context.Background(), platform.NewWidgetHandle(3), "change", "HandleChange", &target{})
	require.NoError(t, err)
	assert.Len(t, native.Handlers(), 1)
}

func TestFakeNative_Property(t *testing.T) {
	native, interop := setup(t)

	require.NoError(t, interop.SetProperty(platform.NewWidgetHandle(8), "value", "abc"))

	v, ok := native.Property(8, "value")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok = native.Property(9, "value")
	assert.False(t, ok)
}
