// Package testing provides a fake native side for testing bound inputs
// without a device.
//
// # Quick Start
//
// Install a [FakeNative], mount an input on a widget, then fire widget
// events and inspect what Go sent to the native side:
//
//	func TestNameInput(t *testing.T) {
//	    native := bindtest.NewFakeNative(config.Interop{})
//	    native.Install(t.Cleanup)
//
//	    name := input.New[string, input.ValueDetail[string]](nil, input.Options[string]{})
//	    if err := name.OnAfterRender(context.Background(), platform.NewWidgetHandle(1)); err != nil {
//	        t.Fatal(err)
//	    }
//
//	    native.Fire(1, "change", map[string]any{"value": "Ada"})
//	    if name.Value() != "Ada" {
//	        t.Errorf("Value() = %q, want Ada", name.Value())
//	    }
//	}
//
// # Failure Injection
//
// Make the next registration fail to exercise retry paths:
//
//	native.FailNext(config.DefaultRegisterMethod, platform.NewChannelError("stale", "view is gone"))
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import bindtest "github.com/go-drift/nativebind/pkg/testing"
package testing
