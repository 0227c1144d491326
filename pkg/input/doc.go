// Package input binds a typed value to a native widget in both directions.
//
// An [Input] holds the current value of one widget. The owning code sets it
// with [Input.SetValue]; the native widget reports edits through change
// events that the input decodes and routes through the same path. Either
// way, a value that compares equal to the current one is dropped, and an
// accepted value is stored, handed to the OnValueChanged callback and then
// reported to the attached validation context.
//
// # Lifecycle
//
// The rendering framework calls [Input.OnAfterRender] after every render and
// [Input.Dispose] on teardown:
//
//	Unmounted --first render--> Mounted --Register ok--> Registered
//	    \                          |                         |
//	     `------------------------ Dispose ------------------'--> Disposed
//
// Registration subscribes the input to the widget's change event through a
// [platform.Interop]. It happens once; a failed attempt leaves the input
// Mounted and the next render tries again.
//
// # Example
//
//	name := input.New[string, input.ValueDetail[string]](nil, input.Options[string]{
//	    Comparer: input.FoldString(),
//	})
//	name.SetParams(input.Params[string]{
//	    Validation:     editContext,
//	    Field:          validation.Select(form, &form.Name),
//	    OnValueChanged: func(v string) { form.Name = v },
//	})
//
//	// in the framework's post-render hook
//	if err := name.OnAfterRender(ctx, platform.NewWidgetHandle(viewID)); err != nil {
//	    return err
//	}
//	defer name.Dispose()
package input
