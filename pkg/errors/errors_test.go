package errors

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestBindErrorString(t *testing.T) {
	err := &BindError{
		Op:   "input.HandleChange",
		Kind: KindParsing,
		Err:  &ParseError{Channel: "change", DataType: "string", Got: 12},
	}
	got := err.Error()
	want := "input.HandleChange [parsing]: failed to parse string from change: got int"
	if got != want {
		t.Errorf("BindError.Error() = %q, want %q", got, want)
	}
}

func TestBindErrorWithChannel(t *testing.T) {
	err := &BindError{
		Op:      "platform.Register",
		Kind:    KindRegistration,
		Channel: "nativebind/interop",
		Err:     fmt.Errorf("stale widget"),
	}
	want := "channel=nativebind/interop"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestBindErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")
	err := &BindError{Op: "op", Kind: KindPlatform, Err: inner}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return the wrapped error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindPlatform, "platform"},
		{KindParsing, "parsing"},
		{KindRegistration, "registration"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "platform.invokeCallback"
	if got, want := err.Error(), "panic in platform.invokeCallback: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestParseErrorWrapsCause(t *testing.T) {
	cause := fmt.Errorf("unexpected end of JSON input")
	err := &ParseError{Channel: "change", DataType: "int", Err: cause}
	if !strings.Contains(err.Error(), cause.Error()) {
		t.Errorf("ParseError.Error() = %q, should mention cause", err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestReport(t *testing.T) {
	var captured *BindError
	handler := &testHandler{
		onError: func(err *BindError) {
			captured = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&BindError{Op: "test.op", Kind: KindPlatform, Err: fmt.Errorf("boom")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportNil(t *testing.T) {
	called := false
	oldHandler := DefaultHandler
	SetHandler(&testHandler{onError: func(*BindError) { called = true }})
	defer SetHandler(oldHandler)

	Report(nil)
	if called {
		t.Error("Report(nil) should not reach the handler")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	oldHandler := DefaultHandler
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()
	if got != 42 {
		t.Errorf("callback value = %v, want 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := DefaultHandler
	defer SetHandler(oldHandler)

	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := &LogHandler{Logger: zap.New(core), Verbose: true}

	h.HandleError(&BindError{
		Op:         "platform.Release",
		Kind:       KindRegistration,
		Channel:    "nativebind/interop",
		Err:        fmt.Errorf("not connected"),
		StackTrace: "main.main",
	})
	h.HandlePanic(&PanicError{Op: "platform.invokeCallback", Value: "boom"})

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d log entries, want 2", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["op"] != "platform.Release" {
		t.Errorf("op = %v, want platform.Release", ctx["op"])
	}
	if ctx["channel"] != "nativebind/interop" {
		t.Errorf("channel = %v, want nativebind/interop", ctx["channel"])
	}
	if ctx["stack"] != "main.main" {
		t.Errorf("stack = %v, want main.main", ctx["stack"])
	}
	if entries[1].Message != "nativebind panic" {
		t.Errorf("message = %q, want %q", entries[1].Message, "nativebind panic")
	}
}

type testHandler struct {
	onError func(*BindError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *BindError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
