package errors

import (
	"sync"

	"go.uber.org/zap"
)

var (
	stderrLogger     *zap.Logger
	stderrLoggerOnce sync.Once
)

// defaultLogger returns a production zap logger writing to stderr, or a
// no-op logger if one cannot be built.
func defaultLogger() *zap.Logger {
	stderrLoggerOnce.Do(func() {
		l, err := zap.NewProduction()
		if err != nil {
			l = zap.NewNop()
		}
		stderrLogger = l
	})
	return stderrLogger
}

// LogHandler is an ErrorHandler that logs errors through zap.
type LogHandler struct {
	// Logger receives the entries. Nil uses a production logger on stderr.
	Logger *zap.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *zap.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return defaultLogger()
}

// HandleError logs a BindError.
func (h *LogHandler) HandleError(err *BindError) {
	if err == nil {
		return
	}
	fields := []zap.Field{
		zap.String("op", err.Op),
		zap.Stringer("kind", err.Kind),
		zap.Error(err.Err),
	}
	if err.Channel != "" {
		fields = append(fields, zap.String("channel", err.Channel))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("nativebind error", fields...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	fields := []zap.Field{zap.Any("value", err.Value)}
	if err.Op != "" {
		fields = append(fields, zap.String("op", err.Op))
	}
	if h.Verbose && err.StackTrace != "" {
		fields = append(fields, zap.String("stack", err.StackTrace))
	}
	h.logger().Error("nativebind panic", fields...)
}
