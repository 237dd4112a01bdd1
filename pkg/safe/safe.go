package safe

import (
	"log/slog"
	"runtime/debug"
)

// Run executes fn and swallows any panic, logging it with a stack
// trace. Use it for fire-and-forget goroutines so a single bad
// document cannot take the service down.
func Run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", "safe.Run"),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	fn()
}

// RunWithLog behaves like Run but tags the log entry with the caller's
// component name.
func RunWithLog(fn func(), component string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()

	fn()
}
