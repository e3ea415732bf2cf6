package observability

import (
	"runtime/debug"
)

// RecoverPanic logs a recovered panic with its stack trace and swallows it.
// Meant for defer in background goroutines (the signed-URL cache sweeps, the
// db stats collector) where one bad iteration must not take the process down.
// The HTTP path has its own recovery middleware.
//
//	defer observability.RecoverPanic(logger, "db stats collector")
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}
