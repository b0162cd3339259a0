// Package log wraps github.com/sirupsen/logrus for the causal-chain
// reporting §7 assigns to BackendError/IndexError. It never logs user
// errors: those are returned for the caller to diagnose, exactly as the
// teacher's die_error helper in pkg/zeta/misc.go only ever prints,
// never routes through modules/trace. The call-site location and debug
// print path are delegated to modules/trace rather than reimplemented.
package log

import (
	"github.com/sirupsen/logrus"

	"github.com/zetavcs/evolve/modules/trace"
)

var std = logrus.New()

// SetLevel adjusts verbosity for callers embedding this module into a
// larger program; cmd/evolve does not call it.
func SetLevel(level logrus.Level) { std.SetLevel(level) }

// BackendFailure logs a store-layer failure with its causal chain (op,
// cause, call site), using trace.Location for the fn:line prefix the same
// way trace.Errorf does.
func BackendFailure(op string, cause error) {
	fn, line := trace.Location(2)
	std.Errorf("%s:%d: backend error: %s: %v", fn, line, op, cause)
}

// IndexFailure logs an ancestry/revset collaborator failure.
func IndexFailure(op string, cause error) {
	fn, line := trace.Location(2)
	std.Errorf("%s:%d: index error: %s: %v", fn, line, op, cause)
}

// Debugf delegates to trace.DbgPrint so verbose tracing from this package
// goes through the same colorized stderr writer the rest of the program
// uses instead of a second implementation.
func Debugf(format string, args ...any) {
	trace.DbgPrint(format, args...)
}
