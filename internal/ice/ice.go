// Package ice reports internal compiler errors.
//
// IR builders validate their operands eagerly. A violated precondition is a
// bug in the caller, not a user error, so it aborts the compilation with a
// panic carrying an *Error instead of returning an error value.
package ice

import "fmt"

// Error is the panic value raised by Assertf and Failf.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "internal compiler error: " + e.Msg
}

// Assertf panics with an *Error when cond is false.
func Assertf(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(&Error{Msg: fmt.Sprintf(format, args...)})
}

// Failf always panics.
func Failf(format string, args ...any) {
	panic(&Error{Msg: fmt.Sprintf(format, args...)})
}

// Catch runs fn and returns the *Error it panicked with, or nil.
// Panics that are not internal compiler errors propagate.
func Catch(fn func()) (err *Error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*Error); ok {
			err = e
			return
		}
		panic(r)
	}()
	fn()
	return nil
}
