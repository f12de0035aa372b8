package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// RecoverPanic turns a recovered panic value into a fatal *Error with the
// stack attached. A panic carrying an *Error keeps its code.
func RecoverPanic(r any) error {
	if r == nil {
		return nil
	}

	base := ErrInternal
	var cause error
	switch v := r.(type) {
	case error:
		var appErr *Error
		if errors.As(v, &appErr) {
			base = appErr
		}
		cause = v
	default:
		cause = fmt.Errorf("panic: %v", v)
	}

	return base.
		WithCause(cause).
		WithDetail("panic", true).
		WithDetail("stack_trace", string(debug.Stack())).
		AsFatal()
}
