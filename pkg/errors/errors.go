package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = NewError("NOT_FOUND", "binding not found")
	ErrTimeout     = NewError("TIMEOUT", "operation timed out")
	ErrResolution  = NewError("RESOLUTION_FAILED", "call context resolution failed")
	ErrTranslation = NewError("TRANSLATION_FAILED", "message translation failed")
	ErrSink        = NewError("SINK_FAILED", "sink rejected record")
	ErrPersistence = NewError("PERSISTENCE_FAILED", "store operation failed")
	ErrValidation  = NewError("VALIDATION_ERROR", "validation failed")
	ErrInternal    = NewError("INTERNAL_ERROR", "internal error")
	ErrUnavailable = NewError("UNAVAILABLE", "component unavailable")
)

type Error struct {
	Code    string
	Message string
	Details map[string]interface{}
	Cause   error
	fatal   bool
}

func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	msg := e.Message

	if detailMsg, ok := e.Details["message"].(string); ok && detailMsg != "" {
		msg = detailMsg
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on Code, so errors.Is(err, ErrNotFound) holds for any
// derived copy produced by WithCause/WithDetail.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) IsFatal() bool {
	return e.fatal
}

func (e *Error) WithCause(cause error) *Error {
	err := *e
	err.Cause = cause
	return &err
}

func (e *Error) WithMessage(message string) *Error {
	return e.WithDetail("message", message)
}

func (e *Error) WithDetail(key string, value interface{}) *Error {
	err := *e
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	err.Details = details
	return &err
}

func (e *Error) AsFatal() *Error {
	err := *e
	err.fatal = true
	return &err
}

func Wrap(err error, appErr *Error) *Error {
	if err == nil {
		return nil
	}
	return appErr.WithCause(err)
}

func hasCode(err error, code string) bool {
	for err != nil {
		var appErr *Error
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrNotFound.Code)
}

func IsTimeout(err error) bool {
	return hasCode(err, ErrTimeout.Code)
}

func IsResolution(err error) bool {
	return hasCode(err, ErrResolution.Code)
}

func IsTranslation(err error) bool {
	return hasCode(err, ErrTranslation.Code)
}

func IsSink(err error) bool {
	return hasCode(err, ErrSink.Code)
}

func IsPersistence(err error) bool {
	return hasCode(err, ErrPersistence.Code)
}

func IsValidation(err error) bool {
	return hasCode(err, ErrValidation.Code)
}

// Code returns the outermost application error code, or ErrInternal's code
// for foreign errors. Used as a low-cardinality metric label.
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}
