package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// CustomizedError carries a call trace, an i18n message key and an
// HTTP status code alongside the cause. The handler layer maps it to
// a response envelope without re-inspecting the cause.
type CustomizedError struct {
	cause   error
	message string
	trace   []string
	wrap    error
	code    int
	kind    string
}

// Kind tags the error with a machine-readable category from the
// kinds.go taxonomy. Wrapping preserves it.
func (e *CustomizedError) Kind(k string) *CustomizedError {
	e.kind = k
	return e
}

func (e *CustomizedError) GetKind() string {
	return e.kind
}

// KindOf extracts the kind of err, or empty for plain errors.
func KindOf(err error) string {
	if ce, ok := err.(*CustomizedError); ok {
		return ce.kind
	}
	return ""
}

func New(trace, message string, err error) *CustomizedError {
	return &CustomizedError{
		cause:   err,
		message: message,
		trace:   []string{trace},
		code:    http.StatusInternalServerError,
	}
}

func (e *CustomizedError) Code(c int) *CustomizedError {
	e.code = c
	return e
}

func (e *CustomizedError) GetCode() int {
	return e.code
}

func (e *CustomizedError) Trace(trace string) *CustomizedError {
	e.trace = append(e.trace, trace)
	return e
}

// Wrap keeps the wrapped error's status code when it is already a
// CustomizedError.
func Wrap(err error, trace, message string) *CustomizedError {
	ce := &CustomizedError{
		cause:   err,
		message: message,
		trace:   []string{trace},
		wrap:    err,
		code:    http.StatusInternalServerError,
	}
	if inner, ok := err.(*CustomizedError); ok {
		ce.code = inner.code
		ce.kind = inner.kind
	}
	return ce
}

// Trace appends a trace hop, promoting plain errors on first contact.
func Trace(trace string, err error) *CustomizedError {
	if ce, ok := err.(*CustomizedError); ok {
		ce.trace = append(ce.trace, trace)
		return ce
	}
	return Wrap(err, trace, err.Error())
}

func (e *CustomizedError) Message() string {
	if e.message == "" {
		return e.cause.Error()
	}
	return e.message
}

func (e *CustomizedError) Unwrap() error {
	return e.cause
}

func (e *CustomizedError) Error() string {
	wrapped := `""`
	if inner, ok := e.wrap.(*CustomizedError); ok {
		wrapped = inner.Error()
	} else if e.wrap != nil {
		wrapped = fmt.Sprint(`"`, e.wrap.Error(), `"`)
	}
	return fmt.Sprintf(`{"trace":"%s","code":%d,"msg":"%s","error":"%v","wrapd":%s}`,
		strings.Join(e.trace, "->"), e.code, e.message, e.cause, wrapped)
}
