package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// AnnotatedError carries the call site and slog attributes alongside the message so that
// a single log line is enough to locate the failure.
type AnnotatedError struct {
	// msg is the error message.
	msg string
	// pc is the program counter of the caller that created the error.
	pc uintptr
	// attrs are added to the log event when the error is logged with SlogError.
	attrs []slog.Attr
	// cause is the wrapped error, if any.
	cause error
}

func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	return pcs[0]
}

// New creates a new AnnotatedError with the given message and attributes.
func New(msg string, attrs ...slog.Attr) error {
	// Skip runtime.Callers, callerPC and New.
	return &AnnotatedError{msg: msg, pc: callerPC(3), attrs: attrs}
}

// Wrap annotates err with msg and attrs. Returns nil when err is nil so it can be used in return statements directly.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	return &AnnotatedError{msg: msg, pc: callerPC(3), attrs: attrs, cause: err}
}

// NewSentinel creates a plain error without other context that can be detected with errors.Is.
func NewSentinel(msg string) error {
	return errors.New(msg) //nolint:err113 // sentinel constructor
}

// Error implements error interface.
func (e *AnnotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %s", e.msg, e.cause.Error())
}

// Unwrap returns the wrapped error.
func (e *AnnotatedError) Unwrap() error {
	return e.cause
}

// LogValue formats the error for useful logging.
func (e *AnnotatedError) LogValue() slog.Value {
	frames := runtime.CallersFrames([]uintptr{e.pc})
	source, _ := frames.Next()
	attrs := make([]slog.Attr, 0, len(e.attrs)+2) //nolint:mnd // message and source
	attrs = append(attrs,
		slog.String("msg", e.Error()),
		slog.String("source", fmt.Sprintf("%s:%d", source.File, source.Line)),
	)
	attrs = append(attrs, collectAttrs(e)...)
	return slog.GroupValue(attrs...)
}

// collectAttrs gathers the attributes of every AnnotatedError in the chain, outermost first.
func collectAttrs(err error) []slog.Attr {
	var attrs []slog.Attr
	for err != nil {
		var annotated *AnnotatedError
		if !errors.As(err, &annotated) {
			break
		}
		attrs = append(attrs, annotated.attrs...)
		err = annotated.cause
	}
	return attrs
}

// SlogError returns an attribute for logging err under the "error" key.
func SlogError(err error) slog.Attr {
	var annotated *AnnotatedError
	if errors.As(err, &annotated) {
		return slog.Any("error", annotated)
	}
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// As exposes stdlib errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is exposes stdlib errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
