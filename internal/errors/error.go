package errors

import (
	"errors"
	"fmt"
)

// Category represents the subsystem an error comes from.
type Category string

const (
	CategoryReactive  Category = "reactive"
	CategoryScheduler Category = "scheduler"
	CategoryRender    Category = "render"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// LoopError is a structured error with a code, an explanation and a hint.
type LoopError struct {
	// Code is a unique error identifier (e.g., "E202").
	Code string

	// Category is the subsystem that raised the error.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Fields carries structured context (component name, job name...).
	Fields map[string]any

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *LoopError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *LoopError) Unwrap() error {
	return e.Wrapped
}

// Is matches another LoopError with the same code.
func (e *LoopError) Is(target error) bool {
	t, ok := target.(*LoopError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithSuggestion adds a fix suggestion to the error.
func (e *LoopError) WithSuggestion(s string) *LoopError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *LoopError) WithDetail(d string) *LoopError {
	e.Detail = d
	return e
}

// WithField attaches a structured field.
func (e *LoopError) WithField(key string, value any) *LoopError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// Wrap wraps another error.
func (e *LoopError) Wrap(err error) *LoopError {
	e.Wrapped = err
	return e
}

// LogAttrs returns the error as slog key/value pairs.
func (e *LoopError) LogAttrs() []any {
	attrs := []any{"code", e.Code, "category", string(e.Category)}
	if e.Detail != "" {
		attrs = append(attrs, "detail", e.Detail)
	}
	if e.Wrapped != nil {
		attrs = append(attrs, "error", e.Wrapped)
	}
	for k, v := range e.Fields {
		attrs = append(attrs, k, v)
	}
	return attrs
}

// New creates a LoopError from a registered error code.
func New(code string) *LoopError {
	template, ok := registry[code]
	if !ok {
		return &LoopError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &LoopError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a LoopError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *LoopError {
	return &LoopError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a LoopError unless it already is one.
func FromError(err error, code string) *LoopError {
	if err == nil {
		return nil
	}
	var le *LoopError
	if errors.As(err, &le) {
		return le
	}
	return New(code).Wrap(err)
}

// FromPanic converts a recovered value into a LoopError with code.
func FromPanic(r any, code string) *LoopError {
	cause, ok := r.(error)
	if !ok {
		cause = fmt.Errorf("%v", r)
	}
	return New(code).Wrap(cause)
}

// HasCode reports whether err is or wraps a LoopError with code.
func HasCode(err error, code string) bool {
	var le *LoopError
	return errors.As(err, &le) && le.Code == code
}
