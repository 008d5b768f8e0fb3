// Package fault defines the error taxonomy shared by the interpreter, the
// registry, and bricks.
//
// Three kinds of outcome travel as errors:
//
//   - business errors: expected, user-actionable failures (missing brick,
//     unresolved root element, schema-invalid arguments). They propagate to
//     the caller unwrapped and unmodified; display is the caller's job.
//   - cancellation: the run was aborted (navigation away, context done).
//     Distinguished so callers can suppress user-facing noise.
//   - the headless signal (see headless.go): not an error at all, but a
//     renderer's mechanism for handing a payload to a different surface.
//
// Programmer errors (unknown expression tag, malformed pipeline shape) are
// not represented here: they panic, loudly, by design of the surrounding
// code.
package fault

import (
	"context"
	"errors"
	"fmt"
)

// business is the marker implemented by every business-classified error.
type business interface {
	businessError()
}

// BusinessError is an expected, user-actionable failure. It aborts the
// remainder of the pipeline invocation that raised it.
type BusinessError struct {
	msg   string
	cause error
}

// Business creates a business error with a fixed message.
func Business(msg string) *BusinessError {
	return &BusinessError{msg: msg}
}

// Businessf creates a business error with a formatted message. %w wrapping
// is honored.
func Businessf(format string, args ...any) *BusinessError {
	err := fmt.Errorf(format, args...)
	return &BusinessError{msg: err.Error(), cause: errors.Unwrap(err)}
}

func (e *BusinessError) Error() string { return e.msg }

func (e *BusinessError) Unwrap() error { return e.cause }

func (e *BusinessError) businessError() {}

// InputValidationError is a business error naming the config field that
// failed the brick's input schema.
type InputValidationError struct {
	BrickID string
	Field   string
	Detail  string
	cause   error
}

// NewInputValidation builds an InputValidationError for one offending field.
func NewInputValidation(brickID, field, detail string, cause error) *InputValidationError {
	return &InputValidationError{BrickID: brickID, Field: field, Detail: detail, cause: cause}
}

func (e *InputValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid arguments for brick %q: %s", e.BrickID, e.Detail)
	}
	return fmt.Sprintf("invalid argument %q for brick %q: %s", e.Field, e.BrickID, e.Detail)
}

func (e *InputValidationError) Unwrap() error { return e.cause }

func (e *InputValidationError) businessError() {}

// IsBusiness reports whether err (or anything it wraps) is classified as a
// business error.
func IsBusiness(err error) bool {
	var b business
	return errors.As(err, &b)
}

// CancelledError marks a run that was aborted rather than failed.
type CancelledError struct {
	cause error
}

// Cancelled wraps the triggering error (typically ctx.Err()) as a
// cancellation outcome.
func Cancelled(cause error) *CancelledError {
	return &CancelledError{cause: cause}
}

func (e *CancelledError) Error() string {
	if e.cause != nil {
		return "run cancelled: " + e.cause.Error()
	}
	return "run cancelled"
}

func (e *CancelledError) Unwrap() error { return e.cause }

// IsCancelled reports whether err represents cancellation, either via an
// explicit CancelledError or a raw context error.
func IsCancelled(err error) bool {
	var c *CancelledError
	if errors.As(err, &c) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
