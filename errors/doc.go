// Package errors provides structured error types for the stack-trace library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes context: a path into the offending structure and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseFixture, errors.KindInvalidData).
//		Path("objects", "fut1").
//		Detail("listener slot holds a %s", kind).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseProfile, "profile", path)
//	err := errors.EmptyStack(errors.PhaseCapture)
//
// All errors implement the standard error interface and support errors.Is/As.
//
// Note that the walkers themselves never produce errors: an unexpected
// heap shape terminates a walk as "not found". This package serves the
// surrounding layers only (profile loading, fixtures, the capture API).
package errors
