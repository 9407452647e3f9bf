// Package unwind produces the final ordered trace by composing the two
// walkers: physical frames are captured top-down until the first
// suspended async leaf, then the continuation graph supplies the logical
// callers, each resolved to a resumption pc through its function's yield
// table.
//
// Output goes into a caller-owned bounded buffer; exhausting it stops
// collection silently. The one condition reported as an error is an
// execution context that yields no frames at all when at least one was
// expected.
package unwind
