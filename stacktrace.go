package stacktrace

import (
	"github.com/lumavm/stack-trace/heap"
)

// Frame is one physical execution-stack frame, as exposed by the
// embedding runtime's frame iterator.
type Frame interface {
	// PC is the program counter offset within the frame's code object.
	PC() uint64

	// Function resolves the function currently executing in this frame.
	Function() (heap.Function, bool)

	// Code is the compiled code token carried through to the output.
	Code() (heap.Code, bool)

	// Closure extracts the continuation closure captured in the frame's
	// context, if the frame belongs to a suspendable function.
	Closure() (heap.Closure, bool)
}

// FrameIterator yields frames top-down, innermost first. Next returns
// false when the stack is exhausted.
type FrameIterator interface {
	Next() (Frame, bool)
}

// Entry is one collected trace entry: an opaque code token and a pc
// offset within it. CatchError marks continuation-chain hops that were
// registered as error handlers rather than ordinary continuations.
type Entry struct {
	Code       heap.Code
	PC         uint64
	CatchError bool
}

// Buffer is a capacity-bounded trace output sequence. Appends past
// capacity are dropped silently and recorded in Truncated; running out
// of room is not an error.
type Buffer struct {
	entries   []Entry
	truncated bool
}

// NewBuffer creates a buffer that accepts up to capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{entries: make([]Entry, 0, capacity)}
}

// Append adds an entry if capacity remains, reporting whether it was
// written.
func (b *Buffer) Append(e Entry) bool {
	if len(b.entries) == cap(b.entries) {
		b.truncated = true
		return false
	}
	b.entries = append(b.entries, e)
	return true
}

// Full reports whether the buffer has reached capacity.
func (b *Buffer) Full() bool {
	return len(b.entries) == cap(b.entries)
}

// Truncated reports whether any append was dropped for lack of room.
func (b *Buffer) Truncated() bool {
	return b.truncated
}

// Len is the number of entries written.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Cap is the buffer capacity.
func (b *Buffer) Cap() int {
	return cap(b.entries)
}

// Entries returns the collected sequence, innermost frame first.
func (b *Buffer) Entries() []Entry {
	return b.entries
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.entries = b.entries[:0]
	b.truncated = false
}

// sliceIterator walks a fixed frame slice.
type sliceIterator struct {
	frames []Frame
	next   int
}

// NewSliceIterator returns an iterator over a fixed frame slice, ordered
// innermost first. Tests, fixtures and tooling use it to present
// synthetic stacks.
func NewSliceIterator(frames []Frame) FrameIterator {
	return &sliceIterator{frames: frames}
}

func (it *sliceIterator) Next() (Frame, bool) {
	if it.next >= len(it.frames) {
		return nil, false
	}
	f := it.frames[it.next]
	it.next++
	return f, true
}
