package frames

import (
	stacktrace "github.com/lumavm/stack-trace"
	"github.com/lumavm/stack-trace/awaiter"
	"github.com/lumavm/stack-trace/heap"
)

// CountFrames counts stack frames after skipping the first skip frames.
//
// If target is non-nil, counting stops upon reaching a frame whose
// function is a direct child of target, and syncAsyncEnd reports that
// the target call is still executing synchronously (it never suspended,
// so no heap-graph walk is needed for it). When target is nil or never
// reached, syncAsyncEnd is false and count covers the whole stack.
func CountFrames(it stacktrace.FrameIterator, skip int, target heap.Function) (count int, syncAsyncEnd bool) {
	if it == nil {
		return 0, false
	}
	for {
		fr, ok := it.Next()
		if !ok {
			return count, false
		}
		if skip > 0 {
			skip--
			continue
		}
		count++
		if target == nil {
			continue
		}
		fn, ok := fr.Function()
		if !ok {
			continue
		}
		if parent, ok := fn.Parent(); ok && parent == target {
			return count, true
		}
	}
}

// ClosureInFrame extracts the continuation closure captured in the frame
// and checks that it belongs to the given function. Frames of ordinary
// functions carry no closure.
func ClosureInFrame(fr stacktrace.Frame, fn heap.Function) (heap.Closure, bool) {
	if fr == nil {
		return nil, false
	}
	c, ok := fr.Closure()
	if !ok {
		return nil, false
	}
	if fn != nil && c.Function() != fn {
		return nil, false
	}
	return c, true
}

// Classification describes one frame's role in the trace.
type Classification struct {
	// Closure is the frame's continuation closure when AsyncLeaf is set.
	Closure heap.Closure

	// SkipFrame marks synthetic trampoline frames that must not appear
	// in the final trace.
	SkipFrame bool

	// AsyncLeaf marks the frame where physical capture ends and
	// heap-graph caller resolution begins: its function is async or
	// async-generator and has actually suspended before.
	AsyncLeaf bool
}

// Classify inspects one frame. A frame whose function cannot be resolved
// is skipped; an async frame that never suspended (the sync-async fast
// path) stays an ordinary synchronous frame.
func Classify(finder *awaiter.CallerFinder, fr stacktrace.Frame) Classification {
	fn, ok := fr.Function()
	if !ok {
		return Classification{SkipFrame: true}
	}
	cl := Classification{SkipFrame: fn.Synthetic()}
	if fn.Modifier() == heap.ModifierNormal {
		return cl
	}
	c, ok := ClosureInFrame(fr, fn)
	if !ok {
		return cl
	}
	if finder.IsRunningAsync(c) {
		cl.Closure = c
		cl.AsyncLeaf = true
	}
	return cl
}
