package unwind

import (
	"go.uber.org/zap"

	stacktrace "github.com/lumavm/stack-trace"
	"github.com/lumavm/stack-trace/awaiter"
	"github.com/lumavm/stack-trace/errors"
	"github.com/lumavm/stack-trace/frames"
	"github.com/lumavm/stack-trace/heap"
	"github.com/lumavm/stack-trace/shapes"
)

// Unwinder stitches physical-frame capture to awaiter-chain unwinding.
type Unwinder struct {
	finder *awaiter.CallerFinder
}

// New creates an unwinder over the given shape profile.
func New(profile *shapes.Compiled) *Unwinder {
	return &Unwinder{finder: awaiter.NewCallerFinder(profile)}
}

// NewWithFinder creates an unwinder sharing an existing caller finder.
func NewWithFinder(finder *awaiter.CallerFinder) *Unwinder {
	return &Unwinder{finder: finder}
}

// Finder returns the continuation-graph walker in use.
func (u *Unwinder) Finder() *awaiter.CallerFinder {
	return u.finder
}

// CollectFrames performs pure physical capture: it writes one (code, pc)
// entry per frame after skipping the first skip frames, until the stack
// or the buffer runs out, and returns the number written. A stack
// shorter than the buffer is not an error.
func CollectFrames(it stacktrace.FrameIterator, buf *stacktrace.Buffer, skip int) int {
	if it == nil || buf == nil {
		return 0
	}
	written := 0
	for {
		fr, ok := it.Next()
		if !ok {
			return written
		}
		if skip > 0 {
			skip--
			continue
		}
		code, ok := fr.Code()
		if !ok {
			continue
		}
		if !buf.Append(stacktrace.Entry{Code: code, PC: fr.PC()}) {
			return written
		}
		written++
	}
}

// CollectFramesLazy walks physical frames top-down after skipping the
// first skip frames. Ordinary synchronous frames are appended to buf
// (and reported to onSyncFrame when provided) until a frame is found
// whose function has actually suspended; from there the awaiter chain
// supplies the remaining entries. hasAsync reports whether any
// heap-graph step occurred.
//
// The returned error is non-nil only when the iterator yields no frames
// at all; callers are expected to log that as a defect rather than
// swallow it.
func (u *Unwinder) CollectFramesLazy(
	it stacktrace.FrameIterator,
	skip int,
	onSyncFrame func(stacktrace.Frame),
	buf *stacktrace.Buffer,
) (hasAsync bool, err error) {
	if it == nil || buf == nil {
		return false, errors.InvalidInput(errors.PhaseCapture, "nil frame iterator or buffer")
	}

	sawFrame := false
	for {
		fr, ok := it.Next()
		if !ok {
			break
		}
		sawFrame = true
		if skip > 0 {
			skip--
			continue
		}

		cl := frames.Classify(u.finder, fr)
		if cl.AsyncLeaf {
			u.UnwindAwaiterChain(cl.Closure, buf)
			hasAsync = true
			break
		}
		if cl.SkipFrame {
			continue
		}
		code, ok := fr.Code()
		if !ok {
			continue
		}
		if !buf.Append(stacktrace.Entry{Code: code, PC: fr.PC()}) {
			break
		}
		if onSyncFrame != nil {
			onSyncFrame(fr)
		}
	}

	if !sawFrame {
		return false, errors.EmptyStack(errors.PhaseCapture)
	}
	return hasAsync, nil
}

// UnwindAwaiterChain appends the logical callers of leaf to buf, newest
// first. Each closure's yield index resolves through its function's
// yield table to the pc execution will resume at; the chain ends when no
// caller is found, the buffer fills up, or the profile's step bound is
// hit.
func (u *Unwinder) UnwindAwaiterChain(leaf heap.Closure, buf *stacktrace.Buffer) {
	c := leaf
	catchError := false
	maxSteps := u.finder.Profile().MaxChainSteps

	for step := 0; c != nil && step < maxSteps; step++ {
		yieldIndex, ok := u.finder.YieldIndex(c)
		if !ok {
			return
		}
		fn := c.Function()
		if fn == nil {
			return
		}
		code, ok := fn.Code()
		if !ok {
			return
		}
		pc, ok := fn.ResumePC(yieldIndex)
		if !ok {
			Logger().Debug("yield index missing from yield table",
				zap.String("function", fn.Name()),
				zap.Int64("yieldIndex", yieldIndex))
			return
		}
		if !buf.Append(stacktrace.Entry{Code: code, PC: pc, CatchError: catchError}) {
			return
		}
		edge, ok := u.finder.FindCallerEdge(c)
		if !ok {
			return
		}
		c = edge.Closure
		catchError = edge.CatchError
	}
}
