package awaiter

import (
	"github.com/lumavm/stack-trace/heap"
	"github.com/lumavm/stack-trace/shapes"
)

// CallerFinder locates the logical caller of a suspended continuation by
// walking future and listener objects on the target heap.
type CallerFinder struct {
	profile *shapes.Compiled
}

// NewCallerFinder creates a finder using the given shape profile.
func NewCallerFinder(profile *shapes.Compiled) *CallerFinder {
	return &CallerFinder{profile: profile}
}

// Profile returns the shape profile the finder was built with.
func (f *CallerFinder) Profile() *shapes.Compiled {
	return f.profile
}

// IsRunningAsync reports whether the closure belongs to an async or
// async-generator function body that has actually suspended at least
// once. A function that completed without ever yielding keeps a zero
// suspend-state slot and must never be reported as having an awaiting
// caller.
func (f *CallerFinder) IsRunningAsync(c heap.Closure) bool {
	if c == nil {
		return false
	}
	fn := c.Function()
	if fn == nil || fn.Modifier() == heap.ModifierNormal {
		return false
	}
	ctx, ok := c.Context()
	if !ok {
		return false
	}
	yieldIndex, ok := heap.IntAt(ctx, f.profile.SuspendStateSlot)
	return ok && yieldIndex > 0
}

// YieldIndex reads the closure's suspend-state slot. Valid only while
// the function is suspended mid-body.
func (f *CallerFinder) YieldIndex(c heap.Closure) (int64, bool) {
	if c == nil {
		return 0, false
	}
	ctx, ok := c.Context()
	if !ok {
		return 0, false
	}
	return heap.IntAt(ctx, f.profile.SuspendStateSlot)
}

// AsyncFuture resolves the future a suspended async function will
// complete, read through the completer in the closure's context. Some
// library versions store the future directly in the slot; both shapes
// are accepted.
func (f *CallerFinder) AsyncFuture(c heap.Closure) (heap.Future, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Context()
	if !ok {
		return nil, false
	}
	obj, ok := heap.ObjectAt(ctx, f.profile.CompleterSlot)
	if !ok {
		return nil, false
	}
	switch v := obj.(type) {
	case heap.Completer:
		return v.Future()
	case heap.Future:
		return v, true
	default:
		return nil, false
	}
}

// Edge is one resolved hop in the await chain: the caller closure and
// whether the listener carrying it was registered as an error handler.
type Edge struct {
	Closure    heap.Closure
	CatchError bool
}

// FindCaller returns the closure one step upstream in the logical await
// chain, or false when the top of the reconstructable chain is reached.
func (f *CallerFinder) FindCaller(c heap.Closure) (heap.Closure, bool) {
	caller, _, ok := f.findCaller(c, 0)
	return caller, ok
}

// FindCallerEdge behaves like FindCaller but also reports whether the
// hop crossed an error-handling listener, so consumers can annotate or
// filter those chain edges.
func (f *CallerFinder) FindCallerEdge(c heap.Closure) (Edge, bool) {
	caller, l, ok := f.findCaller(c, 0)
	if !ok {
		return Edge{}, false
	}
	return Edge{Closure: caller, CatchError: l != nil && f.HasCatchError(l)}, true
}

func (f *CallerFinder) findCaller(c heap.Closure, unwrapDepth int) (heap.Closure, heap.Listener, bool) {
	if c == nil {
		return nil, nil, false
	}
	fn := c.Function()
	if fn == nil {
		return nil, nil, false
	}

	if f.IsRunningAsync(c) {
		if fn.Modifier() == heap.ModifierAsyncGen {
			ctx, ok := c.Context()
			if !ok {
				return nil, nil, false
			}
			return f.callerInAsyncGen(ctx)
		}
		fut, ok := f.AsyncFuture(c)
		if !ok {
			return nil, nil, false
		}
		return f.callerInFuture(fut)
	}

	// Synthetic wrappers installed by combinators stand in for the
	// closure they capture; peel and resolve that one instead.
	if f.profile.IsWrapper(fn.Name()) {
		if unwrapDepth >= f.profile.MaxUnwrapDepth {
			return nil, nil, false
		}
		wrapped, ok := f.unwrapOnce(c)
		if !ok {
			return nil, nil, false
		}
		return f.findCaller(wrapped, unwrapDepth+1)
	}

	return nil, nil, false
}

// CallerInFuture resolves the awaiting closure registered on a future.
// A future whose result slot holds another future is the immediate
// post-creation state of an await-of-await; the chain is followed to the
// future that actually carries listeners.
func (f *CallerFinder) CallerInFuture(fut heap.Future) (heap.Closure, bool) {
	caller, _, ok := f.callerInFuture(fut)
	return caller, ok
}

func (f *CallerFinder) callerInFuture(fut heap.Future) (heap.Closure, heap.Listener, bool) {
	for step := 0; fut != nil && step < f.profile.MaxFlattenSteps; step++ {
		obj, ok := fut.ResultOrListeners()
		if !ok {
			return nil, nil, false
		}
		switch v := obj.(type) {
		case heap.Future:
			fut = v
		case heap.Listener:
			return f.callerInListener(v)
		default:
			return nil, nil, false
		}
	}
	return nil, nil, false
}

// CallerInListener follows the listener's result slot while it points to
// another internally-generated continuation future, then returns the
// bottom listener's callback closure, unwrapped if it is a synthetic
// thunk. A listener with neither a result future nor a usable callback
// yields nothing.
func (f *CallerFinder) CallerInListener(l heap.Listener) (heap.Closure, bool) {
	caller, _, ok := f.callerInListener(l)
	return caller, ok
}

func (f *CallerFinder) callerInListener(l heap.Listener) (heap.Closure, heap.Listener, bool) {
	for step := 0; l != nil && step < f.profile.MaxFlattenSteps; step++ {
		fut, ok := l.Result()
		if !ok {
			break
		}
		obj, ok := fut.ResultOrListeners()
		if !ok {
			break
		}
		next, ok := obj.(heap.Listener)
		if !ok {
			break
		}
		l = next
	}
	if l == nil {
		return nil, nil, false
	}
	cb, ok := l.Callback()
	if !ok {
		return nil, nil, false
	}
	caller, ok := f.UnwrapThenCallback(cb)
	if !ok {
		return nil, nil, false
	}
	return caller, l, true
}

// CallerInAsyncGen finds the caller closure from an async-generator
// receiver context: the attached onData consumer if a subscription
// exists, otherwise whoever awaits the generator's own future.
func (f *CallerFinder) CallerInAsyncGen(ctx heap.Context) (heap.Closure, bool) {
	caller, _, ok := f.callerInAsyncGen(ctx)
	return caller, ok
}

func (f *CallerFinder) callerInAsyncGen(ctx heap.Context) (heap.Closure, heap.Listener, bool) {
	obj, ok := heap.ObjectAt(ctx, f.profile.CompleterSlot)
	if !ok {
		return nil, nil, false
	}
	ctrl, ok := obj.(heap.StreamController)
	if !ok {
		return nil, nil, false
	}
	if sub, ok := ctrl.Subscription(); ok {
		if onData, ok := sub.OnData(); ok {
			caller, ok := f.UnwrapThenCallback(onData)
			if !ok {
				return nil, nil, false
			}
			return caller, nil, true
		}
	}
	if fut, ok := ctrl.Future(); ok {
		return f.callerInFuture(fut)
	}
	return nil, nil, false
}

// HasCatchError reports whether the listener was registered specifically
// to catch or transform errors rather than as an ordinary continuation.
func (f *CallerFinder) HasCatchError(l heap.Listener) bool {
	if l == nil {
		return false
	}
	return l.StateBits()&f.profile.CatchErrorMask != 0
}

// UnwrapThenCallback peels synthetic await-wrapper closures until the
// closure they truly represent surfaces. Non-wrapper closures pass
// through unchanged.
func (f *CallerFinder) UnwrapThenCallback(c heap.Closure) (heap.Closure, bool) {
	for depth := 0; c != nil && depth < f.profile.MaxUnwrapDepth; depth++ {
		fn := c.Function()
		if fn == nil {
			return nil, false
		}
		if !f.profile.IsWrapper(fn.Name()) {
			return c, true
		}
		wrapped, ok := f.unwrapOnce(c)
		if !ok {
			return nil, false
		}
		c = wrapped
	}
	return nil, false
}

func (f *CallerFinder) unwrapOnce(c heap.Closure) (heap.Closure, bool) {
	ctx, ok := c.Context()
	if !ok {
		return nil, false
	}
	obj, ok := heap.ObjectAt(ctx, f.profile.WrappedCallbackSlot)
	if !ok {
		return nil, false
	}
	wrapped, ok := obj.(heap.Closure)
	return wrapped, ok
}
