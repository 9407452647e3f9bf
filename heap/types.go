package heap

// Kind identifies the shape of a heap object view.
type Kind int

const (
	KindOther Kind = iota
	KindClosure
	KindContext
	KindFuture
	KindListener
	KindCompleter
	KindStreamController
	KindSubscription
)

// String returns the lowercase name used in fixtures and logs.
func (k Kind) String() string {
	switch k {
	case KindClosure:
		return "closure"
	case KindContext:
		return "context"
	case KindFuture:
		return "future"
	case KindListener:
		return "listener"
	case KindCompleter:
		return "completer"
	case KindStreamController:
		return "controller"
	case KindSubscription:
		return "subscription"
	default:
		return "other"
	}
}

// Modifier describes how a function's body is compiled.
type Modifier int

const (
	ModifierNormal Modifier = iota
	ModifierAsync
	ModifierAsyncGen
)

func (m Modifier) String() string {
	switch m {
	case ModifierAsync:
		return "async"
	case ModifierAsyncGen:
		return "asyncgen"
	default:
		return "normal"
	}
}

// FutureState is the completion state of a Future.
type FutureState int

const (
	FuturePending FutureState = iota
	FutureComplete
	FutureError
)

func (s FutureState) String() string {
	switch s {
	case FutureComplete:
		return "complete"
	case FutureError:
		return "error"
	default:
		return "pending"
	}
}

// Object is the base view shared by all heap entities. Implementations
// must be comparable so that walkers can detect revisited nodes.
type Object interface {
	Kind() Kind
	ClassName() string
}

// Value is a context slot value: an int64, an Object, or nil.
type Value any

// AsInt extracts an integer slot value.
func AsInt(v Value) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// AsObject extracts an object slot value.
func AsObject(v Value) (Object, bool) {
	o, ok := v.(Object)
	return o, ok && o != nil
}

// Code is an opaque token identifying a compiled code object. It is
// carried through to the collected trace unchanged; symbolization is the
// formatting layer's job.
type Code interface {
	Name() string
}

// Function is a compiled function together with its yield table.
type Function interface {
	Name() string
	Modifier() Modifier

	// Synthetic reports whether the function is a runtime-generated
	// trampoline that must not appear in traces.
	Synthetic() bool

	// Parent is the enclosing function, if any.
	Parent() (Function, bool)

	Code() (Code, bool)

	// ResumePC maps a yield index captured in a suspended closure's
	// context to the program-counter offset execution resumes at.
	ResumePC(yieldIndex int64) (uint64, bool)
}

// Closure is a function reference plus captured context.
type Closure interface {
	Object
	Function() Function
	Context() (Context, bool)
}

// Context is a fixed-size array of captured variables, optionally
// linking to the enclosing context.
type Context interface {
	Object
	Len() int
	At(i int) (Value, bool)
	Parent() (Context, bool)
}

// IntAt reads an integer slot from a context.
func IntAt(c Context, i int) (int64, bool) {
	v, ok := c.At(i)
	if !ok {
		return 0, false
	}
	return AsInt(v)
}

// ObjectAt reads an object slot from a context.
func ObjectAt(c Context, i int) (Object, bool) {
	v, ok := c.At(i)
	if !ok {
		return nil, false
	}
	return AsObject(v)
}

// Future represents an eventually-available result.
type Future interface {
	Object
	State() FutureState

	// ResultOrListeners returns whatever occupies the future's single
	// result slot: a Listener (head of the listener list), another
	// Future in the chained-await case, or !ok when the slot is empty.
	ResultOrListeners() (Object, bool)
}

// Listener is a record attached to a Future describing a callback to run
// on completion.
type Listener interface {
	Object

	// StateBits holds the registration flags; shapes.Profile assigns
	// meaning to the individual bits.
	StateBits() int

	Callback() (Closure, bool)

	// Result is the future representing the callback's own asynchronous
	// continuation, if one was allocated at registration time.
	Result() (Future, bool)

	Next() (Listener, bool)
}

// Completer is the "I will eventually produce a result" object held in a
// suspended async function's context.
type Completer interface {
	Object
	Future() (Future, bool)
}

// StreamController backs an async-generator function.
type StreamController interface {
	Object

	// Subscription is the active consumer of yielded values, resolved
	// through the controller's var-data slot.
	Subscription() (Subscription, bool)

	// Future is the generator's awaiter future, used when no
	// subscription is attached yet.
	Future() (Future, bool)
}

// Subscription is a consumer attached to a stream controller.
type Subscription interface {
	Object
	OnData() (Closure, bool)
}
