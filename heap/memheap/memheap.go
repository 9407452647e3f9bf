package memheap

import (
	"github.com/lumavm/stack-trace/heap"
)

// Code is an in-memory code object.
type Code struct {
	CodeName string
}

func (c *Code) Name() string { return c.CodeName }

var _ heap.Code = (*Code)(nil)

// Function is an in-memory function with an optional yield table.
type Function struct {
	FuncName    string
	Mod         heap.Modifier
	IsSynthetic bool
	ParentFunc  *Function
	CodeObj     *Code

	// YieldTable maps yield index to resumption pc offset.
	YieldTable map[int64]uint64
}

func (f *Function) Name() string            { return f.FuncName }
func (f *Function) Modifier() heap.Modifier { return f.Mod }
func (f *Function) Synthetic() bool         { return f.IsSynthetic }

func (f *Function) Parent() (heap.Function, bool) {
	if f.ParentFunc == nil {
		return nil, false
	}
	return f.ParentFunc, true
}

func (f *Function) Code() (heap.Code, bool) {
	if f.CodeObj == nil {
		return nil, false
	}
	return f.CodeObj, true
}

func (f *Function) ResumePC(yieldIndex int64) (uint64, bool) {
	pc, ok := f.YieldTable[yieldIndex]
	return pc, ok
}

var _ heap.Function = (*Function)(nil)

// NewFunction creates a normal function with a code object of the same name.
func NewFunction(name string) *Function {
	return &Function{FuncName: name, CodeObj: &Code{CodeName: name}}
}

// NewAsyncFunction creates an async function with the given yield table.
func NewAsyncFunction(name string, yields map[int64]uint64) *Function {
	f := NewFunction(name)
	f.Mod = heap.ModifierAsync
	f.YieldTable = yields
	return f
}

// NewAsyncGenFunction creates an async-generator function.
func NewAsyncGenFunction(name string, yields map[int64]uint64) *Function {
	f := NewFunction(name)
	f.Mod = heap.ModifierAsyncGen
	f.YieldTable = yields
	return f
}

type object struct {
	kind  heap.Kind
	class string
}

func (o *object) Kind() heap.Kind   { return o.kind }
func (o *object) ClassName() string { return o.class }

// Closure is an in-memory closure.
type Closure struct {
	object
	Func *Function
	Ctx  *Context
}

func (c *Closure) Function() heap.Function { return c.Func }

func (c *Closure) Context() (heap.Context, bool) {
	if c.Ctx == nil {
		return nil, false
	}
	return c.Ctx, true
}

var _ heap.Closure = (*Closure)(nil)

// NewClosure creates a closure over fn capturing ctx (may be nil).
func NewClosure(fn *Function, ctx *Context) *Closure {
	return &Closure{
		object: object{kind: heap.KindClosure, class: "_Closure"},
		Func:   fn,
		Ctx:    ctx,
	}
}

// Context is an in-memory captured-variable context.
type Context struct {
	object
	Slots     []heap.Value
	ParentCtx *Context
}

func (c *Context) Len() int { return len(c.Slots) }

func (c *Context) At(i int) (heap.Value, bool) {
	if i < 0 || i >= len(c.Slots) {
		return nil, false
	}
	return c.Slots[i], true
}

func (c *Context) Parent() (heap.Context, bool) {
	if c.ParentCtx == nil {
		return nil, false
	}
	return c.ParentCtx, true
}

var _ heap.Context = (*Context)(nil)

// NewContext creates a context with the given slot values.
func NewContext(slots ...heap.Value) *Context {
	return &Context{
		object: object{kind: heap.KindContext, class: "_Context"},
		Slots:  slots,
	}
}

// Future is an in-memory future.
type Future struct {
	object
	FutureState heap.FutureState

	// Slot holds the result-or-listeners value: nil, a *Listener, or a
	// chained *Future.
	Slot heap.Object
}

func (f *Future) State() heap.FutureState { return f.FutureState }

func (f *Future) ResultOrListeners() (heap.Object, bool) {
	if f.Slot == nil {
		return nil, false
	}
	return f.Slot, true
}

var _ heap.Future = (*Future)(nil)

// NewFuture creates a pending future with an empty result slot.
func NewFuture() *Future {
	return &Future{object: object{kind: heap.KindFuture, class: "_Future"}}
}

// WithListener sets the future's slot to the given listener and returns
// the future.
func (f *Future) WithListener(l *Listener) *Future {
	f.Slot = l
	return f
}

// WithChained sets the future's slot to another future (await-of-await)
// and returns the future.
func (f *Future) WithChained(inner *Future) *Future {
	f.Slot = inner
	return f
}

// Listener is an in-memory future listener.
type Listener struct {
	object
	Bits         int
	CallbackObj  *Closure
	ResultFuture *Future
	NextListener *Listener
}

func (l *Listener) StateBits() int { return l.Bits }

func (l *Listener) Callback() (heap.Closure, bool) {
	if l.CallbackObj == nil {
		return nil, false
	}
	return l.CallbackObj, true
}

func (l *Listener) Result() (heap.Future, bool) {
	if l.ResultFuture == nil {
		return nil, false
	}
	return l.ResultFuture, true
}

func (l *Listener) Next() (heap.Listener, bool) {
	if l.NextListener == nil {
		return nil, false
	}
	return l.NextListener, true
}

var _ heap.Listener = (*Listener)(nil)

// NewListener creates a listener with the given state bits.
func NewListener(bits int) *Listener {
	return &Listener{
		object: object{kind: heap.KindListener, class: "_FutureListener"},
		Bits:   bits,
	}
}

// WithCallback sets the listener's callback closure and returns the listener.
func (l *Listener) WithCallback(c *Closure) *Listener {
	l.CallbackObj = c
	return l
}

// WithResult sets the listener's continuation future and returns the listener.
func (l *Listener) WithResult(f *Future) *Listener {
	l.ResultFuture = f
	return l
}

// WithNext links the following listener and returns the listener.
func (l *Listener) WithNext(next *Listener) *Listener {
	l.NextListener = next
	return l
}

// Completer is an in-memory completer.
type Completer struct {
	object
	FutureObj *Future
}

func (c *Completer) Future() (heap.Future, bool) {
	if c.FutureObj == nil {
		return nil, false
	}
	return c.FutureObj, true
}

var _ heap.Completer = (*Completer)(nil)

// NewCompleter creates a completer producing the given future.
func NewCompleter(f *Future) *Completer {
	return &Completer{
		object:    object{kind: heap.KindCompleter, class: "_AsyncAwaitCompleter"},
		FutureObj: f,
	}
}

// StreamController is an in-memory async-generator controller.
type StreamController struct {
	object
	Sub       *Subscription
	FutureObj *Future
}

func (s *StreamController) Subscription() (heap.Subscription, bool) {
	if s.Sub == nil {
		return nil, false
	}
	return s.Sub, true
}

func (s *StreamController) Future() (heap.Future, bool) {
	if s.FutureObj == nil {
		return nil, false
	}
	return s.FutureObj, true
}

var _ heap.StreamController = (*StreamController)(nil)

// NewStreamController creates a controller with no subscription and no
// awaiter future.
func NewStreamController() *StreamController {
	return &StreamController{
		object: object{kind: heap.KindStreamController, class: "_AsyncStarStreamController"},
	}
}

// WithSubscription attaches a consumer and returns the controller.
func (s *StreamController) WithSubscription(sub *Subscription) *StreamController {
	s.Sub = sub
	return s
}

// WithFuture sets the generator's awaiter future and returns the controller.
func (s *StreamController) WithFuture(f *Future) *StreamController {
	s.FutureObj = f
	return s
}

// Subscription is an in-memory stream subscription.
type Subscription struct {
	object
	OnDataObj *Closure
}

func (s *Subscription) OnData() (heap.Closure, bool) {
	if s.OnDataObj == nil {
		return nil, false
	}
	return s.OnDataObj, true
}

var _ heap.Subscription = (*Subscription)(nil)

// NewSubscription creates a subscription delivering to onData (may be nil).
func NewSubscription(onData *Closure) *Subscription {
	return &Subscription{
		object:    object{kind: heap.KindSubscription, class: "_BufferingStreamSubscription"},
		OnDataObj: onData,
	}
}

// Opaque is an object of no recognized shape, for malformed-heap tests.
type Opaque struct {
	object
}

// NewOpaque creates an object the walkers treat as shapeless.
func NewOpaque(class string) *Opaque {
	return &Opaque{object: object{kind: heap.KindOther, class: class}}
}
