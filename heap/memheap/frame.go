package memheap

import (
	"github.com/lumavm/stack-trace/heap"
)

// Frame is an in-memory physical stack frame for synthetic stacks.
type Frame struct {
	PCVal      uint64
	Func       *Function
	ClosureObj *Closure
}

func (f *Frame) PC() uint64 { return f.PCVal }

func (f *Frame) Function() (heap.Function, bool) {
	if f.Func == nil {
		return nil, false
	}
	return f.Func, true
}

func (f *Frame) Code() (heap.Code, bool) {
	if f.Func == nil {
		return nil, false
	}
	return f.Func.Code()
}

func (f *Frame) Closure() (heap.Closure, bool) {
	if f.ClosureObj == nil {
		return nil, false
	}
	return f.ClosureObj, true
}

// NewFrame creates a frame executing fn at pc.
func NewFrame(fn *Function, pc uint64) *Frame {
	return &Frame{PCVal: pc, Func: fn}
}

// WithClosure attaches the frame's continuation closure and returns the
// frame.
func (f *Frame) WithClosure(c *Closure) *Frame {
	f.ClosureObj = c
	return f
}
