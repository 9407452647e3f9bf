package frames

import (
	"testing"

	stacktrace "github.com/lumavm/stack-trace"
	"github.com/lumavm/stack-trace/awaiter"
	"github.com/lumavm/stack-trace/heap/memheap"
	"github.com/lumavm/stack-trace/shapes"
)

func testFinder(t *testing.T) *awaiter.CallerFinder {
	t.Helper()
	compiled, err := shapes.Default().Compile()
	if err != nil {
		t.Fatalf("compile default profile: %v", err)
	}
	return awaiter.NewCallerFinder(compiled)
}

func stack(frs ...stacktrace.Frame) stacktrace.FrameIterator {
	return stacktrace.NewSliceIterator(frs)
}

// TestCountFrames_NoTarget counts the whole stack past the skip prefix.
func TestCountFrames_NoTarget(t *testing.T) {
	tests := []struct {
		name string
		size int
		skip int
		want int
	}{
		{name: "full stack", size: 4, skip: 0, want: 4},
		{name: "skip prefix", size: 4, skip: 2, want: 2},
		{name: "skip everything", size: 2, skip: 5, want: 0},
		{name: "empty stack", size: 0, skip: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frs := make([]stacktrace.Frame, tt.size)
			for i := range frs {
				frs[i] = memheap.NewFrame(memheap.NewFunction("f"), uint64(i))
			}
			count, end := CountFrames(stack(frs...), tt.skip, nil)
			if count != tt.want {
				t.Errorf("count = %d, want %d", count, tt.want)
			}
			if end {
				t.Error("without a target, syncAsyncEnd must be false")
			}
		})
	}
}

// TestCountFrames_Target stops at the frame whose function is a direct
// child of the target: the target call is still running synchronously.
func TestCountFrames_Target(t *testing.T) {
	target := memheap.NewAsyncFunction("outer", nil)
	child := memheap.NewFunction("outer.<anonymous>")
	child.ParentFunc = target

	count, end := CountFrames(stack(
		memheap.NewFrame(memheap.NewFunction("leaf"), 0x1),
		memheap.NewFrame(child, 0x2),
		memheap.NewFrame(memheap.NewFunction("below"), 0x3),
	), 0, target)
	if count != 2 {
		t.Errorf("count = %d, want 2 (stop at the target's child)", count)
	}
	if !end {
		t.Error("reaching the target's child should report a synchronous end")
	}

	count, end = CountFrames(stack(
		memheap.NewFrame(memheap.NewFunction("leaf"), 0x1),
		memheap.NewFrame(memheap.NewFunction("other"), 0x2),
	), 0, target)
	if count != 2 || end {
		t.Errorf("unreached target: count = %d end = %v, want 2 false", count, end)
	}
}

// TestClosureInFrame checks ownership of the captured closure.
func TestClosureInFrame(t *testing.T) {
	fn := memheap.NewAsyncFunction("owner", nil)
	other := memheap.NewAsyncFunction("other", nil)
	c := memheap.NewClosure(fn, memheap.NewContext())

	if got, ok := ClosureInFrame(memheap.NewFrame(fn, 0).WithClosure(c), fn); !ok || got != c {
		t.Errorf("ClosureInFrame = %v, %v; want the frame's closure", got, ok)
	}
	if _, ok := ClosureInFrame(memheap.NewFrame(fn, 0).WithClosure(c), other); ok {
		t.Error("closure of a different function should not match")
	}
	if _, ok := ClosureInFrame(memheap.NewFrame(fn, 0), fn); ok {
		t.Error("frame without a closure should not match")
	}
	if _, ok := ClosureInFrame(nil, fn); ok {
		t.Error("nil frame should not match")
	}
}

// TestClassify covers the skip, sync, fast-path and async-leaf roles.
func TestClassify(t *testing.T) {
	finder := testFinder(t)

	syntheticFn := memheap.NewFunction("trampoline")
	syntheticFn.IsSynthetic = true

	asyncFn := memheap.NewAsyncFunction("worker", map[int64]uint64{1: 0x10})
	suspendedClosure := memheap.NewClosure(asyncFn,
		memheap.NewContext(int64(1), memheap.NewCompleter(memheap.NewFuture())))
	freshClosure := memheap.NewClosure(asyncFn,
		memheap.NewContext(int64(0), memheap.NewCompleter(memheap.NewFuture())))

	tests := []struct {
		name      string
		frame     *memheap.Frame
		wantSkip  bool
		wantAsync bool
	}{
		{
			name:     "no function resolves to skip",
			frame:    &memheap.Frame{PCVal: 0x1},
			wantSkip: true,
		},
		{
			name:     "synthetic trampoline",
			frame:    memheap.NewFrame(syntheticFn, 0x2),
			wantSkip: true,
		},
		{
			name:  "ordinary sync frame",
			frame: memheap.NewFrame(memheap.NewFunction("plain"), 0x3),
		},
		{
			name:  "async frame without closure",
			frame: memheap.NewFrame(asyncFn, 0x4),
		},
		{
			name:  "async frame that never suspended",
			frame: memheap.NewFrame(asyncFn, 0x5).WithClosure(freshClosure),
		},
		{
			name:      "suspended async leaf",
			frame:     memheap.NewFrame(asyncFn, 0x6).WithClosure(suspendedClosure),
			wantAsync: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := Classify(finder, tt.frame)
			if cl.SkipFrame != tt.wantSkip {
				t.Errorf("SkipFrame = %v, want %v", cl.SkipFrame, tt.wantSkip)
			}
			if cl.AsyncLeaf != tt.wantAsync {
				t.Errorf("AsyncLeaf = %v, want %v", cl.AsyncLeaf, tt.wantAsync)
			}
			if tt.wantAsync && cl.Closure == nil {
				t.Error("async leaf should carry its closure")
			}
		})
	}
}
