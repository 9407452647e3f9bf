package capture

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stacktrace "github.com/lumavm/stack-trace"
	"github.com/lumavm/stack-trace/heap/memheap"
	"github.com/lumavm/stack-trace/shapes"
)

// sliceSource replays a fixed frame slice, fresh iterator per walk.
type sliceSource struct {
	frames []stacktrace.Frame
}

func (s *sliceSource) Frames() stacktrace.FrameIterator {
	return stacktrace.NewSliceIterator(s.frames)
}

func source(frs ...stacktrace.Frame) FrameSource {
	return &sliceSource{frames: frs}
}

func testCapturer(t *testing.T, opts ...Option) *Capturer {
	t.Helper()
	compiled, err := shapes.Default().Compile()
	require.NoError(t, err)
	return New(compiled, opts...)
}

// suspended builds a closure of an async function suspended at
// yieldIndex, resuming at resumePC.
func suspended(name string, yieldIndex int64, resumePC uint64) *memheap.Closure {
	fn := memheap.NewAsyncFunction(name, map[int64]uint64{yieldIndex: resumePC})
	ctx := memheap.NewContext(yieldIndex, memheap.NewCompleter(memheap.NewFuture()))
	return memheap.NewClosure(fn, ctx)
}

func awaitedBy(callee, caller *memheap.Closure) {
	comp := callee.Ctx.Slots[1].(*memheap.Completer)
	comp.FutureObj.WithListener(memheap.NewListener(0).WithCallback(caller))
}

func syncStack(names ...string) FrameSource {
	frs := make([]stacktrace.Frame, len(names))
	for i, name := range names {
		frs[i] = memheap.NewFrame(memheap.NewFunction(name), uint64(i+1))
	}
	return source(frs...)
}

func asyncStack() FrameSource {
	a := suspended("a", 1, 0xA1)
	b := suspended("b", 1, 0xB1)
	awaitedBy(a, b)
	return source(
		memheap.NewFrame(memheap.NewFunction("pause"), 0x1),
		memheap.NewFrame(a.Func, 0xA0).WithClosure(a),
	)
}

func TestCapture_Sync(t *testing.T) {
	c := testCapturer(t)

	tr, err := c.Capture(Target{Name: "worker-0", Source: syncStack("leaf", "main")})
	require.NoError(t, err)

	assert.Equal(t, "worker-0", tr.Target)
	assert.False(t, tr.HasAsync)
	assert.False(t, tr.Truncated)
	assert.NotEmpty(t, tr.Fingerprint)
	assert.False(t, tr.CapturedAt.IsZero())

	require.Len(t, tr.Entries, 2)
	assert.Equal(t, "leaf", tr.Entries[0].Code.Name())
	assert.Equal(t, "main", tr.Entries[1].Code.Name())
}

func TestCapture_AsyncChain(t *testing.T) {
	c := testCapturer(t)

	tr, err := c.Capture(Target{Name: "paused", Source: asyncStack()})
	require.NoError(t, err)
	assert.True(t, tr.HasAsync)

	require.Len(t, tr.Entries, 3)
	assert.Equal(t, "pause", tr.Entries[0].Code.Name())
	assert.Equal(t, "a", tr.Entries[1].Code.Name())
	assert.Equal(t, "b", tr.Entries[2].Code.Name())
	assert.Equal(t, uint64(0xA1), tr.Entries[1].PC)
	assert.Equal(t, uint64(0xB1), tr.Entries[2].PC)
}

func TestCapture_Skip(t *testing.T) {
	c := testCapturer(t)

	tr, err := c.Capture(Target{
		Name:   "skipped",
		Source: syncStack("captureShim", "leaf", "main"),
		Skip:   1,
	})
	require.NoError(t, err)
	require.Len(t, tr.Entries, 2)
	assert.Equal(t, "leaf", tr.Entries[0].Code.Name())
}

// TestCapture_FingerprintStable ties the fingerprint to the logical
// stack, not to capture identity.
func TestCapture_FingerprintStable(t *testing.T) {
	c := testCapturer(t)

	first, err := c.Capture(Target{Name: "x", Source: syncStack("leaf", "main")})
	require.NoError(t, err)
	second, err := c.Capture(Target{Name: "y", Source: syncStack("leaf", "main")})
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.ID, second.ID)

	other, err := c.Capture(Target{Name: "z", Source: syncStack("leaf", "other")})
	require.NoError(t, err)
	assert.NotEqual(t, first.Fingerprint, other.Fingerprint)
}

func TestCapture_Truncation(t *testing.T) {
	c := testCapturer(t, WithCapacity(1))

	tr, err := c.Capture(Target{Name: "tiny", Source: syncStack("leaf", "main")})
	require.NoError(t, err)
	assert.True(t, tr.Truncated)
	require.Len(t, tr.Entries, 1)
	assert.Equal(t, "leaf", tr.Entries[0].Code.Name())
}

func TestCapture_Errors(t *testing.T) {
	c := testCapturer(t)

	_, err := c.Capture(Target{Name: "no source"})
	assert.Error(t, err)

	_, err = c.Capture(Target{Name: "empty", Source: source()})
	assert.Error(t, err)
}

func TestCaptureAll(t *testing.T) {
	c := testCapturer(t)

	targets := []Target{
		{Name: "one", Source: syncStack("a", "main")},
		{Name: "two", Source: asyncStack()},
		{Name: "three", Source: syncStack("c", "main")},
	}
	traces, err := c.CaptureAll(context.Background(), targets)
	require.NoError(t, err)
	require.Len(t, traces, 3)

	for i, target := range targets {
		assert.Equal(t, target.Name, traces[i].Target)
	}
	assert.True(t, traces[1].HasAsync)
}

func TestCaptureAll_FailureCancels(t *testing.T) {
	c := testCapturer(t)

	targets := []Target{
		{Name: "good", Source: syncStack("a", "main")},
		{Name: "bad", Source: source()},
	}
	_, err := c.CaptureAll(context.Background(), targets)
	assert.Error(t, err)
}
