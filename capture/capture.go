package capture

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/minio/highwayhash"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	stacktrace "github.com/lumavm/stack-trace"
	"github.com/lumavm/stack-trace/errors"
	"github.com/lumavm/stack-trace/shapes"
	"github.com/lumavm/stack-trace/unwind"
)

// DefaultCapacity is the trace buffer capacity used unless overridden.
const DefaultCapacity = 128

// FrameSource hands out a fresh top-down frame iterator per walk.
type FrameSource interface {
	Frames() stacktrace.FrameIterator
}

// Target is one paused execution context to reconstruct a trace for.
type Target struct {
	// Name identifies the target in logs and traces.
	Name string

	// Source provides the target's physical stack.
	Source FrameSource

	// Skip drops this many leading frames before collection, typically
	// the trace-requesting machinery itself.
	Skip int
}

// Trace is one reconstructed stack trace.
type Trace struct {
	ID         uuid.UUID
	Target     string
	CapturedAt time.Time

	// Entries is the ordered sequence, innermost physical frame first,
	// then the awaiter chain newest to oldest.
	Entries []stacktrace.Entry

	// HasAsync reports whether any heap-graph step occurred; a purely
	// synchronous stack never touches the continuation walker.
	HasAsync bool

	// Truncated reports that the buffer filled before the walk ended.
	Truncated bool

	// Fingerprint is a stable hash of the entry sequence, independent
	// of ID and capture time. Identical logical stacks share it.
	Fingerprint string
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithCapacity sets the per-trace entry capacity.
func WithCapacity(n int) Option {
	return func(c *Capturer) { c.capacity = n }
}

// Capturer reconstructs traces for paused targets.
type Capturer struct {
	uw       *unwind.Unwinder
	capacity int
}

// New creates a capturer over the given shape profile.
func New(profile *shapes.Compiled, opts ...Option) *Capturer {
	c := &Capturer{
		uw:       unwind.New(profile),
		capacity: DefaultCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capture reconstructs the trace of a single target.
//
// An empty stack is reported as an error (the one genuine defect in this
// layer); every other irregularity degrades to a shorter trace.
func (c *Capturer) Capture(target Target) (*Trace, error) {
	if target.Source == nil {
		return nil, errors.InvalidInput(errors.PhaseCapture, "target has no frame source")
	}

	buf := stacktrace.NewBuffer(c.capacity)
	hasAsync, err := c.uw.CollectFramesLazy(target.Source.Frames(), target.Skip, nil, buf)
	if err != nil {
		Logger().Error("trace capture failed",
			zap.String("target", target.Name),
			zap.Error(err))
		return nil, err
	}

	tr := &Trace{
		ID:          uuid.New(),
		Target:      target.Name,
		CapturedAt:  time.Now(),
		Entries:     buf.Entries(),
		HasAsync:    hasAsync,
		Truncated:   buf.Truncated(),
		Fingerprint: fingerprint(buf.Entries()),
	}
	Logger().Debug("trace captured",
		zap.String("target", target.Name),
		zap.String("id", tr.ID.String()),
		zap.Int("entries", len(tr.Entries)),
		zap.Bool("hasAsync", hasAsync),
		zap.Bool("truncated", tr.Truncated))
	return tr, nil
}

// CaptureAll reconstructs traces for several independent targets,
// walking each on its own goroutine. The first failure cancels the
// remaining walks via ctx; traces are returned in target order.
func (c *Capturer) CaptureAll(ctx context.Context, targets []Target) ([]*Trace, error) {
	traces := make([]*Trace, len(targets))
	g, ctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tr, err := c.Capture(target)
			if err != nil {
				return err
			}
			traces[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return traces, nil
}

var fingerprintKey = [32]byte{}

// fingerprint hashes the entry sequence: code names, pc offsets and the
// catch-error flags, in order.
func fingerprint(entries []stacktrace.Entry) string {
	hasher, err := highwayhash.New64(fingerprintKey[:])
	if err != nil {
		return ""
	}
	var scratch [9]byte
	for _, e := range entries {
		if e.Code != nil {
			hasher.Write([]byte(e.Code.Name()))
		}
		binary.LittleEndian.PutUint64(scratch[:8], e.PC)
		scratch[8] = 0
		if e.CatchError {
			scratch[8] = 1
		}
		hasher.Write(scratch[:])
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
