package snapfile

import (
	"os"

	"gopkg.in/yaml.v3"

	stacktrace "github.com/lumavm/stack-trace"
	"github.com/lumavm/stack-trace/errors"
	"github.com/lumavm/stack-trace/heap"
	"github.com/lumavm/stack-trace/heap/memheap"
)

// Snapshot is a decoded fixture: a synthetic heap plus the physical
// stack at capture time.
type Snapshot struct {
	functions map[string]*memheap.Function
	objects   map[string]heap.Object
	frames    []stacktrace.Frame
}

// Function looks up a fixture function by name.
func (s *Snapshot) Function(name string) (*memheap.Function, bool) {
	fn, ok := s.functions[name]
	return fn, ok
}

// Object looks up a fixture heap object by id.
func (s *Snapshot) Object(id string) (heap.Object, bool) {
	o, ok := s.objects[id]
	return o, ok
}

// FrameCount is the number of physical frames in the fixture stack.
func (s *Snapshot) FrameCount() int {
	return len(s.frames)
}

// Frames returns a fresh iterator over the fixture stack, innermost
// frame first. Each call restarts from the top.
func (s *Snapshot) Frames() stacktrace.FrameIterator {
	return stacktrace.NewSliceIterator(s.frames)
}

type fileDoc struct {
	Functions []functionDoc `yaml:"functions"`
	Objects   []objectDoc   `yaml:"objects"`
	Stack     []frameDoc    `yaml:"stack"`
}

type functionDoc struct {
	Name      string           `yaml:"name"`
	Modifier  string           `yaml:"modifier"`
	Synthetic bool             `yaml:"synthetic"`
	Parent    string           `yaml:"parent"`
	Yields    map[int64]uint64 `yaml:"yields"`
}

type objectDoc struct {
	ID    string `yaml:"id"`
	Kind  string `yaml:"kind"`
	Class string `yaml:"class"`

	// closure
	Function string `yaml:"function"`
	Context  string `yaml:"context"`

	// context
	Slots  []slotDoc `yaml:"slots"`
	Parent string    `yaml:"parent"`

	// future
	State string `yaml:"state"`
	Slot  string `yaml:"slot"`

	// listener
	Bits     int    `yaml:"bits"`
	Callback string `yaml:"callback"`
	Result   string `yaml:"result"`
	Next     string `yaml:"next"`

	// completer / controller
	Future       string `yaml:"future"`
	Subscription string `yaml:"subscription"`

	// subscription
	OnData string `yaml:"ondata"`
}

type slotDoc struct {
	Int *int64 `yaml:"int"`
	Ref string `yaml:"ref"`
}

type frameDoc struct {
	Function string `yaml:"function"`
	PC       uint64 `yaml:"pc"`
	Closure  string `yaml:"closure"`
}

// Parse decodes a fixture document.
func Parse(data []byte) (*Snapshot, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseFixture, errors.KindInvalidData, err, "decode snapshot yaml")
	}
	return build(&doc)
}

// LoadFile reads and decodes a fixture file.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseFixture, errors.KindNotFound, err, "read snapshot file")
	}
	return Parse(data)
}

func build(doc *fileDoc) (*Snapshot, error) {
	s := &Snapshot{
		functions: make(map[string]*memheap.Function, len(doc.Functions)),
		objects:   make(map[string]heap.Object, len(doc.Objects)),
	}

	// Functions first: closures and frames refer to them by name.
	for _, fd := range doc.Functions {
		if fd.Name == "" {
			return nil, errors.InvalidData(errors.PhaseFixture, []string{"functions"}, "function without a name")
		}
		fn := memheap.NewFunction(fd.Name)
		switch fd.Modifier {
		case "", "normal":
		case "async":
			fn.Mod = heap.ModifierAsync
		case "asyncgen":
			fn.Mod = heap.ModifierAsyncGen
		default:
			return nil, errors.New(errors.PhaseFixture, errors.KindInvalidData).
				Path("functions", fd.Name).
				Detail("unknown modifier %q", fd.Modifier).
				Build()
		}
		fn.IsSynthetic = fd.Synthetic
		fn.YieldTable = fd.Yields
		s.functions[fd.Name] = fn
	}
	for _, fd := range doc.Functions {
		if fd.Parent == "" {
			continue
		}
		parent, ok := s.functions[fd.Parent]
		if !ok {
			return nil, errors.New(errors.PhaseFixture, errors.KindInvalidData).
				Path("functions", fd.Name).
				Detail("unknown parent %q", fd.Parent).
				Build()
		}
		s.functions[fd.Name].ParentFunc = parent
	}

	// Objects in two passes: allocate, then link references.
	for _, od := range doc.Objects {
		if od.ID == "" {
			return nil, errors.InvalidData(errors.PhaseFixture, []string{"objects"}, "object without an id")
		}
		obj, err := allocate(s, &od)
		if err != nil {
			return nil, err
		}
		s.objects[od.ID] = obj
	}
	for _, od := range doc.Objects {
		if err := link(s, &od); err != nil {
			return nil, err
		}
	}

	for i, fd := range doc.Stack {
		fn, ok := s.functions[fd.Function]
		if !ok {
			return nil, errors.New(errors.PhaseFixture, errors.KindInvalidData).
				Path("stack").
				Detail("frame %d names unknown function %q", i, fd.Function).
				Build()
		}
		fr := memheap.NewFrame(fn, fd.PC)
		if fd.Closure != "" {
			c, ok := s.objects[fd.Closure].(*memheap.Closure)
			if !ok {
				return nil, errors.New(errors.PhaseFixture, errors.KindInvalidData).
					Path("stack").
					Detail("frame %d closure %q is not a closure", i, fd.Closure).
					Build()
			}
			fr.WithClosure(c)
		}
		s.frames = append(s.frames, fr)
	}

	return s, nil
}

func allocate(s *Snapshot, od *objectDoc) (heap.Object, error) {
	switch od.Kind {
	case "closure":
		fn, ok := s.functions[od.Function]
		if !ok {
			return nil, badObject(od.ID, "unknown function %q", od.Function)
		}
		return memheap.NewClosure(fn, nil), nil
	case "context":
		return memheap.NewContext(make([]heap.Value, len(od.Slots))...), nil
	case "future":
		f := memheap.NewFuture()
		switch od.State {
		case "", "pending":
		case "complete":
			f.FutureState = heap.FutureComplete
		case "error":
			f.FutureState = heap.FutureError
		default:
			return nil, badObject(od.ID, "unknown future state %q", od.State)
		}
		return f, nil
	case "listener":
		return memheap.NewListener(od.Bits), nil
	case "completer":
		return memheap.NewCompleter(nil), nil
	case "controller":
		return memheap.NewStreamController(), nil
	case "subscription":
		return memheap.NewSubscription(nil), nil
	case "other":
		class := od.Class
		if class == "" {
			class = "_Unknown"
		}
		return memheap.NewOpaque(class), nil
	default:
		return nil, badObject(od.ID, "unknown kind %q", od.Kind)
	}
}

func link(s *Snapshot, od *objectDoc) error {
	switch obj := s.objects[od.ID].(type) {
	case *memheap.Closure:
		if od.Context != "" {
			ctx, err := resolveAs[*memheap.Context](s, od.ID, od.Context)
			if err != nil {
				return err
			}
			obj.Ctx = ctx
		}
	case *memheap.Context:
		for i, sd := range od.Slots {
			switch {
			case sd.Int != nil:
				obj.Slots[i] = *sd.Int
			case sd.Ref != "":
				ref, ok := s.objects[sd.Ref]
				if !ok {
					return badObject(od.ID, "slot %d references unknown object %q", i, sd.Ref)
				}
				obj.Slots[i] = ref
			}
		}
		if od.Parent != "" {
			parent, err := resolveAs[*memheap.Context](s, od.ID, od.Parent)
			if err != nil {
				return err
			}
			obj.ParentCtx = parent
		}
	case *memheap.Future:
		if od.Slot != "" {
			ref, ok := s.objects[od.Slot]
			if !ok {
				return badObject(od.ID, "slot references unknown object %q", od.Slot)
			}
			obj.Slot = ref
		}
	case *memheap.Listener:
		if od.Callback != "" {
			cb, err := resolveAs[*memheap.Closure](s, od.ID, od.Callback)
			if err != nil {
				return err
			}
			obj.CallbackObj = cb
		}
		if od.Result != "" {
			res, err := resolveAs[*memheap.Future](s, od.ID, od.Result)
			if err != nil {
				return err
			}
			obj.ResultFuture = res
		}
		if od.Next != "" {
			next, err := resolveAs[*memheap.Listener](s, od.ID, od.Next)
			if err != nil {
				return err
			}
			obj.NextListener = next
		}
	case *memheap.Completer:
		if od.Future != "" {
			fut, err := resolveAs[*memheap.Future](s, od.ID, od.Future)
			if err != nil {
				return err
			}
			obj.FutureObj = fut
		}
	case *memheap.StreamController:
		if od.Subscription != "" {
			sub, err := resolveAs[*memheap.Subscription](s, od.ID, od.Subscription)
			if err != nil {
				return err
			}
			obj.Sub = sub
		}
		if od.Future != "" {
			fut, err := resolveAs[*memheap.Future](s, od.ID, od.Future)
			if err != nil {
				return err
			}
			obj.FutureObj = fut
		}
	case *memheap.Subscription:
		if od.OnData != "" {
			onData, err := resolveAs[*memheap.Closure](s, od.ID, od.OnData)
			if err != nil {
				return err
			}
			obj.OnDataObj = onData
		}
	}
	return nil
}

func resolveAs[T heap.Object](s *Snapshot, owner, id string) (T, error) {
	var zero T
	ref, ok := s.objects[id]
	if !ok {
		return zero, badObject(owner, "references unknown object %q", id)
	}
	typed, ok := ref.(T)
	if !ok {
		return zero, badObject(owner, "object %q has kind %s, want %T", id, ref.Kind(), zero)
	}
	return typed, nil
}

func badObject(id, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseFixture, errors.KindInvalidData).
		Path("objects", id).
		Detail(format, args...).
		Build()
}
