// Package stacktrace reconstructs logical call-stack traces for suspended
// asynchronous computations running on a managed-language VM.
//
// An async function returns control to its caller at every suspension
// point, so the physical execution stack only shows the frames active
// right now. The frames that led to the current await chain survive as
// heap objects: closures, futures and listener records left behind by
// previous suspensions. This library walks the physical stack down to
// the first suspended async frame, then follows that continuation graph
// upward, producing one ordered (code, pc) sequence that reads like a
// single coherent stack trace.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	stacktrace/          Root package with the Frame, FrameIterator and Buffer contracts
//	├── capture/         High-level API for capturing traces from targets
//	├── unwind/          Orchestrator stitching physical frames to the awaiter chain
//	├── frames/          Physical-frame counting and async-leaf classification
//	├── awaiter/         Continuation-graph walker over futures and listeners
//	├── heap/            Read-only views of the runtime's heap objects
//	├── shapes/          Configurable runtime-library shape profile
//	├── snapfile/        YAML heap-snapshot fixtures for tests and tooling
//	└── errors/          Structured error types for the surrounding layers
//
// # Quick Start
//
// Reconstruct the trace of a paused target:
//
//	profile, _ := shapes.Default().Compile()
//	uw := unwind.New(profile)
//
//	buf := stacktrace.NewBuffer(128)
//	hasAsync, err := uw.CollectFramesLazy(target.Frames(), 0, nil, buf)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, e := range buf.Entries() {
//	    fmt.Printf("%s +0x%x\n", e.Code.Name(), e.PC)
//	}
//
// The walk is synchronous, allocation-light and strictly read-only over
// the target heap. The caller guarantees the target is not concurrently
// mutated while the walk runs; this library does not enforce it.
package stacktrace
