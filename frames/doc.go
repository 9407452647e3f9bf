// Package frames walks physical execution-stack frames and classifies
// each one: an ordinary synchronous frame, a synthetic trampoline to
// skip, or the leaf of a suspended async computation where heap-graph
// continuation must take over.
//
// The package consumes the embedding runtime's frame iterator through
// the stacktrace contracts and writes no output itself; collection into
// trace buffers is the unwind package's job.
package frames
