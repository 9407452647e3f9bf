// Package heap defines read-only views over the managed heap objects
// that carry a suspended asynchronous computation's continuation state.
//
// The views model the runtime's future/listener machinery as it exists
// at trace-capture time: closures with captured contexts, futures whose
// result slot holds either listeners or another future, listener records
// chaining callbacks, and the stream controller family backing
// async-generator functions. Nothing in this package mutates the heap;
// every accessor returns its value together with an ok flag, and a
// missing or wrongly-shaped field is reported as !ok rather than as an
// error or a panic.
//
// Concrete implementations are provided by the runtime embedding this
// library. The memheap subpackage supplies an in-memory implementation
// used by tests, fixtures and the tracedump tool.
package heap
