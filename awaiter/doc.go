// Package awaiter walks the heap-resident continuation graph of a
// suspended asynchronous computation.
//
// Given the closure of a suspended async or async-generator function,
// CallerFinder locates the closure one step upstream in the logical
// await chain by navigating the future and listener objects the runtime
// left behind at earlier suspensions. The walker knows nothing about the
// physical execution stack.
//
// Every step has exactly two outcomes: a value, or "not found". A
// malformed or unexpectedly-shaped object terminates the walk quietly;
// heap shapes vary across runtime library versions and a shorter chain
// is always preferable to a crash. All recursive and iterative walks are
// bounded by the shape profile's limits because the graph carries no
// acyclicity guarantee.
package awaiter
