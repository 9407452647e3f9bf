// Package memheap provides an in-memory implementation of the heap views
// used by tests, snapshot fixtures and the tracedump tool.
//
// Objects are plain Go structs behind the heap interfaces; pointer
// identity gives the comparability the walkers rely on. Builders are
// chainable where it helps fixture code read top-down.
package memheap
