// Package snapfile reads heap-snapshot fixtures from a YAML text format.
//
// A fixture names the functions of the target program (with modifiers
// and yield tables), the heap objects carrying continuation state
// (linked by string ids), and the physical stack at capture time. The
// decoder materializes everything as memheap objects plus a frame
// iterator, ready to hand to the unwind package.
//
// The format exists for tests, examples and the tracedump tool; the
// library itself never serializes heap state.
package snapfile
