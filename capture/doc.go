// Package capture is the high-level entry point for reconstructing
// traces: it runs the unwinder against one or more paused targets and
// packages the results with identifiers and a content fingerprint so
// repeated captures of the same logical stack deduplicate cheaply.
//
// Each target's walk is the same synchronous, read-only computation the
// unwind package performs; CaptureAll only parallelizes across
// independent targets, never within one. The caller still guarantees
// every target's heap is quiescent for the duration.
package capture
