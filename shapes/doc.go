// Package shapes describes the runtime-library conventions the walkers
// depend on: which context slots carry suspension state, which function
// names are synthetic await-wrappers, what the listener state bits mean,
// and how far any walk may go before it is cut off.
//
// The conventions drift across runtime library versions, so they live in
// a Profile rather than in code. Profile values come from the built-in
// Default, from YAML, or from a caching Loader.
package shapes
