// Package trace normalizes a merged, time-sorted stream of raw trace
// events into the canonical five-kind event stream (sem_ctor, sem_wait,
// sem_signal, edge, sem_dtor) that package dag builds the happens-before
// graph from. Logged vertex_ctor and vertex_dtor events are also passed
// through (with compact vertex ids); package dag ignores them.
//
// The normalizer owns two pieces of per-run state that must never leak
// across analysis runs: a generation counter, disambiguating addresses
// reused across construct/destroy, and a compactify table, assigning
// small dense integer ids to true (address, generation) identities.
// Both are fields on Normalizer, not package globals, so running two
// analyses in the same process (as the test suite does) never cross-talks.
package trace
