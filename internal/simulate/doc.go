// Package simulate implements the Schedule Simulator: given a candidate
// topological sort of a happens-before DAG and an initial semaphore map,
// it executes operations under semaphore semantics (counting,
// non-negative, FIFO wait queue, head-of-line only eligible to wake) and
// reports whether every operation completed.
//
// Simulate returns a fresh *Execution on every call — execution state is
// never shared between simulation attempts, per spec.md §3's lifecycle
// note that it is "created fresh each time" and discarded afterward.
package simulate
