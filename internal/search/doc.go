// Package search implements the Deadlock Search: for a built
// happens-before DAG, it decides whether every topological-sort
// schedule, restricted in turn to every small semaphore subset, can run
// to completion under the Schedule Simulator.
//
// Exhaustively enumerating every topological sort of the unrestricted
// DAG is intractable for any graph with real fan-out. Deadlock Search
// instead runs the enumeration once per semaphore subset of size up to
// k, after neutralizing every operation outside the subset to a no-op
// and re-splicing the DAG. A deadlock that only needs semaphores {a, b}
// to manifest still shows up in the {a, b} subset's restricted search,
// so the restriction trades completeness-in-one-pass for tractability
// without losing soundness, at the cost of only catching deadlocks
// expressible with k or fewer semaphores.
package search
