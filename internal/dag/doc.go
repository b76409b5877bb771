// Package dag builds and represents the happens-before DAG of semaphore
// operations that the rest of the analyzer works over.
//
// A Graph is a flat Arena of Node values addressed by NodeID rather than
// by pointer: every node's children are stored as NodeID sets, so a deep
// copy of a Graph is a copy of the arena slice, not a pointer-chasing
// walk. This is what lets the Deadlock Search (package search) clone a
// whole DAG once per semaphore subset cheaply.
//
//	arena := dag.NewArena() // already holds the synthetic root at dag.RootID
//	id := arena.NewNode(dag.InvalidOriginalID)
//	arena.AddChild(dag.RootID, id)
//	g, err := dag.Build(normalizedEvents)
//
// The construction algorithm (task scaffolding from edges, operation
// insertion with anchor-address rebinding, None-node simplification) is
// specified at the interface in the accompanying design document; see
// Build for the implementation.
package dag
