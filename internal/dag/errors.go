package dag

import "errors"

var (
	// ErrUnknownSemaphore indicates an operation referenced a semaphore
	// that was never constructed (no sem_ctor seen for it).
	ErrUnknownSemaphore = errors.New("dag: unknown semaphore")

	// ErrNilArena indicates a Node or NodeID was used against a nil Arena.
	ErrNilArena = errors.New("dag: nil arena")

	// ErrInvalidNodeID indicates a NodeID outside the arena's bounds.
	ErrInvalidNodeID = errors.New("dag: invalid node id")

	// ErrNonNoneRoot is returned by Validate when the synthetic root
	// carries a semantic operation instead of None.
	ErrNonNoneRoot = errors.New("dag: root node must be a None operation")

	// ErrOrphanNode is returned by Validate when a non-root node has no
	// parent, violating the happens-before DAG invariant.
	ErrOrphanNode = errors.New("dag: non-root node has no parent")

	// ErrCycleDetected is returned by Validate when no topological sort
	// of the arena exists.
	ErrCycleDetected = errors.New("dag: cycle detected")
)
