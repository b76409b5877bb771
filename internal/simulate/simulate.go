package simulate

import "github.com/taskgraph-tools/deadlockdetect/internal/dag"

// Simulate runs a candidate schedule (a topological sort of the DAG
// rooted at arena's root) under the semaphore semantics of spec.md
// §4.3. It returns true and a nil witness if every node executed, or
// false and the final Execution state otherwise.
func Simulate(arena *dag.Arena, semaphores dag.SemaphoreSet, schedule []dag.NodeID) (bool, *Execution) {
	exec := NewExecution(arena, semaphores, schedule)
	if exec.Run() {
		return true, nil
	}
	return false, exec
}
