package simulate

import (
	"fmt"
	"strings"

	"github.com/taskgraph-tools/deadlockdetect/internal/dag"
)

// Execution is the per-attempt state the Schedule Simulator mutates
// while trying to run a candidate schedule to completion. Construct one
// with NewExecution per attempt; never reuse across attempts.
type Execution struct {
	arena      *dag.Arena
	semaphores dag.SemaphoreSet
	schedule   []dag.NodeID

	executed           []bool
	firstPossibleIndex int
	executedCount      int
	arrived            map[dag.NodeID]int
	waiting            map[dag.NodeID]bool
}

// NewExecution creates the fresh per-attempt state described in
// spec.md §3: a deep copy of the semaphore set with empty queues, the
// candidate schedule, and zeroed bookkeeping.
func NewExecution(arena *dag.Arena, semaphores dag.SemaphoreSet, schedule []dag.NodeID) *Execution {
	return &Execution{
		arena:      arena,
		semaphores: semaphores.Clone(),
		schedule:   schedule,
		executed:   make([]bool, len(schedule)),
		arrived:    make(map[dag.NodeID]int, len(schedule)),
		waiting:    make(map[dag.NodeID]bool),
	}
}

// Semaphores exposes the (already-clone) semaphore state for debug rendering.
func (e *Execution) Semaphores() dag.SemaphoreSet { return e.semaphores }

// ExecutedCount reports how many schedule positions have executed.
func (e *Execution) ExecutedCount() int { return e.executedCount }

// Success reports whether every position in the schedule executed.
func (e *Execution) Success() bool { return e.executedCount >= len(e.schedule) }

func (e *Execution) isReady(id dag.NodeID) bool {
	node := e.arena.Node(id)
	return e.arrived[id] == node.PrevCount && !e.waiting[id]
}

func (e *Execution) markExecuted(index int) {
	id := e.schedule[index]
	e.executed[index] = true
	e.executedCount++
	for child := range e.arena.Node(id).Children {
		e.arrived[child]++
	}
	if index == e.firstPossibleIndex {
		e.firstPossibleIndex++
		for e.firstPossibleIndex < len(e.executed) && e.executed[e.firstPossibleIndex] {
			e.firstPossibleIndex++
		}
	}
}

// doOperation attempts to execute the node at schedule position index.
// A Wait that cannot be satisfied is enqueued on its semaphore instead
// of executing; every other operation always succeeds.
func (e *Execution) doOperation(index int) {
	id := e.schedule[index]
	op := e.arena.Node(id).Op

	switch op.Kind {
	case dag.OpNone:
		e.markExecuted(index)
	case dag.OpSignal:
		e.semaphores[op.Sem].Count += op.Count
		e.markExecuted(index)
	case dag.OpWait:
		sem := e.semaphores[op.Sem]
		if sem.Count-op.Count >= 0 {
			sem.Count -= op.Count
			e.markExecuted(index)
			return
		}
		sem.Queue = append(sem.Queue, dag.QueueEntry{Node: id, ScheduleIndex: index})
		e.waiting[id] = true
	}
}

// nextPossibleOperation implements the three-tier progress-selection
// rule from spec.md §4.3: the node at firstPossibleIndex if ready, else
// the head of any now-satisfiable semaphore queue, else the first ready
// Signal/None found scanning forward (queued Waits are deliberately
// skipped — they can only be unblocked by the semaphore-queue tier).
func (e *Execution) nextPossibleOperation() (int, bool) {
	if e.firstPossibleIndex >= len(e.schedule) {
		return -1, false
	}

	if head := e.schedule[e.firstPossibleIndex]; e.isReady(head) {
		return e.firstPossibleIndex, true
	}

	for _, semID := range e.semaphores.SortedIDs() {
		sem := e.semaphores[semID]
		if len(sem.Queue) == 0 {
			continue
		}
		entry := sem.Queue[0]
		queuedOp := e.arena.Node(entry.Node).Op
		if sem.Count-queuedOp.Count >= 0 {
			sem.Queue = sem.Queue[1:]
			delete(e.waiting, entry.Node)
			return entry.ScheduleIndex, true
		}
	}

	for i := e.firstPossibleIndex + 1; i < len(e.schedule); i++ {
		if e.executed[i] {
			continue
		}
		id := e.schedule[i]
		op := e.arena.Node(id).Op
		if (op.Kind == dag.OpSignal || op.Kind == dag.OpNone) && e.isReady(id) {
			return i, true
		}
	}

	return -1, false
}

// Run drives the simulation to completion or deadlock, per spec.md
// §4.3's termination rule.
func (e *Execution) Run() bool {
	for {
		index, ok := e.nextPossibleOperation()
		if !ok {
			return e.Success()
		}
		e.doOperation(index)
	}
}

// String renders the execution state as a human-readable witness:
// semaphore states, then up to 20 schedule positions starting at the
// first unexecuted one, each marked executed or not executed.
func (e *Execution) String() string {
	var b strings.Builder
	b.WriteString("semaphore state:\n")
	for _, id := range e.semaphores.SortedIDs() {
		sem := e.semaphores[id]
		fmt.Fprintf(&b, "  sem %d: count=%d waiting=%d\n", sem.ID, sem.Count, len(sem.Queue))
	}
	b.WriteString("schedule (from first unexecuted position):\n")
	shown := 0
	for i := e.firstPossibleIndex; i < len(e.schedule) && shown < 20; i++ {
		id := e.schedule[i]
		status := "not executed"
		if e.executed[i] {
			status = "executed"
		}
		fmt.Fprintf(&b, "  [%d] %s: %s\n", i, status, e.arena.Node(id).Op)
		shown++
	}
	return b.String()
}
