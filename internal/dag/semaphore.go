package dag

// QueueEntry is one FIFO-queued Wait that could not be satisfied when it
// was attempted: the blocked node, and the position it held in the
// candidate schedule at the time.
type QueueEntry struct {
	Node          NodeID
	ScheduleIndex int
}

// Semaphore is a counting, non-negative semaphore with a FIFO wait queue.
// Count is only ever mutated through the simulator; the queue preserves
// attempt order so head-of-line is always the next candidate to wake.
type Semaphore struct {
	ID         int
	OriginalID int64 // raw trace address this semaphore's sem_ctor carried, for debug rendering
	Count      int
	Initial    int
	Queue      []QueueEntry
}

// NewSemaphore constructs a Semaphore with the given initial unit count.
// OriginalID defaults to id; call WithOriginalID to record the raw trace
// address a sem_ctor event carried before compaction.
func NewSemaphore(id, count int) *Semaphore {
	return &Semaphore{ID: id, OriginalID: int64(id), Count: count, Initial: count}
}

// WithOriginalID sets the raw trace address the Deadlock Search's debug
// artifact reports for this semaphore (spec.md §6) and returns s for
// chaining at the construction site.
func (s *Semaphore) WithOriginalID(original int64) *Semaphore {
	s.OriginalID = original
	return s
}

// Clone returns an independent copy with an empty queue, matching the
// Execution-state contract in spec.md §3: "a deep copy of the semaphore
// set (counts + empty queues)" is created fresh for every simulation
// attempt.
func (s *Semaphore) Clone() *Semaphore {
	return &Semaphore{ID: s.ID, OriginalID: s.OriginalID, Count: s.Count, Initial: s.Initial}
}

// SemaphoreSet maps semaphore id to its Semaphore.
type SemaphoreSet map[int]*Semaphore

// Clone deep-copies every semaphore in the set, each with a fresh empty queue.
func (s SemaphoreSet) Clone() SemaphoreSet {
	out := make(SemaphoreSet, len(s))
	for id, sem := range s {
		out[id] = sem.Clone()
	}
	return out
}

// Restrict returns a new SemaphoreSet containing only the ids present in subset.
func (s SemaphoreSet) Restrict(subset []int) SemaphoreSet {
	out := make(SemaphoreSet, len(subset))
	for _, id := range subset {
		if sem, ok := s[id]; ok {
			out[id] = sem.Clone()
		}
	}
	return out
}

// SortedIDs returns every semaphore id in ascending order, giving the
// Deadlock Search a deterministic, stable ordering to enumerate over.
func (s SemaphoreSet) SortedIDs() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}
