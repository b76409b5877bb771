package simulate

// QueueDebug is one queued operation in a SemaphoreDebug, per the debug
// artifact format in spec.md §6.
type QueueDebug struct {
	OriginalPost int    `json:"original_post"`
	Type         string `json:"type"`
	Count        int    `json:"count"`
}

// SemaphoreDebug is the per-semaphore debug record spec.md §6 defines:
//
//	{"sem_id":…, "unit_count":…, "waiting":N, "queue":[...]}
type SemaphoreDebug struct {
	SemID     int          `json:"sem_id"`
	UnitCount int          `json:"unit_count"`
	Waiting   int          `json:"waiting"`
	Queue     []QueueDebug `json:"queue"`
}

// DebugInfo renders the witness execution's semaphore states into the
// debug artifact format, sorted by semaphore id for determinism.
func (e *Execution) DebugInfo() []SemaphoreDebug {
	ids := e.semaphores.SortedIDs()
	out := make([]SemaphoreDebug, 0, len(ids))
	for _, id := range ids {
		sem := e.semaphores[id]
		queue := make([]QueueDebug, 0, len(sem.Queue))
		for _, entry := range sem.Queue {
			node := e.arena.Node(entry.Node)
			queue = append(queue, QueueDebug{
				OriginalPost: node.OriginalID,
				Type:         node.Op.Kind.String(),
				Count:        node.Op.Count,
			})
		}
		out = append(out, SemaphoreDebug{
			SemID:     int(sem.OriginalID),
			UnitCount: sem.Count,
			Waiting:   len(sem.Queue),
			Queue:     queue,
		})
	}
	return out
}
