package trace

import "fmt"

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithStrict aborts normalization on the first trace-integrity error
// instead of the default warn-and-skip policy (spec.md §7).
func WithStrict() Option {
	return func(n *Normalizer) { n.strict = true }
}

// Warning is a non-fatal trace-integrity issue surfaced on the
// diagnostic channel; it never affects the eventual deadlock verdict.
type Warning struct {
	Err       error
	EventType string
	Timestamp int64
}

func (w Warning) String() string {
	return fmt.Sprintf("trace: %s at t=%d: %v", w.EventType, w.Timestamp, w.Err)
}

type pendingWait struct {
	timestamp int64
	sem       int
	pre       int
	count     int
}

// Normalizer holds all per-run state for one normalization pass:
// the generation counter, the compactify table, and the pending-wait
// and moved-identity bookkeeping. None of this is shared across runs —
// always construct a fresh Normalizer per analysis (see package doc).
type Normalizer struct {
	gc           *GenerationCounter
	compact      *compactify
	startedWaits map[int]pendingWait
	moved        map[Identity]bool
	strict       bool

	out      []NormalizedEvent
	warnings []Warning
}

// New returns a Normalizer ready to process one trace.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		gc:           newGenerationCounter(),
		compact:      newCompactify(),
		startedWaits: make(map[int]pendingWait),
		moved:        make(map[Identity]bool),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Warnings returns the diagnostic warnings accumulated so far.
func (n *Normalizer) Warnings() []Warning { return n.warnings }

func (n *Normalizer) warn(err error, eventType string, timestamp int64) {
	n.warnings = append(n.warnings, Warning{Err: err, EventType: eventType, Timestamp: timestamp})
}

func (n *Normalizer) emit(ev NormalizedEvent) {
	n.out = append(n.out, ev)
}

func (n *Normalizer) compactOf(addr *Address) int {
	if addr == nil {
		return n.compact.add(n.gc.GetVertex(0))
	}
	return n.compact.add(n.gc.GetVertex(int64(*addr)))
}

// Normalize runs the full pipeline over an already merged, time-sorted
// event stream (see MergeAndSort) and returns the canonical event
// stream plus any non-fatal warnings. In strict mode the first
// trace-integrity error aborts and is returned as err.
func (n *Normalizer) Normalize(events []RawEvent) ([]NormalizedEvent, []Warning, error) {
	for _, ev := range events {
		if err := n.dispatch(ev); err != nil {
			return nil, n.warnings, err
		}
	}
	return n.out, n.warnings, nil
}

func (n *Normalizer) dispatch(ev RawEvent) error {
	switch ev.Type {
	case "sem_ctor":
		return n.semCtor(ev)
	case "sem_dtor":
		return n.semDtor(ev)
	case "vertex_ctor":
		return n.vertexCtor(ev)
	case "vertex_dtor":
		return n.vertexDtor(ev)
	case "sem_wait":
		n.semWaitStarted(ev)
		return nil
	case "sem_wait_completed":
		return n.semWaitCompleted(ev)
	case "sem_signal":
		n.semSignal(ev)
		return nil
	case "edge":
		n.edge(ev)
		return nil
	case "sem_move":
		return n.move(ev)
	case "vertex_move":
		return n.move(ev)
	default:
		n.warn(fmt.Errorf("trace: unrecognized event type %q", ev.Type), ev.Type, ev.Timestamp)
		return nil
	}
}

func (n *Normalizer) semCtor(ev RawEvent) error {
	addr := addressValue(ev.Sem)
	id, err := n.gc.AddVertex(addr)
	if err != nil {
		if n.strict {
			return &IntegrityError{Err: err, EventKind: ev.Type, Address: addr, Timestamp: ev.Timestamp}
		}
		n.warn(err, ev.Type, ev.Timestamp)
		return nil
	}
	count := 0
	if ev.Count != nil {
		count = *ev.Count
	}
	n.emit(NormalizedEvent{Type: KindSemCtor, Sem: n.compact.add(id), OriginalSem: addr, Count: count, Timestamp: ev.Timestamp})
	return nil
}

func (n *Normalizer) semDtor(ev RawEvent) error {
	addr := addressValue(ev.Sem)
	id, err := n.gc.DelVertex(addr)
	if err != nil {
		if n.strict {
			return &IntegrityError{Err: err, EventKind: ev.Type, Address: addr, Timestamp: ev.Timestamp}
		}
		n.warn(err, ev.Type, ev.Timestamp)
		return nil
	}
	compactID := n.compact.add(id)
	if n.moved[id] {
		return nil
	}
	n.emit(NormalizedEvent{Type: KindSemDtor, Sem: compactID, Timestamp: ev.Timestamp})
	return nil
}

func (n *Normalizer) vertexCtor(ev RawEvent) error {
	addr := addressValue(ev.Vertex)
	id, err := n.gc.AddVertex(addr)
	if err != nil {
		if n.strict {
			return &IntegrityError{Err: err, EventKind: ev.Type, Address: addr, Timestamp: ev.Timestamp}
		}
		n.warn(err, ev.Type, ev.Timestamp)
		return nil
	}
	n.emit(NormalizedEvent{Type: "vertex_ctor", Vertex: n.compact.add(id), Timestamp: ev.Timestamp})
	return nil
}

func (n *Normalizer) vertexDtor(ev RawEvent) error {
	addr := addressValue(ev.Vertex)
	id, err := n.gc.DelVertex(addr)
	if err != nil {
		if n.strict {
			return &IntegrityError{Err: err, EventKind: ev.Type, Address: addr, Timestamp: ev.Timestamp}
		}
		n.warn(err, ev.Type, ev.Timestamp)
		return nil
	}
	compactID := n.compact.add(id)
	if n.moved[id] {
		return nil
	}
	n.emit(NormalizedEvent{Type: "vertex_dtor", Vertex: compactID, Timestamp: ev.Timestamp})
	return nil
}

func (n *Normalizer) semWaitStarted(ev RawEvent) {
	semC := n.compactOf(ev.Sem)
	preC := n.compactOf(ev.Pre)
	postC := n.compactOf(ev.Post)
	count := 0
	if ev.Count != nil {
		count = *ev.Count
	}
	n.startedWaits[postC] = pendingWait{timestamp: ev.Timestamp, sem: semC, pre: preC, count: count}
}

func (n *Normalizer) semWaitCompleted(ev RawEvent) error {
	postC := n.compactOf(ev.Post)
	pw, ok := n.startedWaits[postC]
	if !ok {
		if n.strict {
			return &IntegrityError{Err: ErrNoPendingWait, EventKind: ev.Type, Address: addressValue(ev.Post), Timestamp: ev.Timestamp}
		}
		n.warn(ErrNoPendingWait, ev.Type, ev.Timestamp)
		return nil
	}
	delete(n.startedWaits, postC)
	n.emit(NormalizedEvent{
		Type:      KindSemWait,
		Sem:       pw.sem,
		Pre:       pw.pre,
		Post:      postC,
		Count:     pw.count,
		Timestamp: pw.timestamp,
	})
	return nil
}

func (n *Normalizer) semSignal(ev RawEvent) {
	semC := n.compactOf(ev.Sem)
	vertexC := n.compactOf(ev.Vertex)
	count := 0
	if ev.Count != nil {
		count = *ev.Count
	}
	n.emit(NormalizedEvent{Type: KindSemSignal, Sem: semC, Vertex: vertexC, Count: count, Timestamp: ev.Timestamp})
}

func (n *Normalizer) edge(ev RawEvent) {
	preC := n.compactOf(ev.Pre)
	postC := n.compactOf(ev.Post)
	speculative := ev.Speculative != nil && *ev.Speculative
	n.emit(NormalizedEvent{Type: KindEdge, Pre: preC, Post: postC, Speculative: speculative, Timestamp: ev.Timestamp})
}

func (n *Normalizer) move(ev RawEvent) error {
	fromAddr := addressValue(ev.From)
	toAddr := addressValue(ev.To)
	toID, err := n.gc.AddVertex(toAddr)
	if err != nil {
		if n.strict {
			return &IntegrityError{Err: err, EventKind: ev.Type, Address: toAddr, Timestamp: ev.Timestamp}
		}
		n.warn(err, ev.Type, ev.Timestamp)
		return nil
	}
	fromID := n.gc.GetVertex(fromAddr)
	n.compact.move(fromID, toID)
	n.moved[fromID] = true
	return nil
}

func addressValue(a *Address) int64 {
	if a == nil {
		return 0
	}
	return int64(*a)
}
