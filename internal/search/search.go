package search

import (
	"context"

	"github.com/taskgraph-tools/deadlockdetect/internal/dag"
	"github.com/taskgraph-tools/deadlockdetect/internal/simulate"
)

// defaultSubsetSize is the k from spec.md §4.4's reference algorithm:
// every nonempty subset of semaphores of size up to three.
const defaultSubsetSize = 3

// Option configures Detect.
type Option func(*options)

type options struct {
	ctx        context.Context
	k          int
	nodeBudget int64
}

func defaultOptions() options {
	return options{ctx: context.Background(), k: defaultSubsetSize}
}

// WithContext sets the cancellation context Detect honors between
// schedule attempts. A nil context has no effect.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithSubsetSize overrides the maximum semaphore subset size searched.
// k must be at least 1.
func WithSubsetSize(k int) Option {
	return func(o *options) {
		if k >= 1 {
			o.k = k
		}
	}
}

// WithNodeBudget bounds how many schedule positions the topological
// enumeration may visit per semaphore subset before Detect gives up
// with ErrNodeBudgetExceeded. Zero (the default) means unbounded.
func WithNodeBudget(n int64) Option {
	return func(o *options) { o.nodeBudget = n }
}

// Verdict is the outcome of Detect.
type Verdict struct {
	// Deadlock reports whether some schedule, restricted to some
	// semaphore subset, could not run to completion.
	Deadlock bool
	// Subset is the semaphore ids the failing schedule was restricted
	// to. Empty when Deadlock is false, or when the graph has no
	// semaphores at all.
	Subset []int
	// Witness is the simulator's final state for the failing schedule.
	// Nil when Deadlock is false.
	Witness *simulate.Execution
}

// Detect runs the Deadlock Search over g: for every nonempty semaphore
// subset of size up to the configured k (spec.md §4.4), every operation
// outside the subset is neutralized, the DAG is re-simplified, and
// every topological sort of the result is simulated. The first schedule
// that cannot run to completion is reported as a deadlock witness;
// Detect returns as soon as one is found.
func Detect(g *dag.Graph, opts ...Option) (Verdict, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ids := g.Semaphores.SortedIDs()
	if len(ids) == 0 {
		return detectSubset(g, nil, o)
	}

	for _, subset := range combinationsUpToK(ids, o.k) {
		verdict, err := detectSubset(g, subset, o)
		if err != nil {
			return Verdict{}, err
		}
		if verdict.Deadlock {
			verdict.Subset = subset
			return verdict, nil
		}
	}
	return Verdict{Deadlock: false}, nil
}

// detectSubset clones g, restricts it to subset, and searches every
// topological sort of the restricted graph for a failing schedule.
func detectSubset(g *dag.Graph, subset []int, o options) (Verdict, error) {
	clone := g.Clone()
	simplifyBySubset(clone, subset)

	var witness *simulate.Execution
	found, err := enumerateTopoSorts(o.ctx, clone.Arena, clone.Root, o.nodeBudget, func(schedule []dag.NodeID) bool {
		ok, exec := simulate.Simulate(clone.Arena, clone.Semaphores, schedule)
		if ok {
			return false
		}
		witness = exec
		return true
	})
	if err != nil {
		return Verdict{}, err
	}
	if found {
		return Verdict{Deadlock: true, Witness: witness}, nil
	}
	return Verdict{Deadlock: false}, nil
}

// simplifyBySubset neutralizes every Wait/Signal operation outside
// subset to None, restricts g's semaphore set to subset, and re-splices
// the resulting None nodes out of the graph (spec.md §4.4's "treat every
// wait/signal on an out-of-subset semaphore as a no-op" restriction).
func simplifyBySubset(g *dag.Graph, subset []int) {
	keep := make(map[int]bool, len(subset))
	for _, id := range subset {
		keep[id] = true
	}
	for _, id := range g.Arena.AllIDs() {
		op := g.Arena.Node(id).Op
		if op.IsNone() {
			continue
		}
		if !keep[op.Sem] {
			g.Arena.SetOp(id, dag.None)
		}
	}
	g.Semaphores = g.Semaphores.Restrict(subset)
	g.Arena = dag.EraseNone(g.Arena, g.Root)
}
