package search

import (
	"context"

	"github.com/taskgraph-tools/deadlockdetect/internal/dag"
)

// enumOptions holds settings for enumerateTopoSorts: cancellation and
// an optional cutoff on how many schedule positions may be visited
// before giving up, mirroring dfs.TopoOption's WithCancelContext.
type enumOptions struct {
	ctx        context.Context
	nodeBudget int64 // 0 means unbounded
}

// topoEnumerator walks every topological order of the DAG reachable
// from root by DFS backtracking over the frontier of ready nodes,
// invoking visit on each complete schedule until visit reports it
// found what it was looking for.
type topoEnumerator struct {
	arena     *dag.Arena
	opts      enumOptions
	remaining []int // remaining in-degree per NodeID, mutated and restored during backtracking
	frontier  []dag.NodeID
	partial   []dag.NodeID
	total     int
	visits    int64
}

// enumerateTopoSorts enumerates topological sorts of the subgraph of
// arena reachable from root, calling visit on each complete schedule.
// It stops and returns (true, nil) as soon as visit returns true. If
// the enumeration exhausts every order without visit ever returning
// true, it returns (false, nil). ctx cancellation and nodeBudget
// exhaustion both abort early with an error.
func enumerateTopoSorts(ctx context.Context, arena *dag.Arena, root dag.NodeID, nodeBudget int64, visit func([]dag.NodeID) bool) (bool, error) {
	reachable := reachableFrom(arena, root)
	remaining := make([]int, arena.Len())
	for _, id := range reachable {
		remaining[int(id)] = arena.Node(id).PrevCount
	}
	// Root is the only node in the reachable subgraph guaranteed to have
	// in-degree 0; everything else only becomes ready once its parents
	// in this traversal have been placed.
	remaining[int(root)] = 0

	en := &topoEnumerator{
		arena:     arena,
		opts:      enumOptions{ctx: ctx, nodeBudget: nodeBudget},
		remaining: remaining,
		frontier:  []dag.NodeID{root},
		partial:   make([]dag.NodeID, 0, len(reachable)),
		total:     len(reachable),
	}
	found, err := en.search(visit)
	if err != nil {
		return false, err
	}
	return found, nil
}

// reachableFrom returns every NodeID reachable from root, including root.
func reachableFrom(arena *dag.Arena, root dag.NodeID) []dag.NodeID {
	visited := map[dag.NodeID]bool{root: true}
	order := []dag.NodeID{root}
	queue := []dag.NodeID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range arena.Node(id).SortedChildren() {
			if !visited[c] {
				visited[c] = true
				order = append(order, c)
				queue = append(queue, c)
			}
		}
	}
	return order
}

func (en *topoEnumerator) search(visit func([]dag.NodeID) bool) (bool, error) {
	select {
	case <-en.opts.ctx.Done():
		return false, en.opts.ctx.Err()
	default:
	}

	if len(en.frontier) == 0 {
		if len(en.partial) == en.total {
			// Copy: en.partial's backing array keeps mutating as the
			// caller backtracks after this call returns.
			schedule := make([]dag.NodeID, len(en.partial))
			copy(schedule, en.partial)
			return visit(schedule), nil
		}
		return false, nil
	}

	candidates := append([]dag.NodeID(nil), en.frontier...)
	for _, node := range candidates {
		en.visits++
		if en.opts.nodeBudget > 0 && en.visits > en.opts.nodeBudget {
			return false, ErrNodeBudgetExceeded
		}

		en.removeFromFrontier(node)
		en.partial = append(en.partial, node)

		children := en.arena.Node(node).SortedChildren()
		newlyReady := make([]dag.NodeID, 0, len(children))
		for _, child := range children {
			en.remaining[int(child)]--
			if en.remaining[int(child)] == 0 {
				en.frontier = append(en.frontier, child)
				newlyReady = append(newlyReady, child)
			}
		}

		found, err := en.search(visit)

		for _, child := range newlyReady {
			en.removeFromFrontier(child)
		}
		for _, child := range children {
			en.remaining[int(child)]++
		}
		en.partial = en.partial[:len(en.partial)-1]
		en.frontier = append(en.frontier, node)

		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

func (en *topoEnumerator) removeFromFrontier(id dag.NodeID) {
	for i, n := range en.frontier {
		if n == id {
			en.frontier = append(en.frontier[:i], en.frontier[i+1:]...)
			return
		}
	}
}
