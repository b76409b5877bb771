package dag

import "github.com/taskgraph-tools/deadlockdetect/internal/trace"

// builder holds the transient address-to-node map and free-address
// cursor used only while constructing one Graph; it is discarded once
// Build returns.
type builder struct {
	arena      *Arena
	addrToNode map[int]NodeID
	freeAddr   int
}

// Build constructs the happens-before DAG from a timestamp-sorted
// normalized event stream, per spec.md §4.2:
//
//  1. a Semaphore is created for every sem_ctor;
//  2. every edge event scaffolds task nodes for its endpoints, attaching
//     any endpoint with no prior source to the synthetic root;
//  3. every sem_wait/sem_signal inserts an operation node, rebinding the
//     anchor address's previous occupant to a fresh synthetic address so
//     later edges referencing that address order against the operation;
//  4. None-operation nodes are spliced out of the final graph.
func Build(events []trace.NormalizedEvent) (*Graph, error) {
	semaphores := make(SemaphoreSet)
	for _, ev := range events {
		if ev.Type == trace.KindSemCtor {
			semaphores[ev.Sem] = NewSemaphore(ev.Sem, ev.Count).WithOriginalID(ev.OriginalSem)
		}
	}

	b := &builder{
		arena:      NewArena(),
		addrToNode: make(map[int]NodeID),
	}

	b.scaffoldFromEdges(events)
	b.insertOperations(events)

	arena := EraseNone(b.arena, RootID)

	return &Graph{Arena: arena, Root: RootID, Semaphores: semaphores}, nil
}

// ensureNode returns the node currently occupying addr, lazily
// materializing a root-attached placeholder if addr has never been seen.
// This is what keeps the builder tolerant of a normalized stream with
// missing construction events (spec.md §4.1's error-handling contract).
func (b *builder) ensureNode(addr int) NodeID {
	if id, ok := b.addrToNode[addr]; ok {
		return id
	}
	id := b.arena.NewNode(addr)
	b.arena.AddChild(RootID, id)
	b.addrToNode[addr] = id
	return id
}

func (b *builder) nextFreeAddr() int {
	for {
		if _, taken := b.addrToNode[b.freeAddr]; !taken {
			return b.freeAddr
		}
		b.freeAddr++
	}
}

// scaffoldFromEdges creates task nodes for every edge endpoint and wires
// pre -> post, attaching any endpoint with no other source to the root.
func (b *builder) scaffoldFromEdges(events []trace.NormalizedEvent) {
	for _, ev := range events {
		if ev.Type != trace.KindEdge {
			continue
		}
		if _, ok := b.addrToNode[ev.Post]; !ok {
			b.addrToNode[ev.Post] = b.arena.NewNode(ev.Post)
		}
	}
	for _, ev := range events {
		if ev.Type != trace.KindEdge {
			continue
		}
		if _, ok := b.addrToNode[ev.Pre]; !ok {
			id := b.arena.NewNode(ev.Pre)
			b.arena.AddChild(RootID, id)
			b.addrToNode[ev.Pre] = id
		}
		b.arena.AddChild(b.addrToNode[ev.Pre], b.addrToNode[ev.Post])
	}
}

// insertOperations walks sem_wait/sem_signal events in timestamp order,
// applying the anchor-address rebind rule from spec.md §4.2 step 3.
func (b *builder) insertOperations(events []trace.NormalizedEvent) {
	for _, ev := range events {
		switch ev.Type {
		case trace.KindSemWait:
			b.insertWait(ev)
		case trace.KindSemSignal:
			b.insertSignal(ev)
		}
	}
}

func (b *builder) insertWait(ev trace.NormalizedEvent) {
	anchor := ev.Post
	prevTask := b.ensureNode(anchor)
	freeAddr := b.nextFreeAddr()
	b.addrToNode[freeAddr] = prevTask

	newNode := b.arena.NewNode(anchor)
	b.arena.SetOp(newNode, Wait(ev.Sem, ev.Count))
	b.addrToNode[anchor] = newNode

	preNode := b.ensureNode(ev.Pre)
	b.arena.AddChild(preNode, newNode)
}

func (b *builder) insertSignal(ev trace.NormalizedEvent) {
	anchor := ev.Vertex
	prevTask := b.ensureNode(anchor)
	freeAddr := b.nextFreeAddr()
	b.addrToNode[freeAddr] = prevTask

	newNode := b.arena.NewNode(anchor)
	b.arena.SetOp(newNode, Signal(ev.Sem, ev.Count))
	b.addrToNode[anchor] = newNode

	b.arena.AddChild(prevTask, newNode)
}

// EraseNone splices None-operation nodes out of the graph reachable
// from root, redirecting their outgoing edges to their parent. The root
// itself is never spliced out, even if it carries a None operation
// (spec.md §4.2 step 4). A spliced node that ends up with neither a
// parent nor a child is gone from the graph, not merely disconnected,
// so the result is compacted down to the nodes still reachable from
// root before being returned — otherwise the old node would keep
// sitting in the arena as in-degree-zero debris and fail Validate's
// orphan check even though it no longer means anything. Exported so
// the subset-restricted search can re-simplify a cloned graph after
// neutralizing operations outside a semaphore subset.
func EraseNone(a *Arena, root NodeID) *Arena {
	visited := make(map[NodeID]bool)
	var visit func(NodeID)
	visit = func(id NodeID) {
		if visited[id] {
			return
		}
		visited[id] = true
		flattenNoneChildren(a, id)
		for _, c := range a.Node(id).SortedChildren() {
			visit(c)
		}
	}
	visit(root)

	return compact(a, root)
}

// flattenNoneChildren repeatedly removes any direct child of parent
// that carries a None operation, reattaching that child's own children
// directly to parent. It also removes the spliced node's outgoing
// edges to those children: leaving them in place would double-count
// the grandchild's in-degree (once for the stale edge from the
// discarded node, once for the new edge from parent).
func flattenNoneChildren(a *Arena, parent NodeID) {
	for {
		changed := false
		for _, c := range a.Node(parent).SortedChildren() {
			if !a.Node(c).Op.IsNone() {
				continue
			}
			a.RemoveChild(parent, c)
			for _, grandchild := range a.Node(c).SortedChildren() {
				a.RemoveChild(c, grandchild)
				a.AddChild(parent, grandchild)
			}
			changed = true
		}
		if !changed {
			return
		}
	}
}

// compact rebuilds a new arena containing only the nodes reachable from
// root, renumbered in the order they are first visited from root so
// root lands back at RootID. Splicing can leave a node with no parent
// and no child — genuinely
// gone from the graph — sitting in the old arena's backing slice, since
// Arena never deletes a node slot on its own; compact is what actually
// drops that debris instead of letting it accumulate as a phantom
// orphan.
func compact(a *Arena, root NodeID) *Arena {
	order := make([]NodeID, 0, a.Len())
	remap := make(map[NodeID]NodeID, a.Len())
	var walk func(NodeID)
	walk = func(id NodeID) {
		if _, ok := remap[id]; ok {
			return
		}
		remap[id] = NodeID(len(order))
		order = append(order, id)
		for _, c := range a.Node(id).SortedChildren() {
			walk(c)
		}
	}
	walk(root)

	out := &Arena{nodes: make([]Node, len(order))}
	for _, old := range order {
		n := a.Node(old)
		out.nodes[remap[old]] = Node{
			Op:         n.Op,
			Children:   make(map[NodeID]struct{}, len(n.Children)),
			OriginalID: n.OriginalID,
		}
	}
	for _, old := range order {
		newParent := remap[old]
		for c := range a.Node(old).Children {
			newChild := remap[c]
			out.nodes[newParent].Children[newChild] = struct{}{}
			out.nodes[newChild].PrevCount++
		}
	}
	return out
}
