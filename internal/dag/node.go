package dag

// NodeID indexes a Node within an Arena. The zero value (0) is always
// the synthetic root created by NewArena.
type NodeID int

// RootID is the NodeID of the synthetic root node of every Arena.
const RootID NodeID = 0

// InvalidOriginalID marks a Node that has no meaningful original trace
// address (the synthetic root).
const InvalidOriginalID = -1

// Node is an Operation together with its outgoing edges and in-degree.
// Children is a set: the happens-before DAG never needs parallel edges
// between the same pair of nodes.
type Node struct {
	Op         Operation
	Children   map[NodeID]struct{}
	PrevCount  int
	OriginalID int
}

func newNode(originalID int) Node {
	return Node{
		Op:         None,
		Children:   make(map[NodeID]struct{}),
		OriginalID: originalID,
	}
}

// SortedChildren returns Children as a slice ordered by NodeID, giving
// deterministic iteration for anything that walks the DAG (simplification,
// topological enumeration).
func (n Node) SortedChildren() []NodeID {
	out := make([]NodeID, 0, len(n.Children))
	for c := range n.Children {
		out = append(out, c)
	}
	// Insertion sort is fine; node fan-out in a happens-before DAG is small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
