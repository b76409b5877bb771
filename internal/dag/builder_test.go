package dag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskgraph-tools/deadlockdetect/internal/trace"
)

func TestBuild_NoOpTrace(t *testing.T) {
	events := []trace.NormalizedEvent{
		{Type: trace.KindSemCtor, Sem: 1, Count: 1},
	}
	g, err := Build(events)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
	require.Len(t, g.Semaphores, 1)
}

func TestBuild_SimpleMutex(t *testing.T) {
	events := []trace.NormalizedEvent{
		{Type: trace.KindSemCtor, Sem: 1, Count: 1},
		{Type: trace.KindSemWait, Sem: 1, Pre: 10, Post: 11, Count: 1, Timestamp: 1},
		{Type: trace.KindSemSignal, Sem: 1, Vertex: 11, Count: 1, Timestamp: 2},
	}
	g, err := Build(events)
	require.NoError(t, err)
	require.NoError(t, g.Validate())

	var waitCount, signalCount int
	for _, id := range g.Arena.AllIDs() {
		switch g.Arena.Node(id).Op.Kind {
		case OpWait:
			waitCount++
		case OpSignal:
			signalCount++
		}
	}
	require.Equal(t, 1, waitCount)
	require.Equal(t, 1, signalCount)
}

func TestBuild_NoneNodesAreSplicedOut(t *testing.T) {
	events := []trace.NormalizedEvent{
		{Type: trace.KindEdge, Pre: 1, Post: 2},
		{Type: trace.KindEdge, Pre: 2, Post: 3},
	}
	g, err := Build(events)
	require.NoError(t, err)
	for _, id := range g.Arena.AllIDs() {
		if id == RootID {
			continue
		}
		require.False(t, g.Arena.Node(id).Op.IsNone() && reachable(g, id),
			"non-root reachable node %d should not carry a None operation after simplification", id)
	}
}

func reachable(g *Graph, target NodeID) bool {
	visited := make(map[NodeID]bool)
	var visit func(NodeID) bool
	visit = func(id NodeID) bool {
		if id == target {
			return true
		}
		if visited[id] {
			return false
		}
		visited[id] = true
		for c := range g.Arena.Node(id).Children {
			if visit(c) {
				return true
			}
		}
		return false
	}
	return visit(g.Root)
}

func TestBuild_EveryNonRootNodeHasAParent(t *testing.T) {
	events := []trace.NormalizedEvent{
		{Type: trace.KindSemCtor, Sem: 1, Count: 1},
		{Type: trace.KindSemWait, Sem: 1, Pre: 10, Post: 11, Count: 1, Timestamp: 1},
		{Type: trace.KindSemSignal, Sem: 1, Vertex: 11, Count: 1, Timestamp: 2},
		{Type: trace.KindEdge, Pre: 20, Post: 21},
	}
	g, err := Build(events)
	require.NoError(t, err)
	require.NoError(t, g.Validate())
}
