package network

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
)

func newTestNetwork(t *testing.T) *Network {
	n := New(1)
	require.NoError(t, n.Nodes.Register(1, &Node{NodeID: 1, CapacityQ16: fixedpoint.FromInt(100)}))
	require.NoError(t, n.Nodes.Register(2, &Node{NodeID: 2, CapacityQ16: fixedpoint.FromInt(100)}))
	require.NoError(t, n.Edges.Register(1, &Edge{EdgeID: 1, FromNodeID: 1, ToNodeID: 2, CapacityQ16: fixedpoint.FromInt(50)}))
	return n
}

func TestStoreClampsToCapacity(t *testing.T) {
	n := newTestNetwork(t)
	code := n.Store(1, fixedpoint.FromInt(150), 0, 0)
	require.Equal(t, ReasonCapacity, code)
	node, _ := n.Nodes.Find(1)
	require.Equal(t, fixedpoint.FromInt(100), node.StoredQ16)
}

func TestStoreSubtractsLoss(t *testing.T) {
	n := newTestNetwork(t)
	code := n.Store(1, fixedpoint.FromInt(10), fixedpoint.FromInt(2), 0)
	require.Equal(t, ReasonOK, code)
	node, _ := n.Nodes.Find(1)
	require.Equal(t, fixedpoint.FromInt(8), node.StoredQ16)
}

func TestStoreMissingNode(t *testing.T) {
	n := newTestNetwork(t)
	require.Equal(t, ReasonMissing, n.Store(99, fixedpoint.FromInt(1), 0, 0))
}

func TestStoreRecoversFailedNodeOnceAboveMinRequired(t *testing.T) {
	n := newTestNetwork(t)
	node, _ := n.Nodes.Find(1)
	node.Status = NodeFailed
	node.MinRequired = fixedpoint.FromInt(5)

	n.Store(1, fixedpoint.FromInt(10), 0, 0)
	require.Equal(t, NodeOK, node.Status)
}

func TestTransferMovesBetweenNodesAndDebitsEdge(t *testing.T) {
	n := newTestNetwork(t)
	n.Store(1, fixedpoint.FromInt(20), 0, 0)

	code := n.Transfer(1, 1, 2, fixedpoint.FromInt(10), fixedpoint.FromInt(1), 0)
	require.Equal(t, ReasonOK, code)

	from, _ := n.Nodes.Find(1)
	to, _ := n.Nodes.Find(2)
	edge, _ := n.Edges.Find(1)
	require.Equal(t, fixedpoint.FromInt(10), from.StoredQ16)
	require.Equal(t, fixedpoint.FromInt(9), to.StoredQ16)
	require.Equal(t, fixedpoint.FromInt(40), edge.CapacityQ16)
}

func TestTransferInsufficientStorage(t *testing.T) {
	n := newTestNetwork(t)
	code := n.Transfer(1, 1, 2, fixedpoint.FromInt(5), 0, 0)
	require.Equal(t, ReasonInsufficientStorage, code)
}

func TestTransferFailsEdgeOnOverdraw(t *testing.T) {
	n := newTestNetwork(t)
	n.Store(1, fixedpoint.FromInt(100), 0, 0)

	code := n.Transfer(1, 1, 2, fixedpoint.FromInt(60), 0, 0)
	require.Equal(t, ReasonEdgeCapacity, code)
	edge, _ := n.Edges.Find(1)
	require.Equal(t, EdgeFailed, edge.Status)
}

func TestTransferOnAlreadyFailedEdgeRefuses(t *testing.T) {
	n := newTestNetwork(t)
	edge, _ := n.Edges.Find(1)
	edge.Status = EdgeFailed
	n.Store(1, fixedpoint.FromInt(100), 0, 0)

	code := n.Transfer(1, 1, 2, fixedpoint.FromInt(1), 0, 0)
	require.Equal(t, ReasonEdgeCapacity, code)
}

func TestTickDegradesThenFailsNodeBelowMinRequired(t *testing.T) {
	n := newTestNetwork(t)
	node, _ := n.Nodes.Find(1)
	node.MinRequired = fixedpoint.FromInt(50)

	n.Tick(0)
	require.Equal(t, NodeDegraded, node.Status)

	n.Tick(1)
	n.Tick(2)
	require.Equal(t, NodeDegraded, node.Status)
	n.Tick(3)
	require.Equal(t, NodeFailed, node.Status)
}

func TestTickIterationIsInsertionOrder(t *testing.T) {
	n := New(1)
	var seen []ids.RefID
	for _, id := range []ids.RefID{5, 1, 3} {
		require.NoError(t, n.Nodes.Register(id, &Node{NodeID: id, CapacityQ16: fixedpoint.FromInt(10)}))
	}
	n.Nodes.All(func(id ids.RefID, _ *Node) bool {
		seen = append(seen, id)
		return true
	})
	require.Equal(t, []ids.RefID{5, 1, 3}, seen)
}
