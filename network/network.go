// Package network implements the distribution-network graph (spec.md
// §4.7, component C7): nodes and edges with capacity/stored/loss,
// store/transfer/tick operations, and insertion-order iteration for
// deterministic tick propagation.
package network

import (
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/registry"
)

// NodeStatus is a node's operational state.
type NodeStatus uint8

const (
	NodeOK NodeStatus = iota
	NodeDegraded
	NodeFailed
)

// Node holds a single storage point on a network.
type Node struct {
	NodeID      ids.RefID
	CapacityQ16 fixedpoint.Q16
	StoredQ16   fixedpoint.Q16
	MinRequired fixedpoint.Q16
	Status      NodeStatus
	// DegradedSinceTick records when a node entered NodeDegraded, used by
	// Tick to demote it to NodeFailed after a fixed cooldown.
	DegradedSinceTick ids.Tick
}

// EdgeStatus is an edge's operational state.
type EdgeStatus uint8

const (
	EdgeOK EdgeStatus = iota
	EdgeFailed
)

// Edge connects two nodes with a capacity budget consumed by transfers.
type Edge struct {
	EdgeID      ids.RefID
	FromNodeID  ids.RefID
	ToNodeID    ids.RefID
	CapacityQ16 fixedpoint.Q16
	Status      EdgeStatus
}

// StoreResult/TransferResult reason codes, returned as negative ints per
// spec.md §4.7 ("returns 0 on ok else a negative code mapping to a
// reason tag").
const (
	ReasonOK                 = 0
	ReasonMissing            = -1
	ReasonCapacity           = -2
	ReasonInsufficientStorage = -3
	ReasonEdgeCapacity       = -4
)

// DegradeCooldown is the fixed number of ticks a degraded node spends
// before being demoted to failed (spec.md §4.7: "demotes degraded after
// a fixed cooldown").
const DegradeCooldown ids.Tick = 3

// Network is one distribution graph: an insertion-ordered node registry
// and an insertion-ordered edge registry.
type Network struct {
	NetworkID ids.RefID
	Nodes     *registry.Registry[ids.RefID, *Node]
	Edges     *registry.Registry[ids.RefID, *Edge]
}

// New constructs an empty, unbounded network.
func New(networkID ids.RefID) *Network {
	return &Network{
		NetworkID: networkID,
		Nodes:     registry.New[ids.RefID, *Node](0),
		Edges:     registry.New[ids.RefID, *Edge](0),
	}
}

// Store adds amount to node's stored value, clamped to capacity, less
// loss (spec.md §4.7).
func (n *Network) Store(nodeID ids.RefID, amount, loss fixedpoint.Q16, now ids.Tick) int {
	node, ok := n.Nodes.Find(nodeID)
	if !ok {
		return ReasonMissing
	}
	net := amount.Sub(loss)
	sum := node.StoredQ16.Add(net)
	if sum > node.CapacityQ16 {
		node.StoredQ16 = node.CapacityQ16
		return ReasonCapacity
	}
	node.StoredQ16 = sum.Clamp(0, node.CapacityQ16)
	if node.Status == NodeFailed && node.StoredQ16 >= node.MinRequired {
		node.Status = NodeOK
		node.DegradedSinceTick = 0
	}
	return ReasonOK
}

// Transfer moves amount from fromID to toID across edgeID, debiting the
// edge's capacity budget (spec.md §4.7). On edge overdraw the edge
// transitions ok → failed and -4 is returned.
func (n *Network) Transfer(edgeID, fromID, toID ids.RefID, amount, loss fixedpoint.Q16, now ids.Tick) int {
	edge, ok := n.Edges.Find(edgeID)
	if !ok {
		return ReasonMissing
	}
	from, ok := n.Nodes.Find(fromID)
	if !ok {
		return ReasonMissing
	}
	to, ok := n.Nodes.Find(toID)
	if !ok {
		return ReasonMissing
	}
	if edge.Status == EdgeFailed {
		return ReasonEdgeCapacity
	}
	if from.StoredQ16 < amount {
		return ReasonInsufficientStorage
	}
	if edge.CapacityQ16 < amount {
		edge.Status = EdgeFailed
		return ReasonEdgeCapacity
	}
	net := amount.Sub(loss)
	to.StoredQ16 = to.StoredQ16.Add(net).Clamp(0, to.CapacityQ16)
	from.StoredQ16 = from.StoredQ16.Sub(amount).Clamp(0, from.CapacityQ16)
	edge.CapacityQ16 = edge.CapacityQ16.Sub(amount)
	return ReasonOK
}

// Tick visits nodes in insertion order (spec.md §4.7). An ok node whose
// stored is below min_required becomes degraded; a degraded node returns
// to ok once stored reaches min_required again, and becomes failed after
// DegradeCooldown ticks below it. Edges are not visited.
func (n *Network) Tick(now ids.Tick) {
	n.Nodes.All(func(_ ids.RefID, node *Node) bool {
		switch node.Status {
		case NodeOK:
			if node.StoredQ16 < node.MinRequired {
				node.Status = NodeDegraded
				node.DegradedSinceTick = now
			}
		case NodeDegraded:
			if node.StoredQ16 >= node.MinRequired {
				node.Status = NodeOK
				node.DegradedSinceTick = 0
			} else if now-node.DegradedSinceTick >= DegradeCooldown {
				node.Status = NodeFailed
			}
		}
		return true
	})
}
