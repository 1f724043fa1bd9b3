// Package cluster holds the fleet snapshot the admin client dispatches
// against: nodes, their admin ports, and the partitions they own.
package cluster

import "fmt"

// Node describes a single member of the fleet.
type Node struct {
	ID         int32
	Host       string
	ClientPort int32
	AdminPort  int32
	Partitions []int32
}

// Descriptor is an immutable snapshot of the fleet. It is never mutated in
// place; callers that need a new view build a new Descriptor and swap it in
// via Client.SetCluster.
type Descriptor struct {
	nodes   []Node
	byID    map[int32]Node
}

// NewDescriptor builds a Descriptor from an ordered set of nodes.
func NewDescriptor(nodes []Node) Descriptor {
	d := Descriptor{
		nodes: append([]Node(nil), nodes...),
		byID:  make(map[int32]Node, len(nodes)),
	}
	for _, n := range d.nodes {
		d.byID[n.ID] = n
	}
	return d
}

// Nodes returns the ordered set of nodes in the descriptor. The returned
// slice is a defensive copy.
func (d Descriptor) Nodes() []Node {
	return append([]Node(nil), d.nodes...)
}

// NodeByID looks up a node by id. A missing node is a caller error: the
// zero Node and ok=false are returned rather than panicking.
func (d Descriptor) NodeByID(id int32) (Node, bool) {
	n, ok := d.byID[id]
	return n, ok
}

// MustNodeByID looks up a node by id, returning an error suitable for
// propagation instead of panicking.
func (d Descriptor) MustNodeByID(id int32) (Node, error) {
	n, ok := d.byID[id]
	if !ok {
		return Node{}, fmt.Errorf("cluster: no node with id %d", id)
	}
	return n, nil
}
