package planner

import (
	"github.com/RoaringBitmap/roaring/v2"

	"stagedb/plan"
)

// validateAcyclic rejects cyclic logical input before planning walks it.
// Repeated (acyclic) subtrees are tolerated: each occurrence is planned
// independently, no deduplication is assumed.
func validateAcyclic(root plan.Node) {
	onStack := make(map[plan.Node]bool)
	var walk func(plan.Node)
	walk = func(node plan.Node) {
		invariant(!onStack[node], "cycle through %T in logical tree", node)
		onStack[node] = true
		for _, child := range node.Children() {
			walk(child)
		}
		onStack[node] = false
	}
	walk(root)
}

// assignIDs numbers every node of the built tree pre-order and returns the
// highest id used. A node reached twice still carries its number from the
// first visit, which exposes aliasing introduced by a builder bug.
func assignIDs(root plan.Node) plan.NodeID {
	var next plan.NodeID
	plan.Walk(root, func(node plan.Node) {
		invariant(node.ID() == 0, "node %T aliased into the plan twice", node)
		next++
		node.SetID(next)
	})
	return next
}

// validateFragments checks the structural invariants of the finished
// fragment DAG: node ids are unique across fragments, every remote exchange
// sits exactly at a fragment boundary (all its children are remote
// sources), local exchanges never cross one, and every remote source names
// an existing upstream fragment.
func validateFragments(fragments []*plan.Fragment) {
	known := make(map[plan.FragmentID]bool, len(fragments))
	for _, f := range fragments {
		known[f.ID] = true
	}

	seen := roaring.New()
	for _, fragment := range fragments {
		plan.Walk(fragment.Root, func(node plan.Node) {
			id := uint32(node.ID())
			invariant(id != 0, "unnumbered %T in fragment %d", node, fragment.ID)
			invariant(!seen.Contains(id), "node id %d appears in two fragments", id)
			seen.Add(id)

			switch n := node.(type) {
			case *plan.ExchangeNode:
				for _, child := range n.Sources {
					_, remote := child.(*plan.RemoteSourceNode)
					if n.Scope == plan.ScopeRemote {
						invariant(remote, "remote exchange %d is not a fragment boundary", n.Id)
					} else {
						invariant(!remote, "local exchange %d crosses a fragment boundary", n.Id)
					}
				}
			case *plan.RemoteSourceNode:
				invariant(known[n.Fragment], "remote source %d names unknown fragment %d", n.Id, n.Fragment)
				invariant(n.Fragment < fragment.ID, "fragment %d reads from a downstream fragment %d", fragment.ID, n.Fragment)
			}
		})
	}
}
