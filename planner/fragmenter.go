package planner

import "stagedb/plan"

// fragmenter cuts the exchange-inserted tree into the fragment DAG. Every
// remote exchange is a fragment boundary: the subtree under each of its
// children becomes a source fragment, replaced in the consuming fragment by
// a remote source marker. Fragments are emitted child-to-root, so the list
// order is the order they can be scheduled; the root fragment comes last
// with output distribution Single.
type fragmenter struct {
	nextNodeID   plan.NodeID
	nextFragment plan.FragmentID
	fragments    []*plan.Fragment
}

// fragmentPlan splits a fully numbered plan tree. maxNodeID is the highest
// node id already in use; fresh remote source nodes are numbered above it.
func fragmentPlan(root plan.Node, maxNodeID plan.NodeID) []*plan.Fragment {
	f := &fragmenter{
		nextNodeID:   maxNodeID,
		nextFragment: 1,
	}
	f.newFragment(root, plan.SingleDistribution())
	return f.fragments
}

func (f *fragmenter) newFragment(root plan.Node, output plan.Distribution) plan.FragmentID {
	// Child fragments are created during the rebuild, so they take
	// smaller ids and earlier list positions than this fragment.
	newRoot, sources := f.rebuild(root)
	id := f.nextFragment
	f.nextFragment++
	f.fragments = append(f.fragments, &plan.Fragment{
		ID:      id,
		Root:    newRoot,
		Output:  output,
		Sources: sources,
	})
	return id
}

// rebuild returns the fragment-local version of a subtree plus the ids of
// the fragments it reads from. Nodes without remote exchanges below them
// are shared with the full tree; they are immutable after planning.
func (f *fragmenter) rebuild(node plan.Node) (plan.Node, []plan.FragmentID) {
	if exchange, ok := node.(*plan.ExchangeNode); ok && exchange.Scope == plan.ScopeRemote {
		sources := make([]plan.Node, len(exchange.Sources))
		ids := make([]plan.FragmentID, len(exchange.Sources))
		for i, child := range exchange.Sources {
			childID := f.newFragment(child, exchange.Partitioning)
			ids[i] = childID
			f.nextNodeID++
			sources[i] = &plan.RemoteSourceNode{
				Id:           f.nextNodeID,
				Fragment:     childID,
				Partitioning: exchange.Partitioning,
			}
		}
		clone := *exchange
		clone.Sources = sources
		return &clone, ids
	}

	children := node.Children()
	if len(children) == 0 {
		return node, nil
	}

	newChildren := make([]plan.Node, len(children))
	var ids []plan.FragmentID
	changed := false
	for i, child := range children {
		newChild, childIDs := f.rebuild(child)
		newChildren[i] = newChild
		ids = append(ids, childIDs...)
		if newChild != child {
			changed = true
		}
	}
	if !changed {
		return node, ids
	}
	return plan.CloneWithChildren(node, newChildren), ids
}
