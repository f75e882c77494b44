package plan

// FragmentID identifies a fragment within one planned query.
type FragmentID int

// Fragment is a maximal subtree of the plan executed as one distributed
// stage with a single declared output distribution. Its boundary is exactly
// where a remote exchange was inserted; the subtree below each remote
// exchange became a source fragment, replaced in this fragment's tree by a
// RemoteSourceNode.
type Fragment struct {
	ID     FragmentID
	Root   Node
	Output Distribution
	// Sources are the fragments feeding this one, in the order their
	// remote sources appear in the tree.
	Sources []FragmentID
}

// PlannedQuery is the finished fragmentation of one query: the full
// exchange-inserted tree plus the fragment DAG cut at remote exchanges.
// Fragments are listed child-to-root, the order they are scheduled; the
// last entry is the root fragment and its output distribution is Single.
type PlannedQuery struct {
	QueryID   string
	Root      Node
	Fragments []*Fragment
}

// RootFragment returns the coordinator-side fragment.
func (p *PlannedQuery) RootFragment() *Fragment {
	if len(p.Fragments) == 0 {
		return nil
	}
	return p.Fragments[len(p.Fragments)-1]
}

// FragmentByID returns the fragment with the given id, or nil.
func (p *PlannedQuery) FragmentByID(id FragmentID) *Fragment {
	for _, f := range p.Fragments {
		if f.ID == id {
			return f
		}
	}
	return nil
}
