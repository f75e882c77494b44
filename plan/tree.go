package plan

import "fmt"

// Walk visits node and its children pre-order.
func Walk(node Node, visit func(Node)) {
	visit(node)
	for _, child := range node.Children() {
		Walk(child, visit)
	}
}

// CloneWithChildren returns a shallow copy of node with its children
// replaced. The children slice must match the node's child count.
func CloneWithChildren(node Node, children []Node) Node {
	if len(children) != len(node.Children()) {
		panic(fmt.Sprintf("clone %T: got %d children, want %d", node, len(children), len(node.Children())))
	}
	switch n := node.(type) {
	case *ScanNode, *RemoteSourceNode:
		return node
	case *FilterNode:
		clone := *n
		clone.Source = children[0]
		return &clone
	case *ProjectNode:
		clone := *n
		clone.Source = children[0]
		return &clone
	case *AggregateNode:
		clone := *n
		clone.Source = children[0]
		return &clone
	case *JoinNode:
		clone := *n
		clone.Left, clone.Right = children[0], children[1]
		return &clone
	case *SemiJoinNode:
		clone := *n
		clone.Source, clone.Filtering = children[0], children[1]
		return &clone
	case *CrossJoinNode:
		clone := *n
		clone.Left, clone.Right = children[0], children[1]
		return &clone
	case *ExchangeNode:
		clone := *n
		clone.Sources = children
		return &clone
	case *OutputNode:
		clone := *n
		clone.Source = children[0]
		return &clone
	default:
		panic(fmt.Sprintf("unhandled plan node %T", node))
	}
}
