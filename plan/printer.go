package plan

import (
	"fmt"
	"strings"
)

// FormatPlan renders the exchange-inserted tree as the deterministic,
// line-oriented text checked by golden comparisons. Two-space indent per
// nesting level, one node per line, `:` suffix on nodes with more than one
// child. Column lists render in declaration order, never sorted.
func FormatPlan(root Node) string {
	var sb strings.Builder
	formatNode(&sb, root, 0)
	return sb.String()
}

// FormatFragments renders every fragment of a planned query, child-to-root,
// each under a `fragment <id> [<distribution>]` header.
func FormatFragments(pq *PlannedQuery) string {
	var sb strings.Builder
	for i, f := range pq.Fragments {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("fragment %d [%s]\n", f.ID, f.Output.Label()))
		formatNode(&sb, f.Root, 1)
	}
	return sb.String()
}

func formatNode(sb *strings.Builder, node Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := nodeLine(node)
	if len(node.Children()) > 1 {
		line += ":"
	}
	sb.WriteString(indent + line + "\n")
	for _, child := range node.Children() {
		formatNode(sb, child, depth+1)
	}
}

func nodeLine(node Node) string {
	switch n := node.(type) {
	case *OutputNode:
		return "output"
	case *ProjectNode:
		return fmt.Sprintf("project (%s)", strings.Join(n.Columns, ", "))
	case *FilterNode:
		return fmt.Sprintf("filter (%s)", n.Predicate)
	case *ScanNode:
		return fmt.Sprintf("scan %s:%s.%s:%s", n.Catalog, n.Schema, n.Table, n.LayoutID)
	case *AggregateNode:
		return fmt.Sprintf("%s aggregation over (%s)",
			strings.ToLower(string(n.Step)), strings.Join(n.Keys, ", "))
	case *JoinNode:
		return fmt.Sprintf("join (%s, %s)", n.Kind, n.Distribution)
	case *SemiJoinNode:
		return fmt.Sprintf("semijoin (%s)", n.Distribution)
	case *CrossJoinNode:
		return "cross join (REPLICATED)"
	case *ExchangeNode:
		return fmt.Sprintf("%s exchange (%s, %s, %s)",
			strings.ToLower(string(n.Scope)), n.Type, exchangePartitioningName(n), quotedList(n.Partitioning.Columns))
	case *RemoteSourceNode:
		return fmt.Sprintf("remote source (fragment %d)", n.Fragment)
	default:
		panic(fmt.Sprintf("unhandled plan node %T", node))
	}
}

// exchangePartitioningName maps the exchange type to the partitioning token
// used in the text form: many-to-one gathers are SINGLE, repartitions are
// HASH, broadcasts are BROADCAST.
func exchangePartitioningName(n *ExchangeNode) string {
	switch n.Type {
	case ExchangeGather:
		return "SINGLE"
	case ExchangeRepartition:
		return "HASH"
	case ExchangeReplicate:
		return "BROADCAST"
	default:
		panic(fmt.Sprintf("unhandled exchange type %s", n.Type))
	}
}
