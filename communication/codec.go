package communication

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"stagedb/plan"
)

// PlanCodec ships planned queries to workers: fragments are converted to a
// tagged wire form, JSON-encoded and snappy-compressed. Only the fragment
// DAG travels; the coordinator keeps the full inline tree for itself.
type PlanCodec struct{}

// NewPlanCodec creates a plan codec
func NewPlanCodec() *PlanCodec {
	return &PlanCodec{}
}

type wirePlan struct {
	QueryID   string          `json:"query_id"`
	Fragments []*wireFragment `json:"fragments"`
}

type wireFragment struct {
	ID      plan.FragmentID   `json:"id"`
	Output  plan.Distribution `json:"output"`
	Sources []plan.FragmentID `json:"sources,omitempty"`
	Root    *wireNode         `json:"root"`
}

// wireNode is the tagged union of every plan node variant.
type wireNode struct {
	Kind string      `json:"kind"`
	ID   plan.NodeID `json:"id"`

	Catalog      string             `json:"catalog,omitempty"`
	Schema       string             `json:"schema,omitempty"`
	Table        string             `json:"table,omitempty"`
	LayoutID     string             `json:"layout_id,omitempty"`
	Constraint   string             `json:"constraint,omitempty"`
	Partitioning *plan.Distribution `json:"partitioning,omitempty"`

	Predicate string `json:"predicate,omitempty"`

	Columns    []string             `json:"columns,omitempty"`
	Keys       []string             `json:"keys,omitempty"`
	Aggregates []plan.AggregateCall `json:"aggregates,omitempty"`
	Step       plan.AggregateStep   `json:"step,omitempty"`

	JoinKind         plan.JoinKind         `json:"join_kind,omitempty"`
	JoinDistribution plan.JoinDistribution `json:"join_distribution,omitempty"`
	Criteria         []plan.JoinClause     `json:"criteria,omitempty"`
	SourceKey        string                `json:"source_key,omitempty"`
	FilteringKey     string                `json:"filtering_key,omitempty"`

	Scope plan.ExchangeScope `json:"scope,omitempty"`
	Type  plan.ExchangeType  `json:"type,omitempty"`

	Fragment plan.FragmentID `json:"fragment,omitempty"`

	Children []*wireNode `json:"children,omitempty"`
}

// Encode serializes a planned query for transport.
func (c *PlanCodec) Encode(pq *plan.PlannedQuery) ([]byte, error) {
	wire := &wirePlan{QueryID: pq.QueryID}
	for _, fragment := range pq.Fragments {
		wire.Fragments = append(wire.Fragments, &wireFragment{
			ID:      fragment.ID,
			Output:  fragment.Output,
			Sources: fragment.Sources,
			Root:    toWire(fragment.Root),
		})
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode plan %s: %w", pq.QueryID, err)
	}
	return snappy.Encode(nil, data), nil
}

// Decode reverses Encode. The returned query carries the fragment DAG only,
// with no inline root tree.
func (c *PlanCodec) Decode(payload []byte) (*plan.PlannedQuery, error) {
	data, err := snappy.Decode(nil, payload)
	if err != nil {
		return nil, fmt.Errorf("decompress plan: %w", err)
	}
	var wire wirePlan
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}

	pq := &plan.PlannedQuery{QueryID: wire.QueryID}
	known := make(map[plan.FragmentID]bool, len(wire.Fragments))
	for _, fragment := range wire.Fragments {
		known[fragment.ID] = true
	}
	for _, fragment := range wire.Fragments {
		for _, source := range fragment.Sources {
			if !known[source] {
				return nil, fmt.Errorf("decode plan: fragment %d reads from unknown fragment %d", fragment.ID, source)
			}
		}
		root, err := fromWire(fragment.Root)
		if err != nil {
			return nil, err
		}
		pq.Fragments = append(pq.Fragments, &plan.Fragment{
			ID:      fragment.ID,
			Output:  fragment.Output,
			Sources: fragment.Sources,
			Root:    root,
		})
	}
	return pq, nil
}

func toWire(node plan.Node) *wireNode {
	w := &wireNode{ID: node.ID()}
	switch n := node.(type) {
	case *plan.ScanNode:
		w.Kind = "scan"
		w.Catalog, w.Schema, w.Table = n.Catalog, n.Schema, n.Table
		w.LayoutID, w.Constraint = n.LayoutID, n.Constraint
		partitioning := n.Partitioning
		w.Partitioning = &partitioning
		w.Columns = n.Columns
	case *plan.FilterNode:
		w.Kind = "filter"
		w.Predicate = n.Predicate
	case *plan.ProjectNode:
		w.Kind = "project"
		w.Columns = n.Columns
	case *plan.AggregateNode:
		w.Kind = "aggregate"
		w.Keys, w.Aggregates, w.Step = n.Keys, n.Aggregates, n.Step
	case *plan.JoinNode:
		w.Kind = "join"
		w.JoinKind, w.JoinDistribution, w.Criteria = n.Kind, n.Distribution, n.Criteria
	case *plan.SemiJoinNode:
		w.Kind = "semijoin"
		w.JoinDistribution = n.Distribution
		w.SourceKey, w.FilteringKey = n.SourceKey, n.FilteringKey
	case *plan.CrossJoinNode:
		w.Kind = "crossjoin"
	case *plan.ExchangeNode:
		w.Kind = "exchange"
		w.Scope, w.Type = n.Scope, n.Type
		partitioning := n.Partitioning
		w.Partitioning = &partitioning
	case *plan.RemoteSourceNode:
		w.Kind = "remotesource"
		w.Fragment = n.Fragment
		partitioning := n.Partitioning
		w.Partitioning = &partitioning
	case *plan.OutputNode:
		w.Kind = "output"
		w.Columns = n.Columns
	default:
		panic(fmt.Sprintf("unhandled plan node %T", node))
	}
	for _, child := range node.Children() {
		w.Children = append(w.Children, toWire(child))
	}
	return w
}

func fromWire(w *wireNode) (plan.Node, error) {
	children := make([]plan.Node, len(w.Children))
	for i, childWire := range w.Children {
		child, err := fromWire(childWire)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	childAt := func(i int) (plan.Node, error) {
		if i >= len(children) {
			return nil, fmt.Errorf("decode plan: %s node %d missing child %d", w.Kind, w.ID, i)
		}
		return children[i], nil
	}

	partitioning := plan.ArbitraryDistribution()
	if w.Partitioning != nil {
		partitioning = *w.Partitioning
	}

	switch w.Kind {
	case "scan":
		return &plan.ScanNode{
			Id: w.ID, Catalog: w.Catalog, Schema: w.Schema, Table: w.Table,
			LayoutID: w.LayoutID, Constraint: w.Constraint,
			Partitioning: partitioning, Columns: w.Columns,
		}, nil
	case "filter":
		source, err := childAt(0)
		if err != nil {
			return nil, err
		}
		return &plan.FilterNode{Id: w.ID, Source: source, Predicate: w.Predicate}, nil
	case "project":
		source, err := childAt(0)
		if err != nil {
			return nil, err
		}
		return &plan.ProjectNode{Id: w.ID, Source: source, Columns: w.Columns}, nil
	case "aggregate":
		source, err := childAt(0)
		if err != nil {
			return nil, err
		}
		return &plan.AggregateNode{Id: w.ID, Source: source, Keys: w.Keys, Aggregates: w.Aggregates, Step: w.Step}, nil
	case "join":
		if len(children) != 2 {
			return nil, fmt.Errorf("decode plan: join node %d needs two children", w.ID)
		}
		return &plan.JoinNode{
			Id: w.ID, Kind: w.JoinKind, Distribution: w.JoinDistribution,
			Left: children[0], Right: children[1], Criteria: w.Criteria,
		}, nil
	case "semijoin":
		if len(children) != 2 {
			return nil, fmt.Errorf("decode plan: semijoin node %d needs two children", w.ID)
		}
		return &plan.SemiJoinNode{
			Id: w.ID, Distribution: w.JoinDistribution,
			Source: children[0], Filtering: children[1],
			SourceKey: w.SourceKey, FilteringKey: w.FilteringKey,
		}, nil
	case "crossjoin":
		if len(children) != 2 {
			return nil, fmt.Errorf("decode plan: cross join node %d needs two children", w.ID)
		}
		return &plan.CrossJoinNode{Id: w.ID, Left: children[0], Right: children[1]}, nil
	case "exchange":
		return &plan.ExchangeNode{Id: w.ID, Scope: w.Scope, Type: w.Type, Partitioning: partitioning, Sources: children}, nil
	case "remotesource":
		return &plan.RemoteSourceNode{Id: w.ID, Fragment: w.Fragment, Partitioning: partitioning}, nil
	case "output":
		source, err := childAt(0)
		if err != nil {
			return nil, err
		}
		return &plan.OutputNode{Id: w.ID, Source: source, Columns: w.Columns}, nil
	default:
		return nil, fmt.Errorf("decode plan: unknown node kind %q", w.Kind)
	}
}
