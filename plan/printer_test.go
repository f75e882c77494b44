package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func scanOrders() *ScanNode {
	return &ScanNode{
		Catalog:      "memory",
		Schema:       "default",
		Table:        "orders",
		LayoutID:     "layout-0",
		Partitioning: ArbitraryDistribution(),
	}
}

func TestFormatPlanAggregation(t *testing.T) {
	tree := &OutputNode{
		Columns: []string{"k", "count"},
		Source: &ExchangeNode{
			Scope:        ScopeRemote,
			Type:         ExchangeGather,
			Partitioning: SingleDistribution(),
			Sources: []Node{
				&AggregateNode{
					Keys:       []string{"k"},
					Aggregates: []AggregateCall{{Function: "COUNT", Argument: "*", Alias: "count"}},
					Step:       StepFinal,
					Source: &ExchangeNode{
						Scope:        ScopeRemote,
						Type:         ExchangeRepartition,
						Partitioning: HashDistribution("k"),
						Sources: []Node{
							&AggregateNode{
								Keys:       []string{"k"},
								Aggregates: []AggregateCall{{Function: "COUNT", Argument: "*", Alias: "count"}},
								Step:       StepPartial,
								Source:     scanOrders(),
							},
						},
					},
				},
			},
		},
	}

	want := `output
  remote exchange (GATHER, SINGLE, [])
    final aggregation over (k)
      remote exchange (REPARTITION, HASH, ["k"])
        partial aggregation over (k)
          scan memory:default.orders:layout-0
`
	assert.Equal(t, want, FormatPlan(tree))
	// Rendering is a pure function of the tree.
	assert.Equal(t, want, FormatPlan(tree))
}

func TestFormatPlanBroadcastJoin(t *testing.T) {
	small := &ScanNode{Catalog: "memory", Schema: "default", Table: "nation", LayoutID: "layout-0"}
	tree := &JoinNode{
		Kind:         JoinInner,
		Distribution: JoinReplicated,
		Left:         scanOrders(),
		Right: &ExchangeNode{
			Scope:        ScopeRemote,
			Type:         ExchangeReplicate,
			Partitioning: ReplicatedDistribution(),
			Sources: []Node{
				&ExchangeNode{
					Scope:        ScopeLocal,
					Type:         ExchangeGather,
					Partitioning: SingleDistribution(),
					Sources:      []Node{small},
				},
			},
		},
		Criteria: []JoinClause{{Left: "nation_id", Right: "id"}},
	}

	want := `join (INNER, REPLICATED):
  scan memory:default.orders:layout-0
  remote exchange (REPLICATE, BROADCAST, [])
    local exchange (GATHER, SINGLE, [])
      scan memory:default.nation:layout-0
`
	assert.Equal(t, want, FormatPlan(tree))
}

func TestFormatPlanNodeLines(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"filter", &FilterNode{Source: scanOrders(), Predicate: "price > 10"}, "filter (price > 10)"},
		{"project", &ProjectNode{Source: scanOrders(), Columns: []string{"a", "b"}}, "project (a, b)"},
		{"global aggregation", &AggregateNode{Source: scanOrders(), Step: StepSingle}, "single aggregation over ()"},
		{"semijoin", &SemiJoinNode{Source: scanOrders(), Filtering: scanOrders(), Distribution: JoinPartitioned}, "semijoin (PARTITIONED)"},
		{"cross join", &CrossJoinNode{Left: scanOrders(), Right: scanOrders()}, "cross join (REPLICATED)"},
		{"remote source", &RemoteSourceNode{Fragment: 2, Partitioning: SingleDistribution()}, "remote source (fragment 2)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nodeLine(tt.node))
		})
	}
}

func TestFormatFragments(t *testing.T) {
	pq := &PlannedQuery{
		QueryID: "q1",
		Fragments: []*Fragment{
			{
				ID:     1,
				Output: HashDistribution("k"),
				Root: &AggregateNode{
					Id:         4,
					Keys:       []string{"k"},
					Step:       StepPartial,
					Source:     &ScanNode{Id: 5, Catalog: "memory", Schema: "default", Table: "orders", LayoutID: "layout-0"},
					Aggregates: []AggregateCall{{Function: "COUNT", Argument: "*", Alias: "count"}},
				},
			},
			{
				ID:      2,
				Output:  SingleDistribution(),
				Sources: []FragmentID{1},
				Root: &AggregateNode{
					Id:   2,
					Keys: []string{"k"},
					Step: StepFinal,
					Source: &ExchangeNode{
						Id:           3,
						Scope:        ScopeRemote,
						Type:         ExchangeRepartition,
						Partitioning: HashDistribution("k"),
						Sources:      []Node{&RemoteSourceNode{Id: 6, Fragment: 1, Partitioning: HashDistribution("k")}},
					},
					Aggregates: []AggregateCall{{Function: "COUNT", Argument: "*", Alias: "count"}},
				},
			},
		},
	}

	want := `fragment 1 [HASH ["k"]]
  partial aggregation over (k)
    scan memory:default.orders:layout-0

fragment 2 [SINGLE]
  final aggregation over (k)
    remote exchange (REPARTITION, HASH, ["k"])
      remote source (fragment 1)
`
	assert.Equal(t, want, FormatFragments(pq))
	assert.Equal(t, pq.Fragments[1], pq.RootFragment())
	assert.Equal(t, pq.Fragments[0], pq.FragmentByID(1))
	assert.Nil(t, pq.FragmentByID(9))
}
