package planner

import (
	"context"
	"fmt"

	"stagedb/catalog"
	"stagedb/core"
	"stagedb/plan"
)

// LayoutProvider is the slice of the connector contract the planner
// consumes: candidate layouts for a table reference, nothing else.
type LayoutProvider interface {
	GetTableLayouts(ctx context.Context, identifier catalog.TableIdentifier, constraint catalog.Constraint, desiredColumns []string) ([]catalog.TableLayout, error)
}

// Builder turns a logical operator tree into a fragmented distributed plan:
// one bottom-up pass computes every node's produced distribution, inserts
// remote exchanges where a consumer requires a distribution its child does
// not already satisfy, and cuts the tree into fragments at those exchanges.
// A Builder is stateless across queries and safe for concurrent use.
type Builder struct {
	catalog LayoutProvider
	options PlannerOptions
	tracer  *core.Tracer
}

// NewBuilder creates a new plan builder
func NewBuilder(provider LayoutProvider, options PlannerOptions) *Builder {
	return &Builder{
		catalog: provider,
		options: options,
		tracer:  core.GetTracer(),
	}
}

// Plan fragments one query. The input tree is not modified; the returned
// PlannedQuery owns a fresh tree. Internal invariant violations abort only
// this query's planning.
func (b *Builder) Plan(ctx context.Context, session *Session, root plan.Node) (pq *plan.PlannedQuery, err error) {
	queryID := ""
	if session != nil {
		queryID = session.QueryID
	}
	defer func() {
		if r := recover(); r != nil {
			pq = nil
			err = &PlanError{QueryID: queryID, Err: fmt.Errorf("%v", r)}
		}
	}()

	validateAcyclic(root)

	st := &build{
		builder:   b,
		ctx:       ctx,
		session:   session,
		estimates: make(map[plan.Node]int64),
	}
	rewritten, dist, err := st.visit(root)
	if err != nil {
		return nil, &PlanError{QueryID: queryID, Err: err}
	}

	// The terminal consumer is the coordinator: one stream.
	if !dist.Satisfies(plan.SingleDistribution()) {
		rewritten = st.exchangeFor(rewritten, plan.SingleDistribution())
	}

	nextID := assignIDs(rewritten)
	fragments := fragmentPlan(rewritten, nextID)
	validateFragments(fragments)

	b.tracer.Info(core.TraceComponentPlanner, "query planned", core.TraceContext(
		"query", queryID,
		"fragments", len(fragments),
	))

	return &plan.PlannedQuery{
		QueryID:   queryID,
		Root:      rewritten,
		Fragments: fragments,
	}, nil
}

// build is the per-query state of one planning pass.
type build struct {
	builder   *Builder
	ctx       context.Context
	session   *Session
	estimates map[plan.Node]int64 // estimated output rows; absent means unknown
}

// visit rewrites a logical subtree and returns the produced distribution of
// the rewritten root. Every returned node is fresh; the input is never
// aliased into the output.
func (st *build) visit(node plan.Node) (plan.Node, plan.Distribution, error) {
	switch n := node.(type) {
	case *plan.ScanNode:
		return st.visitScan(n)
	case *plan.FilterNode:
		source, dist, err := st.visit(n.Source)
		if err != nil {
			return nil, plan.Distribution{}, err
		}
		clone := *n
		clone.Source = source
		st.setEstimate(&clone, st.estimate(source))
		return &clone, dist, nil
	case *plan.ProjectNode:
		source, dist, err := st.visit(n.Source)
		if err != nil {
			return nil, plan.Distribution{}, err
		}
		clone := *n
		clone.Source = source
		st.setEstimate(&clone, st.estimate(source))
		return &clone, dist, nil
	case *plan.AggregateNode:
		return st.visitAggregate(n)
	case *plan.JoinNode:
		return st.visitJoin(n)
	case *plan.SemiJoinNode:
		return st.visitSemiJoin(n)
	case *plan.CrossJoinNode:
		return st.visitCrossJoin(n)
	case *plan.OutputNode:
		source, dist, err := st.visit(n.Source)
		if err != nil {
			return nil, plan.Distribution{}, err
		}
		source, _ = st.ensure(source, dist, plan.SingleDistribution())
		clone := *n
		clone.Source = source
		return &clone, plan.SingleDistribution(), nil
	case *plan.ExchangeNode, *plan.RemoteSourceNode:
		invariant(false, "%T in logical tree: exchanges are inserted by the builder", n)
		return nil, plan.Distribution{}, nil
	default:
		invariant(false, "unhandled plan node %T", node)
		return nil, plan.Distribution{}, nil
	}
}

// visitScan resolves the scan's layout through the connector. No layout is
// not an error: the scan proceeds with the most conservative distribution.
func (st *build) visitScan(n *plan.ScanNode) (plan.Node, plan.Distribution, error) {
	clone := *n
	produced := plan.ArbitraryDistribution()

	identifier := catalog.TableIdentifier{Catalog: n.Catalog, Schema: n.Schema, Table: n.Table}
	layouts, err := st.builder.catalog.GetTableLayouts(st.ctx, identifier, catalog.Constraint{Summary: n.Constraint}, n.Columns)
	if err != nil {
		return nil, plan.Distribution{}, err
	}
	if len(layouts) == 0 {
		st.builder.tracer.Warn(core.TraceComponentCatalog, "no layout for table", core.TraceContext(
			"table", identifier.String(),
		))
		clone.LayoutID = "default"
		clone.Partitioning = produced
		return &clone, produced, nil
	}

	layout := layouts[0]
	clone.LayoutID = layout.ID
	if layout.Partitioning != nil && len(layout.Partitioning.Columns) > 0 {
		produced = plan.HashDistribution(layout.Partitioning.Columns...)
	}
	clone.Partitioning = produced
	if layout.Statistics != nil {
		st.setEstimate(&clone, layout.Statistics.RowCount)
	}

	var result plan.Node = &clone
	if !layout.Unenforced.IsAll() {
		// The layout could not enforce the pushed predicate; keep it
		// as an explicit filter above the scan.
		filter := &plan.FilterNode{Source: result, Predicate: layout.Unenforced.Summary}
		st.setEstimate(filter, st.estimate(result))
		result = filter
	}
	return result, produced, nil
}

// ensure returns node unchanged when its distribution already satisfies
// want, otherwise wraps it in the remote exchange that establishes want.
func (st *build) ensure(node plan.Node, have, want plan.Distribution) (plan.Node, plan.Distribution) {
	if have.Satisfies(want) {
		return node, have
	}
	return st.exchangeFor(node, want), want
}

// exchangeFor builds the exchange that establishes want above source:
// GATHER for single-partition targets, REPARTITION for hash targets, and a
// local gather feeding a remote REPLICATE for broadcast targets so each
// worker broadcasts a single stream.
func (st *build) exchangeFor(source plan.Node, want plan.Distribution) plan.Node {
	switch {
	case want.Kind == plan.DistributionReplicated:
		local := &plan.ExchangeNode{
			Scope:        plan.ScopeLocal,
			Type:         plan.ExchangeGather,
			Partitioning: plan.SingleDistribution(),
			Sources:      []plan.Node{source},
		}
		return &plan.ExchangeNode{
			Scope:        plan.ScopeRemote,
			Type:         plan.ExchangeReplicate,
			Partitioning: plan.ReplicatedDistribution(),
			Sources:      []plan.Node{local},
		}
	case want.IsSinglePartition():
		return &plan.ExchangeNode{
			Scope:        plan.ScopeRemote,
			Type:         plan.ExchangeGather,
			Partitioning: want,
			Sources:      []plan.Node{source},
		}
	case want.Kind == plan.DistributionHash:
		return &plan.ExchangeNode{
			Scope:        plan.ScopeRemote,
			Type:         plan.ExchangeRepartition,
			Partitioning: want,
			Sources:      []plan.Node{source},
		}
	default:
		invariant(false, "no exchange can establish distribution %s", want.Kind)
		return nil
	}
}

func (st *build) estimate(node plan.Node) int64 {
	if rows, ok := st.estimates[node]; ok {
		return rows
	}
	return -1
}

func (st *build) setEstimate(node plan.Node, rows int64) {
	if rows >= 0 {
		st.estimates[node] = rows
	}
}
