package planner

import (
	"stagedb/core"
	"stagedb/plan"
)

// visitJoin resolves a join's physical distribution. REPLICATED broadcasts
// the eligible side and leaves the other side's distribution untouched;
// PARTITIONED repartitions both sides on the equi-key columns with matching
// positional ordering so matching rows co-locate.
func (st *build) visitJoin(n *plan.JoinNode) (plan.Node, plan.Distribution, error) {
	invariant(len(n.Criteria) > 0, "join without criteria must be a cross join")

	left, leftDist, err := st.visit(n.Left)
	if err != nil {
		return nil, plan.Distribution{}, err
	}
	right, rightDist, err := st.visit(n.Right)
	if err != nil {
		return nil, plan.Distribution{}, err
	}

	leftKeys := make([]string, len(n.Criteria))
	rightKeys := make([]string, len(n.Criteria))
	for i, clause := range n.Criteria {
		leftKeys[i] = clause.Left
		rightKeys[i] = clause.Right
	}

	rightEligible, leftEligible := broadcastableSides(n.Kind)

	distribution := n.Distribution
	broadcastRight := true
	if distribution == plan.JoinDistributionAuto {
		distribution, broadcastRight = st.chooseJoinDistribution(left, right, rightEligible, leftEligible)
	} else if distribution == plan.JoinReplicated {
		// An explicit broadcast hint still may not replicate a
		// preserved side.
		switch {
		case rightEligible:
			broadcastRight = true
		case leftEligible:
			broadcastRight = false
		default:
			distribution = plan.JoinPartitioned
		}
	}
	st.builder.tracer.Debug(core.TraceComponentPlanner, "join distribution resolved", core.TraceContext(
		"kind", string(n.Kind),
		"distribution", string(distribution),
	))

	clone := *n
	clone.Distribution = distribution

	switch distribution {
	case plan.JoinReplicated:
		var output plan.Distribution
		if broadcastRight {
			right, _ = st.ensure(right, rightDist, plan.ReplicatedDistribution())
			output = leftDist
		} else {
			left, _ = st.ensure(left, leftDist, plan.ReplicatedDistribution())
			output = rightDist
		}
		clone.Left, clone.Right = left, right
		return &clone, output, nil
	case plan.JoinPartitioned:
		left, _ = st.ensure(left, leftDist, plan.HashDistribution(leftKeys...))
		right, _ = st.ensure(right, rightDist, plan.HashDistribution(rightKeys...))
		clone.Left, clone.Right = left, right
		return &clone, plan.HashDistribution(leftKeys...), nil
	default:
		invariant(false, "unhandled join distribution %q", distribution)
		return nil, plan.Distribution{}, nil
	}
}

// broadcastableSides reports which sides of a join may be replicated.
// Replicating a preserved side would emit its unmatched rows once per
// worker, so outer joins may only broadcast the side their unmatched rows
// do not come from: LEFT the right side, RIGHT the left side, FULL
// neither.
func broadcastableSides(kind plan.JoinKind) (right, left bool) {
	switch kind {
	case plan.JoinInner:
		return true, true
	case plan.JoinLeft:
		return true, false
	case plan.JoinRight:
		return false, true
	default:
		return false, false
	}
}

// chooseJoinDistribution picks REPLICATED when an eligible side's estimated
// row count is under the broadcast limit, preferring to broadcast the right
// (build) side. Unknown statistics disable broadcast.
func (st *build) chooseJoinDistribution(left, right plan.Node, rightEligible, leftEligible bool) (plan.JoinDistribution, bool) {
	limit := st.builder.options.BroadcastRowLimit
	if limit <= 0 {
		return plan.JoinPartitioned, true
	}
	leftRows, rightRows := st.estimate(left), st.estimate(right)
	switch {
	case rightEligible && rightRows >= 0 && rightRows <= limit:
		return plan.JoinReplicated, true
	case leftEligible && leftRows >= 0 && leftRows <= limit:
		return plan.JoinReplicated, false
	default:
		return plan.JoinPartitioned, true
	}
}

// visitSemiJoin follows the join rules with the filtering side as the build
// side. The filtering side is never the probe, so only it is ever
// broadcast.
func (st *build) visitSemiJoin(n *plan.SemiJoinNode) (plan.Node, plan.Distribution, error) {
	source, sourceDist, err := st.visit(n.Source)
	if err != nil {
		return nil, plan.Distribution{}, err
	}
	filtering, filteringDist, err := st.visit(n.Filtering)
	if err != nil {
		return nil, plan.Distribution{}, err
	}

	distribution := n.Distribution
	if distribution == plan.JoinDistributionAuto {
		limit := st.builder.options.BroadcastRowLimit
		rows := st.estimate(filtering)
		if limit > 0 && rows >= 0 && rows <= limit {
			distribution = plan.JoinReplicated
		} else {
			distribution = plan.JoinPartitioned
		}
	}

	clone := *n
	clone.Distribution = distribution

	switch distribution {
	case plan.JoinReplicated:
		filtering, _ = st.ensure(filtering, filteringDist, plan.ReplicatedDistribution())
		clone.Source, clone.Filtering = source, filtering
		return &clone, sourceDist, nil
	case plan.JoinPartitioned:
		source, _ = st.ensure(source, sourceDist, plan.HashDistribution(n.SourceKey))
		filtering, _ = st.ensure(filtering, filteringDist, plan.HashDistribution(n.FilteringKey))
		clone.Source, clone.Filtering = source, filtering
		return &clone, plan.HashDistribution(n.SourceKey), nil
	default:
		invariant(false, "unhandled semijoin distribution %q", distribution)
		return nil, plan.Distribution{}, nil
	}
}

// visitCrossJoin always replicates one side: there are no keys to
// repartition on. The smaller side by estimate is broadcast; with unknown
// sizes the literal right side is.
func (st *build) visitCrossJoin(n *plan.CrossJoinNode) (plan.Node, plan.Distribution, error) {
	left, leftDist, err := st.visit(n.Left)
	if err != nil {
		return nil, plan.Distribution{}, err
	}
	right, rightDist, err := st.visit(n.Right)
	if err != nil {
		return nil, plan.Distribution{}, err
	}

	leftRows, rightRows := st.estimate(left), st.estimate(right)
	broadcastRight := true
	if leftRows >= 0 && rightRows >= 0 && leftRows < rightRows {
		broadcastRight = false
	}

	clone := *n
	var output plan.Distribution
	if broadcastRight {
		right, _ = st.ensure(right, rightDist, plan.ReplicatedDistribution())
		output = leftDist
	} else {
		left, _ = st.ensure(left, leftDist, plan.ReplicatedDistribution())
		output = rightDist
	}
	clone.Left, clone.Right = left, right
	return &clone, output, nil
}
