package planner

import (
	"stagedb/core"
	"stagedb/plan"
)

// aggregateFunctions is the registry consulted for the partial/final
// split; unknown functions come back non-decomposable.
var aggregateFunctions = core.NewFunctionRegistry()

func decomposable(calls []plan.AggregateCall) bool {
	for _, call := range calls {
		if !aggregateFunctions.Decomposable(call.Function) {
			return false
		}
	}
	return true
}

// visitAggregate splits a logical FINAL aggregation into a partial/final
// pair connected by a repartition on the grouping keys. A global
// aggregation (no keys) uses the degenerate single-partition gather. Any
// non-decomposable function disables the split: everything gathers to one
// worker and aggregates in one step, a correctness fallback rather than an
// error. The grouping keys are identical between the two steps.
func (st *build) visitAggregate(n *plan.AggregateNode) (plan.Node, plan.Distribution, error) {
	invariant(n.Step == plan.StepFinal, "aggregation splitter expects a FINAL logical step, got %s", n.Step)

	source, dist, err := st.visit(n.Source)
	if err != nil {
		return nil, plan.Distribution{}, err
	}

	if !decomposable(n.Aggregates) {
		source, _ = st.ensure(source, dist, plan.SingleDistribution())
		final := &plan.AggregateNode{
			Source:     source,
			Keys:       n.Keys,
			Aggregates: n.Aggregates,
			Step:       plan.StepFinal,
		}
		return final, plan.SingleDistribution(), nil
	}

	required := plan.HashDistribution(n.Keys...)
	if dist.Satisfies(required) {
		// Every group is already whole on one worker; one step is
		// enough and no exchange is inserted.
		single := &plan.AggregateNode{
			Source:     source,
			Keys:       n.Keys,
			Aggregates: n.Aggregates,
			Step:       plan.StepSingle,
		}
		return single, dist, nil
	}

	partial := &plan.AggregateNode{
		Source:     source,
		Keys:       n.Keys,
		Aggregates: n.Aggregates,
		Step:       plan.StepPartial,
	}
	exchange := st.exchangeFor(partial, required)
	final := &plan.AggregateNode{
		Source:     exchange,
		Keys:       n.Keys,
		Aggregates: n.Aggregates,
		Step:       plan.StepFinal,
	}
	return final, required, nil
}
