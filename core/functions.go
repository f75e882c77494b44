package core

import "strings"

// AggregateFunction describes one aggregate the planner understands. A
// decomposable function has a combinable intermediate state, so it can run
// as a partial step on every worker with a final merge step after a
// repartition; MergeFunction names the function applied to the partial
// results. Non-decomposable functions force single-worker execution.
type AggregateFunction struct {
	Name          string
	MinArgs       int
	MaxArgs       int // -1 for unlimited
	Decomposable  bool
	MergeFunction string
	Description   string
}

// FunctionRegistry manages the aggregate functions known to the planner.
// Unknown functions are treated as non-decomposable rather than rejected.
type FunctionRegistry struct {
	functions map[string]AggregateFunction
}

// NewFunctionRegistry creates a registry with all built-in aggregates
func NewFunctionRegistry() *FunctionRegistry {
	registry := &FunctionRegistry{
		functions: make(map[string]AggregateFunction),
	}
	registry.registerBuiltins()
	return registry
}

func (fr *FunctionRegistry) registerBuiltins() {
	fr.register(AggregateFunction{
		Name:          "COUNT",
		MinArgs:       0,
		MaxArgs:       1,
		Decomposable:  true,
		MergeFunction: "SUM",
		Description:   "Counts rows; partial counts merge by summation",
	})
	fr.register(AggregateFunction{
		Name:          "SUM",
		MinArgs:       1,
		MaxArgs:       1,
		Decomposable:  true,
		MergeFunction: "SUM",
		Description:   "Sums values; partial sums merge by summation",
	})
	fr.register(AggregateFunction{
		Name:          "MIN",
		MinArgs:       1,
		MaxArgs:       1,
		Decomposable:  true,
		MergeFunction: "MIN",
		Description:   "Minimum value; partial minima merge by MIN",
	})
	fr.register(AggregateFunction{
		Name:          "MAX",
		MinArgs:       1,
		MaxArgs:       1,
		Decomposable:  true,
		MergeFunction: "MAX",
		Description:   "Maximum value; partial maxima merge by MAX",
	})
	fr.register(AggregateFunction{
		Name:          "AVG",
		MinArgs:       1,
		MaxArgs:       1,
		Decomposable:  true,
		MergeFunction: "AVG",
		Description:   "Average; carried as a sum/count pair between steps",
	})

	// Order statistics need every value of a group in one place.
	fr.register(AggregateFunction{
		Name:        "MEDIAN",
		MinArgs:     1,
		MaxArgs:     1,
		Description: "Median value; requires the whole group on one worker",
	})
	fr.register(AggregateFunction{
		Name:        "MODE",
		MinArgs:     1,
		MaxArgs:     1,
		Description: "Most frequent value; requires the whole group on one worker",
	})
	fr.register(AggregateFunction{
		Name:        "ARRAY_AGG",
		MinArgs:     1,
		MaxArgs:     1,
		Description: "Collects values into an array in input order",
	})
	fr.register(AggregateFunction{
		Name:        "STRING_AGG",
		MinArgs:     1,
		MaxArgs:     2,
		Description: "Concatenates values with a separator in input order",
	})
}

func (fr *FunctionRegistry) register(fn AggregateFunction) {
	fr.functions[fn.Name] = fn
}

// Lookup returns the definition for a function name, case-insensitive.
func (fr *FunctionRegistry) Lookup(name string) (AggregateFunction, bool) {
	fn, ok := fr.functions[strings.ToUpper(name)]
	return fn, ok
}

// Decomposable reports whether a function supports the partial/final
// split. Unknown functions report false, which keeps planning correct at
// the cost of gathering their input to one worker.
func (fr *FunctionRegistry) Decomposable(name string) bool {
	fn, ok := fr.Lookup(name)
	return ok && fn.Decomposable
}
