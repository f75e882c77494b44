package planner

// Session carries the per-query planning state: identity plus name
// resolution defaults. The planner borrows it read-only for the duration of
// one planning pass and never stores it beyond that.
type Session struct {
	QueryID string
	User    string
	Catalog string
	Schema  string
}

// PlannerOptions configures one Builder.
type PlannerOptions struct {
	// BroadcastRowLimit is the largest estimated build-side row count
	// still eligible for a replicated join. Zero disables broadcast;
	// unknown statistics always disable it.
	BroadcastRowLimit int64
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() PlannerOptions {
	return PlannerOptions{
		BroadcastRowLimit: 100_000,
	}
}
