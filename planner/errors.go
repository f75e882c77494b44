package planner

import "fmt"

// PlanError wraps any failure while planning one query. Structural
// invariant violations inside the builder panic and are converted into a
// PlanError at the planning entry point, so a broken query never takes the
// process down.
type PlanError struct {
	QueryID string
	Err     error
}

func (e *PlanError) Error() string {
	if e.QueryID == "" {
		return fmt.Sprintf("plan: %v", e.Err)
	}
	return fmt.Sprintf("plan %s: %v", e.QueryID, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// invariant panics unless cond holds; the panic is recovered by Plan.
func invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("plan invariant violated: "+format, args...))
	}
}
