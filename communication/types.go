package communication

import "stagedb/plan"

// WorkerInfo identifies one worker process available to run fragments.
type WorkerInfo struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// FragmentAssignment binds one fragment to one worker. The payload is the
// encoded planned query produced by PlanCodec; workers decode it and pick
// their fragment out by id.
type FragmentAssignment struct {
	Fragment plan.FragmentID `json:"fragment"`
	WorkerID string          `json:"worker_id"`
	Payload  []byte          `json:"payload"`
}

// AssignRoundRobin spreads a planned query's fragments over the given
// workers in scheduling order. The root fragment lands on the last worker
// chosen, mirroring the child-to-root fragment order.
func AssignRoundRobin(pq *plan.PlannedQuery, workers []WorkerInfo, payload []byte) []FragmentAssignment {
	if len(workers) == 0 {
		return nil
	}
	assignments := make([]FragmentAssignment, 0, len(pq.Fragments))
	for i, fragment := range pq.Fragments {
		assignments = append(assignments, FragmentAssignment{
			Fragment: fragment.ID,
			WorkerID: workers[i%len(workers)].ID,
			Payload:  payload,
		})
	}
	return assignments
}
