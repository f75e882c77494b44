package plan

// NodeID identifies a node within one query's plan tree. Zero means
// unassigned; the planner numbers every node before fragmentation.
type NodeID uint32

// Node is a node of the logical/physical operator tree. The variant set is
// closed: every consumer type-switches over it exhaustively and panics on an
// unknown variant, so adding an operator kind forces every consumer to
// handle it. Each node owns its children exclusively; sharing a subtree
// between two parents is a structural error.
type Node interface {
	ID() NodeID
	SetID(NodeID)
	Children() []Node

	isPlanNode()
}

// JoinKind is the logical join type.
type JoinKind string

const (
	JoinInner JoinKind = "INNER"
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinFull  JoinKind = "FULL"
)

// JoinDistribution is the physical distribution strategy of a join.
type JoinDistribution string

const (
	// JoinDistributionAuto lets the resolver decide from statistics.
	JoinDistributionAuto JoinDistribution = ""
	// JoinReplicated broadcasts the build side to every worker.
	JoinReplicated JoinDistribution = "REPLICATED"
	// JoinPartitioned hash-repartitions both sides on the join keys.
	JoinPartitioned JoinDistribution = "PARTITIONED"
)

// AggregateStep is the stage of a decomposed aggregation.
type AggregateStep string

const (
	// StepPartial produces combinable intermediate state on each worker.
	StepPartial AggregateStep = "PARTIAL"
	// StepFinal merges intermediate state into final values.
	StepFinal AggregateStep = "FINAL"
	// StepSingle computes the aggregation in one step, no split.
	StepSingle AggregateStep = "SINGLE"
)

// ExchangeScope says whether an exchange crosses worker processes.
type ExchangeScope string

const (
	ScopeLocal  ExchangeScope = "LOCAL"
	ScopeRemote ExchangeScope = "REMOTE"
)

// ExchangeType is the data movement pattern of an exchange.
type ExchangeType string

const (
	ExchangeGather      ExchangeType = "GATHER"
	ExchangeRepartition ExchangeType = "REPARTITION"
	ExchangeReplicate   ExchangeType = "REPLICATE"
)

// ScanNode reads a table through a connector layout. Layout and
// Partitioning are filled in by the planner from the catalog; Partitioning
// defaults to Arbitrary when the connector reports none.
type ScanNode struct {
	Id       NodeID
	Catalog  string
	Schema   string
	Table    string
	LayoutID string
	// Partitioning is the layout's intrinsic distribution.
	Partitioning Distribution
	// Columns are the projected columns, declaration order.
	Columns []string
	// Constraint is the predicate summary offered to the connector for
	// pushdown; whatever the layout cannot enforce comes back as a filter.
	Constraint string
}

// FilterNode applies a predicate; pass-through for distribution.
type FilterNode struct {
	Id        NodeID
	Source    Node
	Predicate string
}

// ProjectNode narrows or renames columns; pass-through for distribution.
type ProjectNode struct {
	Id      NodeID
	Source  Node
	Columns []string
}

// AggregateCall is one aggregate function application.
type AggregateCall struct {
	Function string // upper-case function name
	Argument string // single column or *
	Alias    string
}

// AggregateNode groups Source by Keys and evaluates Aggregates. The
// frontend always produces StepFinal; the planner splits it into
// partial/final pairs where the functions allow.
type AggregateNode struct {
	Id         NodeID
	Source     Node
	Keys       []string
	Aggregates []AggregateCall
	Step       AggregateStep
}

// JoinClause is one equi-join key pair, left column = right column.
type JoinClause struct {
	Left  string
	Right string
}

// JoinNode joins Left (probe) and Right (build) on Criteria. Distribution
// is a hint from upstream; JoinDistributionAuto defers to the resolver.
type JoinNode struct {
	Id           NodeID
	Kind         JoinKind
	Distribution JoinDistribution
	Left         Node
	Right        Node
	Criteria     []JoinClause
}

// SemiJoinNode filters Source rows by existence in Filtering.
type SemiJoinNode struct {
	Id           NodeID
	Distribution JoinDistribution
	Source       Node
	Filtering    Node
	SourceKey    string
	FilteringKey string
}

// CrossJoinNode is the keyless product of two sources; always executed
// replicated.
type CrossJoinNode struct {
	Id    NodeID
	Left  Node
	Right Node
}

// ExchangeNode moves data between workers (REMOTE) or between pipelines
// within a worker (LOCAL). Partitioning is the distribution the exchange
// establishes for its output.
type ExchangeNode struct {
	Id           NodeID
	Scope        ExchangeScope
	Type         ExchangeType
	Partitioning Distribution
	Sources      []Node
}

// RemoteSourceNode stands in for a child fragment's output after
// fragmentation replaced the subtree under a remote exchange.
type RemoteSourceNode struct {
	Id           NodeID
	Fragment     FragmentID
	Partitioning Distribution
}

// OutputNode is the query root; it requires a Single distribution so all
// results reach one coordinator-visible stream.
type OutputNode struct {
	Id      NodeID
	Source  Node
	Columns []string
}

func (n *ScanNode) ID() NodeID         { return n.Id }
func (n *FilterNode) ID() NodeID       { return n.Id }
func (n *ProjectNode) ID() NodeID      { return n.Id }
func (n *AggregateNode) ID() NodeID    { return n.Id }
func (n *JoinNode) ID() NodeID         { return n.Id }
func (n *SemiJoinNode) ID() NodeID     { return n.Id }
func (n *CrossJoinNode) ID() NodeID    { return n.Id }
func (n *ExchangeNode) ID() NodeID     { return n.Id }
func (n *RemoteSourceNode) ID() NodeID { return n.Id }
func (n *OutputNode) ID() NodeID       { return n.Id }

func (n *ScanNode) SetID(id NodeID)         { n.Id = id }
func (n *FilterNode) SetID(id NodeID)       { n.Id = id }
func (n *ProjectNode) SetID(id NodeID)      { n.Id = id }
func (n *AggregateNode) SetID(id NodeID)    { n.Id = id }
func (n *JoinNode) SetID(id NodeID)         { n.Id = id }
func (n *SemiJoinNode) SetID(id NodeID)     { n.Id = id }
func (n *CrossJoinNode) SetID(id NodeID)    { n.Id = id }
func (n *ExchangeNode) SetID(id NodeID)     { n.Id = id }
func (n *RemoteSourceNode) SetID(id NodeID) { n.Id = id }
func (n *OutputNode) SetID(id NodeID)       { n.Id = id }

func (n *ScanNode) Children() []Node         { return nil }
func (n *FilterNode) Children() []Node       { return []Node{n.Source} }
func (n *ProjectNode) Children() []Node      { return []Node{n.Source} }
func (n *AggregateNode) Children() []Node    { return []Node{n.Source} }
func (n *JoinNode) Children() []Node         { return []Node{n.Left, n.Right} }
func (n *SemiJoinNode) Children() []Node     { return []Node{n.Source, n.Filtering} }
func (n *CrossJoinNode) Children() []Node    { return []Node{n.Left, n.Right} }
func (n *ExchangeNode) Children() []Node     { return n.Sources }
func (n *RemoteSourceNode) Children() []Node { return nil }
func (n *OutputNode) Children() []Node       { return []Node{n.Source} }

func (n *ScanNode) isPlanNode()         {}
func (n *FilterNode) isPlanNode()       {}
func (n *ProjectNode) isPlanNode()      {}
func (n *AggregateNode) isPlanNode()    {}
func (n *JoinNode) isPlanNode()         {}
func (n *SemiJoinNode) isPlanNode()     {}
func (n *CrossJoinNode) isPlanNode()    {}
func (n *ExchangeNode) isPlanNode()     {}
func (n *RemoteSourceNode) isPlanNode() {}
func (n *OutputNode) isPlanNode()       {}
