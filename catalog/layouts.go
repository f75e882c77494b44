package catalog

import "fmt"

// Constraint is the predicate summary handed to the connector when asking
// for table layouts. The connector decides how much of it a layout can
// enforce; the remainder comes back as the layout's Unenforced constraint.
type Constraint struct {
	Summary string `json:"summary,omitempty"`
}

// All returns the constraint that admits every row.
func All() Constraint {
	return Constraint{}
}

// IsAll reports whether the constraint admits every row.
func (c Constraint) IsAll() bool {
	return c.Summary == ""
}

// LayoutPartitioning is a layout's intrinsic partitioning scheme: the
// partitioning columns in declaration order plus the identity of the
// partitioning function applied by the connector.
type LayoutPartitioning struct {
	Columns  []string `json:"columns"`
	Function string   `json:"function"`
}

// LayoutHandle is the opaque per-layout handle the planner passes back
// unmodified when requesting final column and row-id metadata.
type LayoutHandle struct {
	Table TableIdentifier `json:"table"`
	Token string          `json:"token"`
}

// TableLayout is one candidate physical layout for a table reference.
type TableLayout struct {
	ID           string              `json:"id"`
	Handle       LayoutHandle        `json:"handle"`
	Location     string              `json:"location"`
	Partitioning *LayoutPartitioning `json:"partitioning,omitempty"`
	Unenforced   Constraint          `json:"unenforced"`
	Statistics   *TableStatistics    `json:"statistics,omitempty"`
}

// Capabilities is the connector's fixed capability record. Every optional
// operation is an explicit marker here, checked by callers before the call,
// instead of an open-ended method surface defaulting to failure.
type Capabilities struct {
	SupportsCreateTable bool `json:"supports_create_table"`
	SupportsInsert      bool `json:"supports_insert"`
	SupportsDelete      bool `json:"supports_delete"`
	SupportsStatistics  bool `json:"supports_statistics"`
}

// layoutID names the i-th candidate layout of a table.
func layoutID(i int) string {
	return fmt.Sprintf("layout-%d", i)
}
