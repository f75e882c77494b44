package plan

import (
	"fmt"
	"strings"
)

// DistributionKind identifies how a stream's rows are spread across workers.
type DistributionKind string

const (
	// DistributionSingle means the stream lives on exactly one worker.
	DistributionSingle DistributionKind = "SINGLE"
	// DistributionArbitrary means any number of workers with no defined
	// partitioning function.
	DistributionArbitrary DistributionKind = "ARBITRARY"
	// DistributionHash means rows are hash-partitioned on a column set.
	DistributionHash DistributionKind = "HASH"
	// DistributionReplicated means every worker holds a full copy.
	DistributionReplicated DistributionKind = "REPLICATED"
)

// Distribution describes how a plan node's output is distributed across
// workers. It is a pure value: computed once per node and never mutated.
type Distribution struct {
	Kind    DistributionKind `json:"kind"`
	Columns []string         `json:"columns,omitempty"` // hash columns, declaration order
	Ordered bool             `json:"ordered,omitempty"` // globally ordered stream
}

// SingleDistribution returns the single-worker distribution.
func SingleDistribution() Distribution {
	return Distribution{Kind: DistributionSingle}
}

// ArbitraryDistribution returns the unpartitioned any-worker distribution.
func ArbitraryDistribution() Distribution {
	return Distribution{Kind: DistributionArbitrary}
}

// HashDistribution returns a hash distribution on the given columns.
// With no columns it is the degenerate single-partition form used by
// global aggregations, which behaves like SingleDistribution.
func HashDistribution(columns ...string) Distribution {
	return Distribution{Kind: DistributionHash, Columns: columns}
}

// ReplicatedDistribution returns the broadcast distribution.
func ReplicatedDistribution() Distribution {
	return Distribution{Kind: DistributionReplicated}
}

// IsSinglePartition reports whether the distribution places all rows in one
// partition: SINGLE, or the degenerate HASH with no columns.
func (d Distribution) IsSinglePartition() bool {
	return d.Kind == DistributionSingle || (d.Kind == DistributionHash && len(d.Columns) == 0)
}

// Equal reports exact structural equality. Hash column order is significant.
func (d Distribution) Equal(other Distribution) bool {
	if d.Kind != other.Kind || d.Ordered != other.Ordered {
		return false
	}
	if len(d.Columns) != len(other.Columns) {
		return false
	}
	for i := range d.Columns {
		if d.Columns[i] != other.Columns[i] {
			return false
		}
	}
	return true
}

// Satisfies reports whether a stream with this distribution meets the given
// requirement without any data movement. Hash column order is not
// significant here: a finer hash partitioning satisfies a coarser one as a
// subset check.
func (d Distribution) Satisfies(required Distribution) bool {
	if required.Ordered && !d.Ordered {
		return false
	}
	if required.Kind == DistributionArbitrary {
		// Anything already is some arbitrary placement.
		return true
	}
	if required.IsSinglePartition() {
		return d.IsSinglePartition()
	}
	switch d.Kind {
	case DistributionSingle:
		return false
	case DistributionReplicated:
		// Every worker holds all rows, so any partitioned requirement
		// is met, except exclusive single-worker placement.
		return required.Kind != DistributionSingle
	case DistributionHash:
		if required.Kind != DistributionHash {
			return d.Kind == required.Kind
		}
		return columnSubset(required.Columns, d.Columns)
	case DistributionArbitrary:
		return false
	default:
		return false
	}
}

// columnSubset reports whether every column in want appears in have,
// ignoring order.
func columnSubset(want, have []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if w == h {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Label renders the distribution for fragment headers and diagnostics,
// e.g. `SINGLE` or `HASH ["k1", "k2"]`.
func (d Distribution) Label() string {
	if d.Kind == DistributionHash {
		return fmt.Sprintf("HASH %s", quotedList(d.Columns))
	}
	return string(d.Kind)
}

// quotedList renders columns as `["a", "b"]` in declaration order.
func quotedList(columns []string) string {
	if len(columns) == 0 {
		return "[]"
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
