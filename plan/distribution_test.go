package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistributionSatisfies(t *testing.T) {
	tests := []struct {
		name     string
		have     Distribution
		required Distribution
		want     bool
	}{
		{"arbitrary accepts single", SingleDistribution(), ArbitraryDistribution(), true},
		{"arbitrary accepts hash", HashDistribution("k"), ArbitraryDistribution(), true},
		{"arbitrary accepts replicated", ReplicatedDistribution(), ArbitraryDistribution(), true},
		{"arbitrary accepts arbitrary", ArbitraryDistribution(), ArbitraryDistribution(), true},

		{"single satisfies single", SingleDistribution(), SingleDistribution(), true},
		{"empty hash satisfies single", HashDistribution(), SingleDistribution(), true},
		{"single satisfies empty hash", SingleDistribution(), HashDistribution(), true},
		{"arbitrary does not satisfy single", ArbitraryDistribution(), SingleDistribution(), false},
		{"hash does not satisfy single", HashDistribution("k"), SingleDistribution(), false},
		{"replicated does not satisfy single", ReplicatedDistribution(), SingleDistribution(), false},

		{"same hash columns", HashDistribution("a", "b"), HashDistribution("a", "b"), true},
		{"hash column order irrelevant", HashDistribution("b", "a"), HashDistribution("a", "b"), true},
		{"finer hash satisfies coarser", HashDistribution("a", "b"), HashDistribution("a"), true},
		{"coarser hash misses column", HashDistribution("a"), HashDistribution("a", "b"), false},
		{"disjoint hash columns", HashDistribution("a"), HashDistribution("c"), false},

		{"replicated satisfies hash", ReplicatedDistribution(), HashDistribution("a"), true},
		{"replicated satisfies replicated", ReplicatedDistribution(), ReplicatedDistribution(), true},
		{"single does not satisfy hash", SingleDistribution(), HashDistribution("a"), false},
		{"arbitrary does not satisfy hash", ArbitraryDistribution(), HashDistribution("a"), false},
		{"hash does not satisfy replicated", HashDistribution("a"), ReplicatedDistribution(), false},
		{"arbitrary does not satisfy replicated", ArbitraryDistribution(), ReplicatedDistribution(), false},

		{"ordered requirement unmet", SingleDistribution(), Distribution{Kind: DistributionSingle, Ordered: true}, false},
		{"ordered stream meets ordered requirement", Distribution{Kind: DistributionSingle, Ordered: true}, Distribution{Kind: DistributionSingle, Ordered: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.have.Satisfies(tt.required))
		})
	}
}

// A chain a->b->c of satisfaction never breaks transitively; spot-check the
// hash subset rule with a three-level chain.
func TestDistributionSatisfactionTransitive(t *testing.T) {
	fine := HashDistribution("a", "b", "c")
	mid := HashDistribution("a", "b")
	coarse := HashDistribution("a")

	assert.True(t, fine.Satisfies(mid))
	assert.True(t, mid.Satisfies(coarse))
	assert.True(t, fine.Satisfies(coarse))
}

func TestDistributionEqualIsOrderSensitive(t *testing.T) {
	assert.True(t, HashDistribution("a", "b").Equal(HashDistribution("a", "b")))
	assert.False(t, HashDistribution("a", "b").Equal(HashDistribution("b", "a")))
	assert.False(t, SingleDistribution().Equal(HashDistribution()))
}

func TestIsSinglePartition(t *testing.T) {
	assert.True(t, SingleDistribution().IsSinglePartition())
	assert.True(t, HashDistribution().IsSinglePartition())
	assert.False(t, HashDistribution("k").IsSinglePartition())
	assert.False(t, ArbitraryDistribution().IsSinglePartition())
	assert.False(t, ReplicatedDistribution().IsSinglePartition())
}

func TestDistributionLabel(t *testing.T) {
	assert.Equal(t, "SINGLE", SingleDistribution().Label())
	assert.Equal(t, "ARBITRARY", ArbitraryDistribution().Label())
	assert.Equal(t, `HASH ["k1", "k2"]`, HashDistribution("k1", "k2").Label())
	assert.Equal(t, "HASH []", HashDistribution().Label())
	assert.Equal(t, "REPLICATED", ReplicatedDistribution().Label())
}
