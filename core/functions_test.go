package core

import "testing"

func TestFunctionRegistryDecomposable(t *testing.T) {
	registry := NewFunctionRegistry()

	tests := []struct {
		name string
		want bool
	}{
		{"COUNT", true},
		{"count", true},
		{"SUM", true},
		{"MIN", true},
		{"MAX", true},
		{"AVG", true},
		{"MEDIAN", false},
		{"MODE", false},
		{"ARRAY_AGG", false},
		{"STRING_AGG", false},
		{"NO_SUCH_FUNCTION", false},
	}
	for _, tt := range tests {
		if got := registry.Decomposable(tt.name); got != tt.want {
			t.Errorf("Decomposable(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFunctionRegistryLookup(t *testing.T) {
	registry := NewFunctionRegistry()

	fn, ok := registry.Lookup("count")
	if !ok {
		t.Fatal("COUNT not registered")
	}
	if fn.MergeFunction != "SUM" {
		t.Errorf("COUNT merges with %q, want SUM", fn.MergeFunction)
	}

	if _, ok := registry.Lookup("rank"); ok {
		t.Error("rank should not be registered as an aggregate")
	}
}
