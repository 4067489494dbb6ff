package sorting

import (
	"cmp"
	"slices"

	"github.com/goliatone/go-jdsl/pkg/value"
)

// Compare orders two keys. nil sorts last, two numeric keys compare
// numerically and anything else compares by text.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if value.IsNumeric(a) && value.IsNumeric(b) {
		af, _ := value.Number(a)
		bf, _ := value.Number(b)
		return cmp.Compare(af, bf)
	}
	return cmp.Compare(value.String(a), value.String(b))
}

// SortBy reorders items in place by their precomputed keys. The sort is
// stable; descending reverses the ascending result.
func SortBy(items, keys []any, descending bool) {
	if len(items) != len(keys) {
		panic("sorting: items and keys differ in length")
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return Compare(keys[a], keys[b])
	})
	if descending {
		slices.Reverse(idx)
	}
	sorted := make([]any, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}
