package sorting

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestDefaultStrategies(t *testing.T) {
	t.Parallel()

	reg := Default()
	if diff := cmp.Diff([]string{Number, Text}, reg.List()); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	if err := reg.Register(Text, TextKey); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if reg.Has("date") {
		t.Fatalf("unexpected strategy registered")
	}
}

func TestNumberKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want any
	}{
		{"12px", 12.0},
		{" -3", -3.0},
		{"px", nil},
		{nil, nil},
		{7, 7.0},
		{2.5, 2.5},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, NumberKey(tc.in)); diff != "" {
			t.Fatalf("NumberKey(%#v) mismatch (-want +got):\n%s", tc.in, diff)
		}
	}
}

func TestSortByTextAndNumber(t *testing.T) {
	t.Parallel()

	items := []any{"10", "9", "x", "100"}

	byText := append([]any(nil), items...)
	SortBy(byText, keysFor(byText, TextKey), false)
	if diff := cmp.Diff([]any{"10", "100", "9", "x"}, byText); diff != "" {
		t.Fatalf("text sort mismatch (-want +got):\n%s", diff)
	}

	byNumber := append([]any(nil), items...)
	SortBy(byNumber, keysFor(byNumber, NumberKey), false)
	if diff := cmp.Diff([]any{"9", "10", "100", "x"}, byNumber); diff != "" {
		t.Fatalf("number sort mismatch (-want +got):\n%s", diff)
	}

	SortBy(byNumber, keysFor(byNumber, NumberKey), true)
	if diff := cmp.Diff([]any{"x", "100", "10", "9"}, byNumber); diff != "" {
		t.Fatalf("descending sort mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByIsStable(t *testing.T) {
	t.Parallel()

	items := []any{
		map[string]any{"k": "b", "n": 1},
		map[string]any{"k": "a", "n": 2},
		map[string]any{"k": "b", "n": 3},
		map[string]any{"k": "a", "n": 4},
	}
	keys := make([]any, len(items))
	for i, item := range items {
		keys[i] = item.(map[string]any)["k"]
	}
	SortBy(items, keys, false)

	var order []any
	for _, item := range items {
		order = append(order, item.(map[string]any)["n"])
	}
	if diff := cmp.Diff([]any{2, 4, 1, 3}, order); diff != "" {
		t.Fatalf("stable order mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		ints := rapid.SliceOf(rapid.IntRange(-50, 50)).Draw(rt, "ints")
		items := make([]any, len(ints))
		for i, n := range ints {
			items[i] = n
		}

		asc := append([]any(nil), items...)
		SortBy(asc, keysFor(asc, NumberKey), false)
		for i := 1; i < len(asc); i++ {
			if asc[i-1].(int) > asc[i].(int) {
				rt.Fatalf("ascending order broken at %d: %v", i, asc)
			}
		}

		desc := append([]any(nil), items...)
		SortBy(desc, keysFor(desc, NumberKey), true)
		for i := range desc {
			if desc[i] != asc[len(asc)-1-i] {
				rt.Fatalf("descending is not the reverse of ascending: %v vs %v", desc, asc)
			}
		}
	})
}

func TestCompareNilLast(t *testing.T) {
	t.Parallel()

	if Compare(nil, 1.0) <= 0 || Compare(1.0, nil) >= 0 || Compare(nil, nil) != 0 {
		t.Fatalf("nil keys must sort last")
	}
	if Compare(2.0, 10.0) >= 0 {
		t.Fatalf("numeric keys must compare numerically")
	}
}

func keysFor(items []any, fn KeyFunc) []any {
	keys := make([]any, len(items))
	for i, item := range items {
		keys[i] = fn(item)
	}
	return keys
}
