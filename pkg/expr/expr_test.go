package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvalReadsContextKeysAndThis(t *testing.T) {
	t.Parallel()

	rt := New()
	data := map[string]any{"name": "Ada", "item": map[string]any{"v": 3}}

	got, err := rt.Eval("name", Env{This: data})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != "Ada" {
		t.Fatalf("name = %v", got)
	}

	got, err = rt.Eval("this.item.v + 1", Env{This: data})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != 4 {
		t.Fatalf("this.item.v + 1 = %#v", got)
	}
}

func TestEvalVariablesShadowContext(t *testing.T) {
	t.Parallel()

	rt := New()
	env := Env{
		This: map[string]any{"count": 1, "$count": "hidden"},
		Vars: map[string]any{"count": 10},
	}
	got, err := rt.Eval("$count * 2 + count", env)
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != 21 {
		t.Fatalf("got %#v, want 21", got)
	}
}

func TestEvalScalarContextAndRoot(t *testing.T) {
	t.Parallel()

	rt := New()
	got, err := rt.Eval(`this == 'b' && root.title == 'T'`, Env{
		This: "b",
		Root: map[string]any{"title": "T"},
	})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != true {
		t.Fatalf("got %#v", got)
	}
}

func TestEvalUndefinedIdentifierIsNil(t *testing.T) {
	t.Parallel()

	got, err := New().Eval("missing", Env{This: map[string]any{}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("got %#v, want nil", got)
	}
}

func TestEvalHostFunctions(t *testing.T) {
	t.Parallel()

	var calls []string
	rt := New(WithFunctions(map[string]any{
		"record": func(s string) bool {
			calls = append(calls, s)
			return true
		},
	}))

	if _, err := rt.Eval(`record("a" + "b")`, Env{}); err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if diff := cmp.Diff([]string{"ab"}, calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestEvalBuiltins(t *testing.T) {
	t.Parallel()

	got, err := New().Eval("len(items) > 1 ? upper(label) : 'none'", Env{This: map[string]any{
		"items": []any{1, 2},
		"label": "ok",
	}})
	if err != nil {
		t.Fatalf("Eval returned error: %v", err)
	}
	if got != "OK" {
		t.Fatalf("got %#v", got)
	}
}

func TestCompileCachesPrograms(t *testing.T) {
	t.Parallel()

	rt := New()
	first, err := rt.Compile(" 1 + 2 ")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	second, err := rt.Compile("1 + 2")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if first != second {
		t.Fatalf("expected the cached program to be reused")
	}
	if rt.Cached() != 1 {
		t.Fatalf("cached = %d, want 1", rt.Cached())
	}
	rt.Flush()
	if rt.Cached() != 0 {
		t.Fatalf("cached = %d after flush", rt.Cached())
	}
}

func TestEvalErrors(t *testing.T) {
	t.Parallel()

	rt := New()
	if _, err := rt.Eval("   ", Env{}); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if _, err := rt.Eval("1 +", Env{}); err == nil {
		t.Fatalf("expected compile error")
	}
}
