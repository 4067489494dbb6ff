package interp

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-jdsl/pkg/sorting"
	"github.com/goliatone/go-jdsl/pkg/tree"
	"github.com/goliatone/go-jdsl/pkg/value"
)

const (
	sortOrderDescending = "descending"
	sortSelectDefault   = "this"
)

func ifInstr(in *Interpreter, data any, node, out *tree.Node) error {
	test, err := in.requireAttr(data, node, "test")
	if err != nil {
		return err
	}
	if !value.Truthy(test) {
		return nil
	}
	return in.ProcessChildren(data, node, out)
}

func choose(in *Interpreter, data any, node, out *tree.Node) error {
	for _, child := range node.Children {
		if child.Kind != tree.KindElement {
			continue
		}
		if !in.Is(child, InstrCase) {
			return newError(KindElementMisplaced, in.QualifiedName(child), "", fmt.Errorf("only %s:%s may appear inside %s", in.engine.cfg.Prefix, InstrCase, in.QualifiedName(node)))
		}
		test, present, err := in.evalAttr(data, child, "test")
		if err != nil {
			return err
		}
		if !present || value.Truthy(test) {
			return in.ProcessChildren(data, child, out)
		}
	}
	return nil
}

func switchInstr(in *Interpreter, data any, node, out *tree.Node) error {
	selected, err := in.requireAttr(data, node, "select")
	if err != nil {
		return err
	}
	for _, child := range node.Children {
		if child.Kind != tree.KindElement {
			continue
		}
		if !in.Is(child, InstrCase) {
			return newError(KindElementMisplaced, in.QualifiedName(child), "", fmt.Errorf("only %s:%s may appear inside %s", in.engine.cfg.Prefix, InstrCase, in.QualifiedName(node)))
		}
		candidate, present, err := in.evalAttr(data, child, "select")
		if err != nil {
			return err
		}
		if !present || value.LooseEqual(candidate, selected) {
			return in.ProcessChildren(data, child, out)
		}
	}
	return nil
}

func loop(in *Interpreter, data any, node, out *tree.Node) error {
	times := 0
	if raw, ok := node.Attr("times"); ok {
		resolved, err := in.Interpolate(data, raw)
		if err != nil {
			return in.attrError(node, "times", err)
		}
		times, _ = value.LeadingInt(value.String(resolved))
	}
	key := strings.TrimSpace(node.AttrOr("key", ""))
	legacy := in.engine.cfg.LoopCounter == LoopCounterLegacy

	for i := 0; i < times; i++ {
		if key != "" {
			if legacy {
				i++
			}
			in.scope.Set(key, i)
		}
		err := in.ProcessChildren(data, node, out)
		if key != "" {
			in.scope.Unset(key)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func forEach(in *Interpreter, data any, node, out *tree.Node) error {
	selected, err := in.requireAttr(data, node, "select")
	if err != nil {
		return err
	}
	items, ok := value.Sequence(selected)
	if !ok {
		return newError(KindAttributeMalformed, in.QualifiedName(node), "select", fmt.Errorf("expected a sequence, got %T", selected))
	}
	working := append([]any(nil), items...)

	for _, sortNode := range in.children(node, InstrSort) {
		if err := in.applySort(sortNode, working); err != nil {
			return err
		}
	}

	key := strings.TrimSpace(node.AttrOr("key", ""))
	val := strings.TrimSpace(node.AttrOr("value", ""))
	for i, item := range working {
		if key != "" {
			in.scope.Set(key, i)
		}
		if val != "" {
			in.scope.Set(val, item)
		}
		err := in.ProcessChildren(item, node, out)
		if key != "" {
			in.scope.Unset(key)
		}
		if val != "" {
			in.scope.Unset(val)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// applySort reorders items by one sort node. Each sort node
// re-sorts the whole sequence, so the last one decides the final order.
func (in *Interpreter) applySort(sortNode *tree.Node, items []any) error {
	sortType := sortNode.AttrOr("sort-type", sorting.Text)
	keyFn, ok := in.engine.sorts.Get(sortType)
	if !ok {
		return newError(KindAttributeMalformed, in.QualifiedName(sortNode), "sort-type", fmt.Errorf("%w %q", sorting.ErrUnknown, sortType))
	}
	source := sortNode.AttrOr("select", sortSelectDefault)

	keys := make([]any, len(items))
	for i, item := range items {
		raw, err := in.Eval(item, source)
		if err != nil {
			return in.attrError(sortNode, "select", err)
		}
		keys[i] = keyFn(raw)
	}
	sorting.SortBy(items, keys, sortNode.AttrOr("order", "ascending") == sortOrderDescending)
	return nil
}
