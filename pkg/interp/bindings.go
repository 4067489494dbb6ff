package interp

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/pkg/tree"
)

func variable(in *Interpreter, data any, node, _ *tree.Node) error {
	name, val, err := in.bindingValue(data, node)
	if err != nil {
		return err
	}
	in.scope.Set(name, val)
	return nil
}

// param binds only when the name is still unbound, so values passed with
// with-param win over the declared default.
func param(in *Interpreter, data any, node, _ *tree.Node) error {
	name := strings.TrimSpace(node.AttrOr("name", ""))
	if name == "" {
		return errMissingAttr(in.QualifiedName(node), "name")
	}
	if in.scope.Has(name) {
		return nil
	}
	return variable(in, data, node, nil)
}

// bindingValue computes the value of a variable-like instruction: rendered
// children when there are any, else the select expression, else empty text,
// passed through the data-type converter.
func (in *Interpreter) bindingValue(data any, node *tree.Node) (string, any, error) {
	name := strings.TrimSpace(node.AttrOr("name", ""))
	if name == "" {
		return "", nil, errMissingAttr(in.QualifiedName(node), "name")
	}

	var raw any = ""
	if len(node.Children) > 0 {
		text, err := in.RenderString(data, node)
		if err != nil {
			return "", nil, err
		}
		raw = text
	} else if selected, ok, err := in.evalAttr(data, node, "select"); err != nil {
		return "", nil, err
	} else if ok {
		raw = selected
	}

	dataType := node.AttrOr("data-type", in.engine.DefaultDataType())
	convert, ok := in.engine.dataTypes.Get(dataType)
	if !ok {
		return "", nil, newError(KindAttributeMalformed, in.QualifiedName(node), "data-type", fmt.Errorf("unknown data type %q", dataType))
	}
	val, err := convert(raw)
	if err != nil {
		return "", nil, newError(KindAttributeMalformed, in.QualifiedName(node), "data-type", err)
	}
	return name, val, nil
}

func callTemplate(in *Interpreter, data any, node, out *tree.Node) error {
	rel := strings.TrimSpace(node.AttrOr("rel", ""))
	if rel == "" {
		return errMissingAttr(in.QualifiedName(node), "rel")
	}
	target, ok := in.engine.templates.Get(rel)
	if !ok {
		return newError(KindAttributeMalformed, in.QualifiedName(node), "rel", fmt.Errorf("template %q is not registered", rel))
	}

	next := data
	if selected, present, err := in.evalAttr(data, node, "select"); err != nil {
		return err
	} else if present {
		next = selected
	}

	if in.depth >= in.engine.cfg.MaxCallDepth {
		return newError(KindRecursionLimit, in.QualifiedName(node), "rel", fmt.Errorf("call depth %d exceeds %d calling %q", in.depth+1, in.engine.cfg.MaxCallDepth, rel))
	}

	callee := in.engine.newInterpreter(in.ctx, next, in.depth+1)
	for _, wp := range in.children(node, InstrWithParam) {
		name, val, err := in.bindingValue(data, wp)
		if err != nil {
			return err
		}
		callee.scope.Set(name, val)
	}

	log.Debug(log.CatRender, "call-template", "rel", rel, "depth", callee.depth)
	return callee.Process(next, target, out)
}
