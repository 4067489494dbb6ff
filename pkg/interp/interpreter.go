package interp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/pkg/expr"
	"github.com/goliatone/go-jdsl/pkg/scope"
	"github.com/goliatone/go-jdsl/pkg/tree"
	"github.com/goliatone/go-jdsl/pkg/value"
)

// Interpreter walks one template against one root data context. It owns its
// variable scope; call-template creates a fresh Interpreter for the callee.
type Interpreter struct {
	engine *Engine
	ctx    context.Context
	scope  *scope.Stack
	depth  int
}

// Engine returns the engine the interpreter belongs to.
func (in *Interpreter) Engine() *Engine { return in.engine }

// Context returns the render's context.
func (in *Interpreter) Context() context.Context { return in.ctx }

// Scope returns the interpreter's variable scope.
func (in *Interpreter) Scope() *scope.Stack { return in.scope }

// Depth reports the call-template nesting level, 0 for the top-level render.
func (in *Interpreter) Depth() int { return in.depth }

// Process renders node against data into out.
func (in *Interpreter) Process(data any, node, out *tree.Node) error {
	if err := in.ctx.Err(); err != nil {
		return err
	}
	if node == nil {
		return nil
	}
	if node.Kind != tree.KindElement {
		return in.passThrough(data, node, out)
	}

	derived, err := in.computeAttributes(data, node)
	if err != nil {
		return err
	}
	if in.IsInstruction(derived) {
		return in.dispatch(data, derived, out)
	}
	return in.passThrough(data, derived, out)
}

// ProcessChildren renders every child of node except fallback instructions
// inside a fresh scope frame.
func (in *Interpreter) ProcessChildren(data any, node, out *tree.Node) error {
	in.scope.Alloc()
	defer in.scope.Release()

	for _, child := range node.Children {
		if in.Is(child, InstrFallback) {
			continue
		}
		if err := in.Process(data, child, out); err != nil {
			return err
		}
	}
	return nil
}

// RenderString renders the children of node into a detached fragment and
// returns its markup.
func (in *Interpreter) RenderString(data any, node *tree.Node) (string, error) {
	frag := tree.NewFragment()
	if err := in.ProcessChildren(data, node, frag); err != nil {
		return "", err
	}
	return tree.InnerHTML(frag), nil
}

// Eval evaluates source with data as the receiver and the current bindings
// as variables. Failures are Expression errors.
func (in *Interpreter) Eval(data any, source string) (any, error) {
	out, err := in.engine.evaluator.Eval(source, expr.Env{
		This: data,
		Root: in.scope.Root(),
		Vars: in.scope.Bindings(),
	})
	if err != nil {
		return nil, newError(KindExpression, "", "", err)
	}
	return out, nil
}

// Interpolate resolves an attribute value: `{expr}` yields the expression
// result, anything else is returned unchanged.
func (in *Interpreter) Interpolate(data any, raw string) (any, error) {
	if len(raw) < 2 || raw[0] != '{' || raw[len(raw)-1] != '}' {
		return raw, nil
	}
	source := raw[1 : len(raw)-1]
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}
	return in.Eval(data, source)
}

// IsInstruction reports whether node belongs to the instruction namespace.
func (in *Interpreter) IsInstruction(node *tree.Node) bool {
	if node == nil || node.Kind != tree.KindElement {
		return false
	}
	space := node.Name.Space
	cfg := &in.engine.cfg
	return space == cfg.Prefix || (cfg.NamespaceURI != "" && space == cfg.NamespaceURI)
}

// Is reports whether node is the instruction with the given local name.
func (in *Interpreter) Is(node *tree.Node, local string) bool {
	return in.IsInstruction(node) && node.Name.Local == local
}

// QualifiedName formats node's name with the configured prefix for
// instructions and as written otherwise.
func (in *Interpreter) QualifiedName(node *tree.Node) string {
	if in.IsInstruction(node) {
		return in.engine.cfg.Prefix + ":" + node.Name.Local
	}
	return node.Name.String()
}

func (in *Interpreter) children(node *tree.Node, local string) []*tree.Node {
	return tree.FilterChildren(node, func(child *tree.Node) bool {
		return in.Is(child, local)
	})
}

func (in *Interpreter) dispatch(data any, node, out *tree.Node) error {
	if handler, ok := in.engine.instructions.Lookup(node.Name.Local); ok {
		return handler(in, data, node, out)
	}

	fallbacks := in.children(node, InstrFallback)
	switch len(fallbacks) {
	case 0:
		return newError(KindElementNotFound, in.QualifiedName(node), "", errors.New("no handler and no fallback"))
	case 1:
		log.Debug(log.CatRender, "fallback", "element", in.QualifiedName(node), "depth", in.depth)
		return in.ProcessChildren(data, fallbacks[0], out)
	default:
		return newError(KindElementMalformed, in.QualifiedName(node), "", fmt.Errorf("%d fallback children", len(fallbacks)))
	}
}

// computeAttributes runs every direct attribute instruction child and
// returns a derived node carrying the results. node itself is not modified.
func (in *Interpreter) computeAttributes(data any, node *tree.Node) (*tree.Node, error) {
	defs := in.children(node, InstrAttribute)
	if len(defs) == 0 {
		return node, nil
	}

	computed := make([]tree.Attr, 0, len(defs))
	for _, def := range defs {
		raw, ok := def.Attr("name")
		if !ok || strings.TrimSpace(raw) == "" {
			return nil, errMissingAttr(in.QualifiedName(def), "name")
		}
		name, err := in.Interpolate(data, raw)
		if err != nil {
			return nil, in.attrError(def, "name", err)
		}
		key := strings.TrimSpace(value.String(name))
		if key == "" {
			return nil, newError(KindAttributeMalformed, in.QualifiedName(def), "name", fmt.Errorf("%q resolved to an empty name", raw))
		}
		text, err := in.RenderString(data, def)
		if err != nil {
			return nil, err
		}
		computed = append(computed, tree.Attr{Key: key, Value: strings.TrimSpace(text)})
	}
	return node.WithAttrs(computed), nil
}

func (in *Interpreter) passThrough(data any, node, out *tree.Node) error {
	switch node.Kind {
	case tree.KindComment:
		out.AppendChild(tree.NewComment(node.Data))
	case tree.KindText, tree.KindCDATA:
		if in.keepText(node) {
			out.AppendChild(&tree.Node{Kind: node.Kind, Data: node.Data})
		}
	case tree.KindElement:
		copied := tree.NewElement(node.Name)
		if err := in.copyAttributes(data, node, copied, nil); err != nil {
			return err
		}
		out.AppendChild(copied)
		return in.ProcessChildren(data, node, copied)
	default:
		return in.ProcessChildren(data, node, out)
	}
	return nil
}

// copyAttributes interpolates every attribute of src onto dst, skipping the
// keys in skip. Attributes whose expression yields nil are omitted.
func (in *Interpreter) copyAttributes(data any, src, dst *tree.Node, skip map[string]struct{}) error {
	for _, attr := range src.Attrs {
		if _, skipped := skip[attr.Key]; skipped {
			continue
		}
		resolved, err := in.Interpolate(data, attr.Value)
		if err != nil {
			return in.attrError(src, attr.Key, err)
		}
		if resolved == nil {
			continue
		}
		dst.SetAttr(attr.Key, value.String(resolved))
	}
	return nil
}

func (in *Interpreter) keepText(node *tree.Node) bool {
	if !node.IsWhitespace() {
		return true
	}
	if node.Parent == nil || node.Parent.Kind != tree.KindElement {
		return false
	}
	for _, name := range in.engine.cfg.PreserveText {
		if node.Parent.Name == name {
			return true
		}
		if in.Is(node.Parent, name.Local) && name.Space == in.engine.cfg.Prefix {
			return true
		}
	}
	return false
}

// evalAttr evaluates the expression held by node's attr. ok is false when
// the attribute is absent or empty.
func (in *Interpreter) evalAttr(data any, node *tree.Node, attr string) (result any, ok bool, err error) {
	source, present := node.Attr(attr)
	if !present || strings.TrimSpace(source) == "" {
		return nil, false, nil
	}
	result, err = in.Eval(data, source)
	if err != nil {
		return nil, true, in.attrError(node, attr, err)
	}
	return result, true, nil
}

// requireAttr is evalAttr for attributes that must be present.
func (in *Interpreter) requireAttr(data any, node *tree.Node, attr string) (any, error) {
	result, ok, err := in.evalAttr(data, node, attr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errMissingAttr(in.QualifiedName(node), attr)
	}
	return result, nil
}

// attrError ties err to node@attr. Expression errors keep their kind.
func (in *Interpreter) attrError(node *tree.Node, attr string, err error) error {
	if typed, ok := AsError(err); ok && typed.Element == "" {
		typed.Element = in.QualifiedName(node)
		typed.Attribute = attr
		return typed
	}
	if _, ok := AsError(err); ok {
		return err
	}
	return newError(KindAttributeMalformed, in.QualifiedName(node), attr, err)
}
