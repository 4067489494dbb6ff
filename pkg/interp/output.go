package interp

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-jdsl/pkg/diag"
	"github.com/goliatone/go-jdsl/pkg/tree"
	"github.com/goliatone/go-jdsl/pkg/value"
)

var elementSkipAttrs = map[string]struct{}{"name": {}}

func element(in *Interpreter, data any, node, out *tree.Node) error {
	raw, ok := node.Attr("name")
	if !ok || strings.TrimSpace(raw) == "" {
		return errMissingAttr(in.QualifiedName(node), "name")
	}
	resolved, err := in.Interpolate(data, raw)
	if err != nil {
		return in.attrError(node, "name", err)
	}
	name := strings.TrimSpace(value.String(resolved))
	if name == "" {
		return newError(KindAttributeMalformed, in.QualifiedName(node), "name", fmt.Errorf("%q resolved to an empty name", raw))
	}

	el := tree.NewElement(tree.ParseName(name))
	if err := in.copyAttributes(data, node, el, elementSkipAttrs); err != nil {
		return err
	}
	out.AppendChild(el)
	return in.ProcessChildren(data, node, el)
}

func comment(in *Interpreter, data any, node, out *tree.Node) error {
	text, err := in.RenderString(data, node)
	if err != nil {
		return err
	}
	out.AppendChild(tree.NewComment(text))
	return nil
}

func textInstr(_ *Interpreter, _ any, node, out *tree.Node) error {
	out.AppendChild(tree.NewText(node.TextContent()))
	return nil
}

func valueOf(in *Interpreter, data any, node, out *tree.Node) error {
	selected, err := in.requireAttr(data, node, "select")
	if err != nil {
		return err
	}
	out.AppendChild(tree.NewText(value.String(selected)))
	return nil
}

func templateInstr(in *Interpreter, data any, node, out *tree.Node) error {
	return in.ProcessChildren(data, node, out)
}

// script evaluates its text for side effects through host functions. The
// result is discarded.
func script(in *Interpreter, data any, node, _ *tree.Node) error {
	source := node.TextContent()
	if strings.TrimSpace(source) == "" {
		return nil
	}
	if _, err := in.Eval(data, source); err != nil {
		return in.attrError(node, "", err)
	}
	return nil
}

func message(in *Interpreter, data any, node, _ *tree.Node) error {
	var text string
	if len(node.Children) > 0 {
		rendered, err := in.RenderString(data, node)
		if err != nil {
			return err
		}
		text = rendered
	} else if selected, ok, err := in.evalAttr(data, node, "select"); err != nil {
		return err
	} else if ok {
		text = value.String(selected)
	}

	level, err := diag.ParseLevel(node.AttrOr("level", string(diag.LevelLog)))
	if err != nil {
		return newError(KindAttributeMalformed, in.QualifiedName(node), "level", err)
	}
	diag.Dispatch(in.engine.sink, level, text)
	return nil
}
