package interp

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"pgregory.net/rapid"

	"github.com/goliatone/go-jdsl/pkg/diag"
	"github.com/goliatone/go-jdsl/pkg/tree"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	engine, err := New(append([]Option{WithSink(diag.Discard)}, opts...)...)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return engine
}

func parse(t *testing.T, src string) *tree.Node {
	t.Helper()

	doc, err := tree.ParseXML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseXML(%q): %v", src, err)
	}
	return doc
}

func renderString(t *testing.T, engine *Engine, data any, src string) (string, error) {
	t.Helper()

	out := tree.NewFragment()
	if err := engine.Render(context.Background(), data, parse(t, src), out); err != nil {
		return "", err
	}
	return tree.InnerHTML(out), nil
}

func mustRender(t *testing.T, engine *Engine, data any, src string) string {
	t.Helper()

	got, err := renderString(t, engine, data, src)
	if err != nil {
		t.Fatalf("Render(%q) returned error: %v", src, err)
	}
	return got
}

func TestPlainMarkupIsCopiedStructurally(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	opts := cmp.Options{cmpopts.IgnoreFields(tree.Node{}, "Parent"), cmpopts.EquateEmpty()}

	rapid.Check(t, func(rt *rapid.T) {
		template := genMarkup(rt, 3, "root.")
		out := tree.NewFragment()
		if err := engine.Render(context.Background(), map[string]any{}, template, out); err != nil {
			rt.Fatalf("Render returned error: %v", err)
		}
		if len(out.Children) != 1 {
			rt.Fatalf("expected one root, got %d", len(out.Children))
		}
		if diff := cmp.Diff(withoutBlankText(template), out.Children[0], opts); diff != "" {
			rt.Fatalf("copy mismatch (-want +got):\n%s", diff)
		}
	})
}

func genMarkup(rt *rapid.T, depth int, label string) *tree.Node {
	el := tree.NewElement(tree.Name{Local: rapid.SampledFrom([]string{"div", "span", "p", "section"}).Draw(rt, label+"name")})
	if rapid.Bool().Draw(rt, label+"has-attr") {
		el.SetAttr("class", rapid.StringMatching(`[a-z]{0,5}`).Draw(rt, label+"class"))
	}
	if depth == 0 {
		return el
	}
	count := rapid.IntRange(0, 3).Draw(rt, label+"children")
	for i := 0; i < count; i++ {
		child := fmt.Sprintf("%s%d.", label, i)
		switch rapid.IntRange(0, 3).Draw(rt, child+"kind") {
		case 0:
			el.AppendChild(genMarkup(rt, depth-1, child))
		case 1:
			el.AppendChild(tree.NewText(rapid.StringMatching(`[a-z ]{1,6}`).Draw(rt, child+"text")))
		case 2:
			el.AppendChild(tree.NewText(rapid.SampledFrom([]string{" ", "\n  ", "\t"}).Draw(rt, child+"blank")))
		default:
			el.AppendChild(tree.NewComment(rapid.StringMatching(`[a-z]{0,4}`).Draw(rt, child+"comment")))
		}
	}
	return el
}

func withoutBlankText(n *tree.Node) *tree.Node {
	if n.Kind != tree.KindElement {
		return &tree.Node{Kind: n.Kind, Data: n.Data}
	}
	out := tree.NewElement(n.Name, n.Attrs...)
	for _, child := range n.Children {
		if child.IsWhitespace() {
			continue
		}
		out.AppendChild(withoutBlankText(child))
	}
	return out
}

func TestWhitespaceOnlyTextIsDroppedOutsideTextInstructions(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	got := mustRender(t, engine, nil, "<div>\n  <p>a b</p>\n  <j:text>  </j:text><j:text>x {y}</j:text>\n</div>")
	if got != "<div><p>a b</p>  x {y}</div>" {
		t.Fatalf("got %q", got)
	}
}

func TestReleasedFrameClearsOuterBinding(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	src := `<div><j:variable name="x" select="'outer'"/>` +
		`<p><j:value-of select="$x"/>:<j:variable name="x" select="'inner'"/><j:value-of select="$x"/></p>` +
		`<span><j:value-of select="$x ?? 'cleared'"/></span></div>`
	got := mustRender(t, engine, nil, src)
	if got != "<div><p>outer:inner</p><span>cleared</span></div>" {
		t.Fatalf("got %q", got)
	}
}

func TestSiblingBindingsDoNotLeak(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	src := `<div><p><j:variable name="a" select="1"/></p><p><j:value-of select="$a ?? 'unbound'"/></p></div>`
	if got := mustRender(t, engine, nil, src); got != "<div><p></p><p>unbound</p></div>" {
		t.Fatalf("got %q", got)
	}
}

func TestAttributeInterpolation(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	data := map[string]any{"url": "/u", "n": 2}
	got := mustRender(t, engine, data, `<a href="{url}" title="{missing}" class="" data-n="{n * 2}" data-raw="x{n}">x</a>`)
	if got != `<a href="/u" class="" data-n="4" data-raw="x{n}">x</a>` {
		t.Fatalf("got %q", got)
	}
}

func TestAttributePrePassLeavesTemplateUntouched(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	template := parse(t, `<a href="/x"><j:attribute name="title"> T <j:value-of select="n"/> </j:attribute>link</a>`)
	anchor := template.Children[0]
	before := len(anchor.Attrs)

	for _, n := range []int{1, 2} {
		out := tree.NewFragment()
		if err := engine.Render(context.Background(), map[string]any{"n": n}, template, out); err != nil {
			t.Fatalf("Render returned error: %v", err)
		}
		want := fmt.Sprintf(`<a href="/x" title="T %d">link</a>`, n)
		if got := tree.InnerHTML(out); got != want {
			t.Fatalf("render %d = %q, want %q", n, got, want)
		}
	}
	if len(anchor.Attrs) != before {
		t.Fatalf("template attributes changed: %v", anchor.Attrs)
	}
	if _, ok := anchor.Attr("title"); ok {
		t.Fatalf("computed attribute leaked into the template")
	}
}

func TestRenderIsSafeForConcurrentUse(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	template := parse(t, `<p><j:attribute name="id">p<j:value-of select="n"/></j:attribute><j:for-each select="items"><j:value-of select="this"/></j:for-each></p>`)

	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		go func(n int) {
			out := tree.NewFragment()
			data := map[string]any{"n": n, "items": []any{n, n}}
			if err := engine.Render(context.Background(), data, template, out); err != nil {
				errs <- err
				return
			}
			want := fmt.Sprintf(`<p id="p%d">%d%d</p>`, n, n, n)
			if got := tree.InnerHTML(out); got != want {
				errs <- fmt.Errorf("got %q, want %q", got, want)
				return
			}
			errs <- nil
		}(i)
	}
	for i := 0; i < 16; i++ {
		if err := <-errs; err != nil {
			t.Fatal(err)
		}
	}
}

func TestRenderHonoursContextCancellation(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Render(ctx, nil, parse(t, "<div/>"), tree.NewFragment())
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRenderRequiresTemplateAndOutput(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	if err := engine.Render(context.Background(), nil, nil, tree.NewFragment()); err == nil {
		t.Fatalf("expected missing template to fail")
	}
	if err := engine.Render(context.Background(), nil, tree.NewFragment(), nil); err == nil {
		t.Fatalf("expected missing output to fail")
	}
	if err := engine.RenderTemplate(context.Background(), nil, "#missing", tree.NewFragment()); err == nil {
		t.Fatalf("expected unknown template id to fail")
	}
}

func TestCustomPrefix(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, WithPrefix("x"))
	got := mustRender(t, engine, nil, `<div><x:if test="true">ok</x:if><x:text> </x:text><j:if test="true">raw</j:if></div>`)
	if got != `<div>ok <j:if test="true">raw</j:if></div>` {
		t.Fatalf("got %q", got)
	}
}

func TestNamespaceURIMarksInstructions(t *testing.T) {
	t.Parallel()

	engine := newEngine(t)
	node := tree.NewElement(tree.Name{Space: DefaultNamespaceURI, Local: "value-of"}, tree.Attr{Key: "select", Value: "'uri'"})
	out := tree.NewFragment()
	if err := engine.Render(context.Background(), nil, node, out); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if got := tree.InnerHTML(out); got != "uri" {
		t.Fatalf("got %q", got)
	}
}
