package render

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-jdsl/pkg/tree"
)

func sample() *tree.Node {
	frag := tree.NewFragment()
	div := frag.AppendChild(tree.NewElement(tree.Name{Local: "div"}, tree.Attr{Key: "onclick", Value: "steal()"}))
	div.AppendChild(tree.NewText("Hi & bye"))
	script := div.AppendChild(tree.NewElement(tree.Name{Local: "script"}))
	script.AppendChild(tree.NewText("alert(1)"))
	frag.AppendChild(tree.NewComment("note"))
	return frag
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := NewDefaultRegistry()
	if diff := cmp.Diff([]string{NameHTML, NameSafeHTML, NameText, NameXML}, reg.List()); diff != "" {
		t.Fatalf("List mismatch (-want +got):\n%s", diff)
	}
	if err := reg.Register(NewXML()); err == nil {
		t.Fatalf("expected duplicate renderer to fail")
	}
	if _, err := reg.Get("pdf"); err == nil {
		t.Fatalf("expected unknown renderer to fail")
	}
	if !reg.Has(NameText) {
		t.Fatalf("expected text renderer")
	}
}

func TestRenderers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := []struct {
		renderer Renderer
		want     string
	}{
		{NewHTML(), `<div onclick="steal()">Hi &amp; bye<script>alert(1)</script></div><!--note-->`},
		{NewSafeHTML(), `<div>Hi &amp; bye</div>`},
		{NewXML(), `<div onclick="steal()">Hi &amp; bye<script>alert(1)</script></div><!--note-->`},
		{NewText(), `Hi & byealert(1)`},
	}
	for _, tc := range cases {
		got, err := tc.renderer.Render(ctx, sample())
		if err != nil {
			t.Fatalf("%s: Render returned error: %v", tc.renderer.Name(), err)
		}
		if string(got) != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.renderer.Name(), got, tc.want)
		}
		if tc.renderer.ContentType() == "" {
			t.Fatalf("%s: missing content type", tc.renderer.Name())
		}
	}
}

func TestHTMLOptions(t *testing.T) {
	t.Parallel()

	got, err := NewHTML(WithDoctype()).Render(context.Background(), sample())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.HasPrefix(string(got), "<!DOCTYPE html>\n<div") {
		t.Fatalf("missing doctype: %q", got)
	}

	strict := NewSafeHTML(WithPolicy(bluemonday.StrictPolicy()))
	got, err = strict.Render(context.Background(), sample())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if string(got) != "Hi &amp; bye" {
		t.Fatalf("strict policy got %q", got)
	}
}

func TestRenderHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range []Renderer{NewHTML(), NewXML(), NewText()} {
		if _, err := r.Render(ctx, sample()); err == nil {
			t.Fatalf("%s: expected cancellation error", r.Name())
		}
	}
}
