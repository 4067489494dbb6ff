// Package render turns a rendered output tree into bytes. Renderers are
// looked up by name so the CLI and hosts can pick an output format.
package render

import (
	"context"

	"github.com/goliatone/go-jdsl/pkg/tree"
)

// Renderer serializes an output tree (HTML, XML, plain text...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, node *tree.Node) ([]byte, error)
}

// Built-in renderer names.
const (
	NameHTML     = "html"
	NameSafeHTML = "safe-html"
	NameXML      = "xml"
	NameText     = "text"
)
