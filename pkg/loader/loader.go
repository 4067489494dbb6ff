// Package loader reads stylesheet documents and registers their named
// templates. A stylesheet is a `j:stylesheet` root whose `j:template`
// children carry an id; each is registered as "#<id>".
package loader

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-jdsl/internal/log"
	"github.com/goliatone/go-jdsl/pkg/templates"
	"github.com/goliatone/go-jdsl/pkg/tree"
)

// DefaultPrefix is the instruction prefix stylesheets are written with.
const DefaultPrefix = "j"

// Format selects the parser for a source.
type Format int

const (
	FormatXML Format = iota
	FormatHTML
)

// Option customises a Loader.
type Option func(*Loader)

// WithPrefix sets the instruction prefix used to find stylesheet and
// template elements.
func WithPrefix(prefix string) Option {
	return func(l *Loader) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithExtensions maps file extensions (with the dot) to a format, replacing
// the defaults.
func WithExtensions(formats map[string]Format) Option {
	return func(l *Loader) {
		if len(formats) == 0 {
			return
		}
		l.extensions = make(map[string]Format, len(formats))
		for ext, format := range formats {
			l.extensions[strings.ToLower(ext)] = format
		}
	}
}

// Loader parses stylesheets.
type Loader struct {
	prefix     string
	extensions map[string]Format
}

// New constructs a Loader. By default .jdsl and .xml files are parsed as XML
// and .html/.htm files as HTML fragments.
func New(options ...Option) *Loader {
	l := &Loader{
		prefix: DefaultPrefix,
		extensions: map[string]Format{
			".jdsl": FormatXML,
			".xml":  FormatXML,
			".html": FormatHTML,
			".htm":  FormatHTML,
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Template is one named template of a stylesheet.
type Template struct {
	ID   string
	Key  string
	Node *tree.Node
}

// Stylesheet is a parsed stylesheet document.
type Stylesheet struct {
	Source    string
	Document  *tree.Node
	Templates []Template
}

// Parse reads one stylesheet from r. source names it in errors.
func (l *Loader) Parse(r io.Reader, source string, format Format) (*Stylesheet, error) {
	var (
		doc *tree.Node
		err error
	)
	switch format {
	case FormatHTML:
		doc, err = tree.ParseHTML(r)
	default:
		doc, err = tree.ParseXML(r)
	}
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", source, err)
	}

	root := l.findRoot(doc)
	if root == nil {
		return nil, fmt.Errorf("loader: %s has no %s:stylesheet or %s:template root", source, l.prefix, l.prefix)
	}

	sheet := &Stylesheet{Source: source, Document: doc}
	candidates := []*tree.Node{root}
	if root.Name.Local == "stylesheet" {
		candidates = root.Elements()
	}
	seen := make(map[string]struct{})
	for _, el := range candidates {
		if !l.is(el, "template") {
			continue
		}
		id := strings.TrimSpace(el.AttrOr("id", ""))
		if id == "" {
			return nil, fmt.Errorf("loader: %s: %s:template without id", source, l.prefix)
		}
		key := templates.Key(id)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("loader: %s: duplicate template id %q", source, id)
		}
		seen[key] = struct{}{}
		sheet.Templates = append(sheet.Templates, Template{ID: id, Key: key, Node: el})
	}
	return sheet, nil
}

// ParseBytes is Parse over an in-memory document.
func (l *Loader) ParseBytes(data []byte, source string, format Format) (*Stylesheet, error) {
	return l.Parse(bytes.NewReader(data), source, format)
}

// Register adds every template of sheet to reg.
func Register(sheet *Stylesheet, reg *templates.Registry) error {
	if sheet == nil || reg == nil {
		return fmt.Errorf("loader: stylesheet and registry are required")
	}
	for _, tpl := range sheet.Templates {
		if err := reg.Register(tpl.Key, tpl.Node); err != nil {
			return fmt.Errorf("loader: %s: %w", sheet.Source, err)
		}
		log.Debug(log.CatLoader, "registered template", "key", tpl.Key, "source", sheet.Source)
	}
	return nil
}

// LoadFS walks fsys, parses every file with a known extension and registers
// its templates into reg. Files are visited in lexical order.
func (l *Loader) LoadFS(fsys fs.FS, reg *templates.Registry) ([]*Stylesheet, error) {
	if fsys == nil {
		return nil, nil
	}

	var sheets []*Stylesheet
	err := fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		format, ok := l.FormatFor(p)
		if !ok {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("loader: read %s: %w", p, err)
		}
		sheet, err := l.ParseBytes(data, p, format)
		if err != nil {
			return err
		}
		if err := Register(sheet, reg); err != nil {
			return err
		}
		sheets = append(sheets, sheet)
		return nil
	})
	if err != nil {
		log.ErrorErr(log.CatLoader, "load failed", err)
		return nil, err
	}
	log.Info(log.CatLoader, "stylesheets loaded", "files", len(sheets), "templates", reg.Len())
	return sheets, nil
}

// FormatFor reports the format registered for a file name's extension.
func (l *Loader) FormatFor(name string) (Format, bool) {
	format, ok := l.extensions[strings.ToLower(path.Ext(name))]
	return format, ok
}

func (l *Loader) findRoot(doc *tree.Node) *tree.Node {
	for _, el := range doc.Elements() {
		if l.is(el, "stylesheet") || l.is(el, "template") {
			return el
		}
	}
	return nil
}

func (l *Loader) is(n *tree.Node, local string) bool {
	return n.Kind == tree.KindElement && n.Name.Space == l.prefix && n.Name.Local == local
}
