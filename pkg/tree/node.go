// Package tree provides the node model shared by template trees and rendered
// output trees, together with the accessors the interpreter relies on: node
// kind, namespaced names, ordered attributes, ordered children, child
// filtering and subtree serialization.
package tree

import (
	"strings"
	"unicode"
)

// Kind classifies nodes.
type Kind int

const (
	// KindOther covers nodes with no specialised handling.
	KindOther Kind = iota
	KindElement
	KindText
	KindCDATA
	KindComment
	KindFragment
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindCDATA:
		return "cdata"
	case KindComment:
		return "comment"
	case KindFragment:
		return "fragment"
	case KindDocument:
		return "document"
	default:
		return "other"
	}
}

// Name is a namespaced element name. Space holds either the prefix (as written
// in the source) or a resolved namespace URI, depending on how the tree was
// built.
type Name struct {
	Space string
	Local string
}

// ParseName splits a qualified "prefix:local" name. Names without a colon have
// an empty Space.
func ParseName(qualified string) Name {
	if idx := strings.IndexByte(qualified, ':'); idx > 0 {
		return Name{Space: qualified[:idx], Local: qualified[idx+1:]}
	}
	return Name{Local: qualified}
}

// String returns the qualified form of the name.
func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// Attr is a single attribute. Key is the qualified attribute name.
type Attr struct {
	Key   string
	Value string
}

// Node is a template or output node. Template trees are treated as read-only
// once built; output trees grow append-only through AppendChild.
type Node struct {
	Kind     Kind
	Name     Name
	Data     string
	Attrs    []Attr
	Children []*Node
	Parent   *Node
}

// NewElement creates a detached element node.
func NewElement(name Name, attrs ...Attr) *Node {
	node := &Node{Kind: KindElement, Name: name}
	if len(attrs) > 0 {
		node.Attrs = append([]Attr(nil), attrs...)
	}
	return node
}

// NewText creates a text node.
func NewText(data string) *Node {
	return &Node{Kind: KindText, Data: data}
}

// NewCDATA creates a CDATA section node.
func NewCDATA(data string) *Node {
	return &Node{Kind: KindCDATA, Data: data}
}

// NewComment creates a comment node.
func NewComment(data string) *Node {
	return &Node{Kind: KindComment, Data: data}
}

// NewFragment creates an empty fragment, used as a scratch output target.
func NewFragment() *Node {
	return &Node{Kind: KindFragment}
}

// NewDocument creates an empty document node.
func NewDocument() *Node {
	return &Node{Kind: KindDocument}
}

// AppendChild attaches child as the last child of n and returns it.
func (n *Node) AppendChild(child *Node) *Node {
	if child == nil {
		return nil
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// IsElement reports whether n is an element with the given name.
func (n *Node) IsElement(name Name) bool {
	return n != nil && n.Kind == KindElement && n.Name == name
}

// Attr returns the raw value of the attribute with the given key.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or fallback when the attribute is
// missing or empty.
func (n *Node) AttrOr(key, fallback string) string {
	if value, ok := n.Attr(key); ok && value != "" {
		return value
	}
	return fallback
}

// SetAttr replaces the value of an existing attribute or appends a new one.
func (n *Node) SetAttr(key, value string) {
	for idx := range n.Attrs {
		if n.Attrs[idx].Key == key {
			n.Attrs[idx].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
}

// WithAttrs returns a derived copy of n carrying the supplied attributes on
// top of its own. The copy shares the children slice with n and n itself is
// left untouched, so cached templates can be rendered repeatedly.
func (n *Node) WithAttrs(attrs []Attr) *Node {
	if len(attrs) == 0 {
		return n
	}
	derived := *n
	derived.Attrs = append(make([]Attr, 0, len(n.Attrs)+len(attrs)), n.Attrs...)
	for _, attr := range attrs {
		derived.SetAttr(attr.Key, attr.Value)
	}
	return &derived
}

// Elements returns the element children of n in document order.
func (n *Node) Elements() []*Node {
	return FilterChildren(n, func(child *Node) bool {
		return child.Kind == KindElement
	})
}

// TextContent concatenates the text of every text and CDATA node in the
// subtree rooted at n.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	switch n.Kind {
	case KindText, KindCDATA:
		sb.WriteString(n.Data)
		return
	case KindComment:
		return
	}
	for _, child := range n.Children {
		child.collectText(sb)
	}
}

// IsWhitespace reports whether the node is a text node holding only
// whitespace.
func (n *Node) IsWhitespace() bool {
	if n == nil || (n.Kind != KindText && n.Kind != KindCDATA) {
		return false
	}
	return strings.IndexFunc(n.Data, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}

// FilterChildren returns the direct children of n accepted by keep.
func FilterChildren(n *Node, keep func(*Node) bool) []*Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	var out []*Node
	for _, child := range n.Children {
		if keep(child) {
			out = append(out, child)
		}
	}
	return out
}

// ChildrenNamed returns the direct element children matching (include=true)
// or not matching (include=false) the given name.
func ChildrenNamed(n *Node, name Name, include bool) []*Node {
	return FilterChildren(n, func(child *Node) bool {
		return child.IsElement(name) == include
	})
}
