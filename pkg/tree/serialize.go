package tree

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// HTML serializes the content of n using HTML rules. Fragment and document
// nodes contribute only their children, matching innerHTML semantics; other
// nodes are serialized including themselves.
func HTML(n *Node) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML streams the HTML serialization of n to w.
func WriteHTML(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	for _, converted := range toHTML(n) {
		if err := html.Render(w, converted); err != nil {
			return fmt.Errorf("tree: render html: %w", err)
		}
	}
	return nil
}

// toHTML converts n into detached html nodes. Containers flatten into their
// children.
func toHTML(n *Node) []*html.Node {
	switch n.Kind {
	case KindElement:
		el := &html.Node{Type: html.ElementNode, Data: n.Name.String()}
		for _, attr := range n.Attrs {
			el.Attr = append(el.Attr, html.Attribute{Key: attr.Key, Val: attr.Value})
		}
		for _, child := range n.Children {
			for _, converted := range toHTML(child) {
				el.AppendChild(converted)
			}
		}
		return []*html.Node{el}
	case KindText, KindCDATA:
		return []*html.Node{{Type: html.TextNode, Data: n.Data}}
	case KindComment:
		return []*html.Node{{Type: html.CommentNode, Data: n.Data}}
	default:
		var out []*html.Node
		for _, child := range n.Children {
			out = append(out, toHTML(child)...)
		}
		return out
	}
}

// XML serializes the content of n as XML. Like HTML, containers contribute only
// their children.
func XML(n *Node) (string, error) {
	var buf bytes.Buffer
	if err := WriteXML(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteXML streams the XML serialization of n to w.
func WriteXML(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	enc := xml.NewEncoder(w)
	if err := encodeXML(enc, n); err != nil {
		return fmt.Errorf("tree: render xml: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("tree: render xml: %w", err)
	}
	return nil
}

func encodeXML(enc *xml.Encoder, n *Node) error {
	switch n.Kind {
	case KindElement:
		// The qualified name goes into Local so the encoder does not invent
		// namespace declarations for prefixes.
		start := xml.StartElement{Name: xml.Name{Local: n.Name.String()}}
		for _, attr := range n.Attrs {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: attr.Key}, Value: attr.Value})
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, child := range n.Children {
			if err := encodeXML(enc, child); err != nil {
				return err
			}
		}
		return enc.EncodeToken(start.End())
	case KindText, KindCDATA:
		return enc.EncodeToken(xml.CharData(n.Data))
	case KindComment:
		return enc.EncodeToken(xml.Comment(n.Data))
	default:
		for _, child := range n.Children {
			if err := encodeXML(enc, child); err != nil {
				return err
			}
		}
		return nil
	}
}
