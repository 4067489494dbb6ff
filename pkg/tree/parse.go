package tree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseXML builds a document tree from XML input. Prefixes are preserved as
// written (a `j:if` element gets Name{Space: "j", Local: "if"}) so instruction
// matching does not depend on namespace declarations. HTML named entities are
// accepted in addition to the XML ones.
func ParseXML(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.Entity = xml.HTMLEntity

	doc := NewDocument()
	stack := []*Node{doc}
	rootSeen := false

	for {
		tok, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("tree: parse xml: %w", err)
		}

		parent := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 1 {
				if rootSeen {
					return nil, fmt.Errorf("tree: parse xml: unexpected element %s after document end", rawName(t.Name))
				}
				rootSeen = true
			}
			elem := NewElement(Name{Space: t.Name.Space, Local: t.Name.Local}, convertXMLAttrs(t.Attr)...)
			parent.AppendChild(elem)
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) == 1 {
				return nil, fmt.Errorf("tree: parse xml: unexpected end element %s", rawName(t.Name))
			}
			want := parent.Name
			if want.Space != t.Name.Space || want.Local != t.Name.Local {
				return nil, fmt.Errorf("tree: parse xml: element %s closed by %s", want, rawName(t.Name))
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 1 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, errors.New("tree: parse xml: unexpected character data outside root element")
				}
				continue
			}
			parent.AppendChild(NewText(string(t)))

		case xml.Comment:
			parent.AppendChild(NewComment(string(t)))
		}
	}

	if len(stack) > 1 {
		return nil, fmt.Errorf("tree: parse xml: unclosed element %s: %w", stack[len(stack)-1].Name, io.ErrUnexpectedEOF)
	}
	if !rootSeen {
		return nil, fmt.Errorf("tree: parse xml: no root element: %w", io.ErrUnexpectedEOF)
	}
	return doc, nil
}

func rawName(name xml.Name) string {
	return Name{Space: name.Space, Local: name.Local}.String()
}

func convertXMLAttrs(attrs []xml.Attr) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, Attr{
			Key:   rawName(attr.Name),
			Value: attr.Value,
		})
	}
	return out
}

// ParseHTML parses an HTML fragment (as found inside <body>) into a fragment
// node. Tag names such as `j:if` are split on the first colon. The HTML parser
// lowercases names, so instruction names must be written in lowercase.
func ParseHTML(r io.Reader) (*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, context)
	if err != nil {
		return nil, fmt.Errorf("tree: parse html: %w", err)
	}
	frag := NewFragment()
	for _, n := range nodes {
		if converted := fromHTML(n); converted != nil {
			frag.AppendChild(converted)
		}
	}
	return frag, nil
}

func fromHTML(n *html.Node) *Node {
	var out *Node
	switch n.Type {
	case html.ElementNode:
		out = NewElement(ParseName(n.Data))
		for _, attr := range n.Attr {
			key := attr.Key
			if attr.Namespace != "" {
				key = attr.Namespace + ":" + attr.Key
			}
			out.Attrs = append(out.Attrs, Attr{Key: key, Value: attr.Val})
		}
	case html.TextNode:
		return NewText(n.Data)
	case html.CommentNode:
		return NewComment(n.Data)
	case html.DocumentNode:
		out = NewDocument()
	default:
		return nil
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if converted := fromHTML(child); converted != nil {
			out.AppendChild(converted)
		}
	}
	return out
}
