package tree

import (
	"strings"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", `"`, "&quot;")

	voidElements = map[string]struct{}{
		"area": {}, "base": {}, "br": {}, "col": {}, "embed": {}, "hr": {}, "img": {},
		"input": {}, "keygen": {}, "link": {}, "meta": {}, "param": {}, "source": {},
		"track": {}, "wbr": {},
	}
	rawTextElements = map[string]struct{}{
		"iframe": {}, "noembed": {}, "noframes": {}, "plaintext": {}, "script": {},
		"style": {}, "xmp": {},
	}
)

// InnerHTML serializes the children of n the way a browser's innerHTML
// does: text escapes only &, nbsp, < and >, attribute values escape &, nbsp
// and ", void elements get no end tag and raw-text elements keep their text
// unescaped. For a non-container node the node itself is included.
func InnerHTML(n *Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	switch n.Kind {
	case KindFragment, KindDocument, KindOther:
		for _, child := range n.Children {
			writeMarkup(&sb, child, false)
		}
	default:
		writeMarkup(&sb, n, false)
	}
	return sb.String()
}

func writeMarkup(sb *strings.Builder, n *Node, rawText bool) {
	switch n.Kind {
	case KindElement:
		name := n.Name.String()
		sb.WriteByte('<')
		sb.WriteString(name)
		for _, attr := range n.Attrs {
			sb.WriteByte(' ')
			sb.WriteString(attr.Key)
			sb.WriteString(`="`)
			attrEscaper.WriteString(sb, attr.Value) //nolint:errcheck // strings.Builder never fails
			sb.WriteByte('"')
		}
		sb.WriteByte('>')
		if _, void := voidElements[strings.ToLower(name)]; void {
			return
		}
		_, raw := rawTextElements[strings.ToLower(name)]
		for _, child := range n.Children {
			writeMarkup(sb, child, raw)
		}
		sb.WriteString("</")
		sb.WriteString(name)
		sb.WriteByte('>')
	case KindText, KindCDATA:
		if rawText {
			sb.WriteString(n.Data)
			return
		}
		textEscaper.WriteString(sb, n.Data) //nolint:errcheck // strings.Builder never fails
	case KindComment:
		sb.WriteString("<!--")
		sb.WriteString(n.Data)
		sb.WriteString("-->")
	default:
		for _, child := range n.Children {
			writeMarkup(sb, child, rawText)
		}
	}
}
