// Package encoding provides XML escaping for the document formatter.
package encoding

import "strings"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
)

// EscapeXMLText escapes the basic XML entities for element text content.
func EscapeXMLText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeXMLAttr escapes text for use in a double-quoted XML attribute.
func EscapeXMLAttr(s string) string {
	return attrEscaper.Replace(s)
}
