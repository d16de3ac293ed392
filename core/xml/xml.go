// Package xml provides the XML tree used by the SBML and NuML packages:
// parsing, validation, XPath, formatting and namespace-aware element editing.
//
// Security Notes:
//   - XXE (External Entity) attacks are mitigated by using Go's xml.Decoder
//     which doesn't fetch external entities by default, and we explicitly
//     disable entity expansion in validation functions.
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and inherits its security properties.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/pmfml/core/encoding"
	"github.com/FocuswithJustin/pmfml/core/errors"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node represents an XML node (element, text, attribute, etc.).
type Node struct {
	node *xmlquery.Node
}

// ValidationResult contains the result of XML validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

// FormatOptions controls XML formatting behavior.
type FormatOptions struct {
	Indent string // Indentation string (e.g., "  " or "\t")
}

// Parse parses XML data and returns a Document. The data must pass Validate
// first, so malformed input is reported with its line number.
func Parse(data []byte) (*Document, error) {
	if result := Validate(data, nil); !result.Valid {
		first := result.Errors[0]
		return nil, errors.NewParse("XML", "", fmt.Sprintf("line %d: %s", first.Line, first.Message))
	}

	reader := bytes.NewReader(data)
	root, err := xmlquery.Parse(reader)
	if err != nil {
		return nil, errors.NewParse("XML", "", err.Error())
	}
	return &Document{root: root}, nil
}

// NewDocument returns an empty document carrying only the XML declaration.
func NewDocument() *Document {
	root := &xmlquery.Node{Type: xmlquery.DocumentNode}
	decl := &xmlquery.Node{
		Type: xmlquery.DeclarationNode,
		Data: "xml",
		Attr: []xmlquery.Attr{
			{Name: xml.Name{Local: "version"}, Value: "1.0"},
			{Name: xml.Name{Local: "encoding"}, Value: "UTF-8"},
		},
	}
	xmlquery.AddChild(root, decl)
	return &Document{root: root}
}

// Validate validates XML data and returns a ValidationResult.
// If schema is nil, only well-formedness is checked.
//
// Security: This function is protected against XXE (XML External Entity) attacks
// by disabling entity expansion.
func Validate(data []byte, schema []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))

	// XXE Protection (CWE-611): Disable entity expansion.
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, _ := decoder.InputPos()
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Column:  0,
				Message: err.Error(),
			})
			break
		}
	}

	return result
}

// Format formats/pretty-prints XML data.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	formatNode(&buf, doc.root, 0, opts.Indent)
	return buf.Bytes(), nil
}

// formatNode recursively formats an XML node.
func formatNode(w *bytes.Buffer, n *xmlquery.Node, depth int, indent string) {
	switch n.Type {
	case xmlquery.DocumentNode:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			formatNode(w, child, depth, indent)
		}

	case xmlquery.DeclarationNode:
		w.WriteString("<?xml")
		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(attr.Name.Local)
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}
		w.WriteString("?>\n")

	case xmlquery.ElementNode:
		writeIndent(w, depth, indent)
		w.WriteString("<")
		w.WriteString(qualifiedName(n.Prefix, n.Data))

		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(qualifiedName(attr.Name.Space, attr.Name.Local))
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}

		hasElementChildren := false
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == xmlquery.ElementNode {
				hasElementChildren = true
				break
			}
		}

		if n.FirstChild == nil {
			w.WriteString("/>\n")
			return
		}

		w.WriteString(">")
		if hasElementChildren {
			w.WriteString("\n")
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			switch child.Type {
			case xmlquery.ElementNode, xmlquery.CommentNode:
				formatNode(w, child, depth+1, indent)
			case xmlquery.TextNode:
				text := strings.TrimSpace(child.Data)
				if text == "" {
					continue
				}
				if hasElementChildren {
					writeIndent(w, depth+1, indent)
				}
				w.WriteString(encoding.EscapeXMLText(text))
				if hasElementChildren {
					w.WriteString("\n")
				}
			case xmlquery.CharDataNode:
				w.WriteString("<![CDATA[")
				w.WriteString(child.Data)
				w.WriteString("]]>")
			}
		}

		if hasElementChildren {
			writeIndent(w, depth, indent)
		}
		w.WriteString("</")
		w.WriteString(qualifiedName(n.Prefix, n.Data))
		w.WriteString(">\n")

	case xmlquery.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			w.WriteString(encoding.EscapeXMLText(text))
		}

	case xmlquery.CommentNode:
		writeIndent(w, depth, indent)
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->\n")
	}
}

func qualifiedName(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	for i := 0; i < depth; i++ {
		w.WriteString(indent)
	}
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// SetRoot replaces the root element of the document.
func (d *Document) SetRoot(n *Node) {
	if old := d.Root(); old != nil {
		xmlquery.RemoveFromTree(old.node)
	}
	xmlquery.RemoveFromTree(n.node)
	xmlquery.AddChild(d.root, n.node)
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}

	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first matching node.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Serialize converts the document back to XML bytes.
func (d *Document) Serialize() []byte {
	if d.root == nil {
		return nil
	}
	return []byte(d.root.OutputXML(true))
}

// NewElement creates a detached element. space is the namespace URI the
// prefix is bound to; it may be empty.
func NewElement(prefix, local, space string) *Node {
	return &Node{node: &xmlquery.Node{
		Type:         xmlquery.ElementNode,
		Data:         local,
		Prefix:       prefix,
		NamespaceURI: space,
	}}
}

// Name returns the element's local name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// Is reports whether the element has the given local name and, when space
// is non-empty, a prefix or namespace URI equal to space.
func (n *Node) Is(local, space string) bool {
	if n.node == nil || n.node.Type != xmlquery.ElementNode || n.node.Data != local {
		return false
	}
	if space == "" {
		return true
	}
	return n.node.Prefix == space || n.node.NamespaceURI == space
}

// Text returns the text content of the node.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// SetText replaces the node's children with a single text payload.
func (n *Node) SetText(s string) {
	for child := n.node.FirstChild; child != nil; {
		next := child.NextSibling
		xmlquery.RemoveFromTree(child)
		child = next
	}
	xmlquery.AddChild(n.node, &xmlquery.Node{Type: xmlquery.TextNode, Data: s})
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// FindChild returns the first child element matching local and space, or
// nil when there is none. See Is for the matching rule.
func (n *Node) FindChild(local, space string) *Node {
	if n == nil || n.node == nil {
		return nil
	}
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		c := &Node{node: child}
		if c.Is(local, space) {
			return c
		}
	}
	return nil
}

// FindChildren returns every child element matching local and space.
func (n *Node) FindChildren(local, space string) []*Node {
	var found []*Node
	for _, c := range n.Children() {
		if c.Is(local, space) {
			found = append(found, c)
		}
	}
	return found
}

// AppendChild attaches c as the last child of n, detaching it from any
// previous parent first.
func (n *Node) AppendChild(c *Node) {
	xmlquery.RemoveFromTree(c.node)
	xmlquery.AddChild(n.node, c.node)
}

// RemoveChild detaches c from n. It is a no-op when c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	if c.node.Parent != n.node {
		return
	}
	xmlquery.RemoveFromTree(c.node)
}

// Parent returns the parent element, or nil for a detached or root element.
func (n *Node) Parent() *Node {
	if n.node == nil || n.node.Parent == nil || n.node.Parent.Type != xmlquery.ElementNode {
		return nil
	}
	return &Node{node: n.node.Parent}
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	if n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}

// SetAttr sets an attribute, creating it when missing.
func (n *Node) SetAttr(name, value string) {
	n.node.SetAttr(name, value)
}

// DeclareNamespace binds prefix to uri on this element. An empty prefix sets
// the default namespace.
func (n *Node) DeclareNamespace(prefix, uri string) {
	if prefix == "" {
		n.SetAttr("xmlns", uri)
		return
	}
	n.SetAttr("xmlns:"+prefix, uri)
}
