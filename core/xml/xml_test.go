package xml

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/FocuswithJustin/pmfml/core/errors"
)

const speciesXML = `<?xml version="1.0" encoding="UTF-8"?>
<sbml xmlns="http://www.sbml.org/sbml/level3/version1/core" xmlns:pmf="http://example.org/pmf" xmlns:dc="http://purl.org/dc/elements/1.1/" level="3" version="1">
  <model id="m1">
    <listOfSpecies>
      <species id="s1" compartment="c1" name="Listeria">
        <annotation>
          <pmf:metadata>
            <dc:source>http://identifiers.org/ncim/1234</dc:source>
          </pmf:metadata>
        </annotation>
      </species>
      <species id="s2" compartment="c1"/>
    </listOfSpecies>
  </model>
</sbml>`

func mustParse(t *testing.T, data string) *Document {
	t.Helper()
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc
}

// TestParseInvalidXML verifies error handling for malformed XML.
func TestParseInvalidXML(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<root><element></root>"},
		{"mismatched tags", "<root></other>"},
		{"invalid chars", "<root>\x00</root>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.xml))
			if err == nil {
				t.Fatal("Parse should fail for invalid XML")
			}
			var pe *errors.ParseError
			if !stderrors.As(err, &pe) || pe.Format != "XML" {
				t.Errorf("error = %v, want *errors.ParseError for XML", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if result := Validate([]byte(speciesXML), nil); !result.Valid {
		t.Errorf("well-formed document rejected: %v", result.Errors)
	}
	result := Validate([]byte("<sbml><model></sbml>"), nil)
	if result.Valid {
		t.Error("malformed document accepted")
	}
	if len(result.Errors) != 1 || result.Errors[0].Message == "" {
		t.Errorf("Errors = %+v, want one error with a message", result.Errors)
	}
}

func TestXPath(t *testing.T) {
	doc := mustParse(t, speciesXML)

	nodes, err := doc.XPath("//species")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d species, want 2", len(nodes))
	}

	first, err := doc.XPathFirst("//species[@id='s2']")
	if err != nil || first == nil {
		t.Fatalf("XPathFirst = %v, %v", first, err)
	}
	if first.Attr("compartment") != "c1" {
		t.Errorf("compartment = %q, want c1", first.Attr("compartment"))
	}

	missing, err := doc.XPathFirst("//compartment")
	if err != nil || missing != nil {
		t.Errorf("XPathFirst(missing) = %v, %v; want nil, nil", missing, err)
	}

	if _, err := doc.XPath("//[invalid"); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestFindChild(t *testing.T) {
	doc := mustParse(t, speciesXML)
	s1, _ := doc.XPathFirst("//species[@id='s1']")

	annotation := s1.FindChild("annotation", "")
	if annotation == nil {
		t.Fatal("annotation not found")
	}

	byPrefix := annotation.FindChild("metadata", "pmf")
	if byPrefix == nil {
		t.Fatal("metadata not found by prefix")
	}
	byURI := annotation.FindChild("metadata", "http://example.org/pmf")
	if byURI == nil || !byURI.Is("metadata", "pmf") {
		t.Errorf("lookup by namespace URI = %v, want the pmf:metadata element", byURI)
	}
	if annotation.FindChild("metadata", "dc") != nil {
		t.Error("metadata matched under the wrong prefix")
	}

	source := byPrefix.FindChild("source", "dc")
	if source == nil {
		t.Fatal("source not found")
	}
	if got := source.Text(); got != "http://identifiers.org/ncim/1234" {
		t.Errorf("Text() = %q", got)
	}
	if !source.Is("source", "dc") || !source.Is("source", "http://purl.org/dc/elements/1.1/") {
		t.Error("source should match both its prefix and its namespace URI")
	}
	if p := source.Parent(); p == nil || !p.Is("metadata", "pmf") {
		t.Error("Parent() does not return the metadata element")
	}

	var nilNode *Node
	if nilNode.FindChild("x", "") != nil {
		t.Error("FindChild on nil node should return nil")
	}
}

func TestBuildTree(t *testing.T) {
	doc := NewDocument()
	root := NewElement("", "root", "urn:root")
	root.DeclareNamespace("", "urn:root")
	root.DeclareNamespace("x", "urn:x")
	doc.SetRoot(root)

	child := NewElement("x", "item", "urn:x")
	child.SetText("a < b")
	root.AppendChild(child)
	child.SetText("replaced")

	other := NewElement("x", "other", "urn:x")
	root.AppendChild(other)
	root.RemoveChild(other)
	root.RemoveChild(NewElement("", "stranger", ""))

	out := string(doc.Serialize())
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`xmlns="urn:root"`,
		`xmlns:x="urn:x"`,
		`<x:item>replaced</x:item>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "other") {
		t.Errorf("removed child still serialized:\n%s", out)
	}

	reparsed := mustParse(t, out)
	item := reparsed.Root().FindChild("item", "x")
	if item == nil || item.Text() != "replaced" {
		t.Fatalf("round-trip lost item: %v", item)
	}
	if len(reparsed.Root().FindChildren("item", "urn:x")) != 1 {
		t.Error("FindChildren by namespace URI should return one item")
	}
}

func TestSetRootReplaces(t *testing.T) {
	doc := NewDocument()
	doc.SetRoot(NewElement("", "first", ""))
	doc.SetRoot(NewElement("", "second", ""))
	if doc.Root().Name() != "second" {
		t.Errorf("Root() = %q, want second", doc.Root().Name())
	}
	if strings.Contains(string(doc.Serialize()), "first") {
		t.Error("old root still present")
	}
}

func TestAttributes(t *testing.T) {
	n := NewElement("", "species", "")
	if n.Attr("id") != "" {
		t.Error("fresh element has id")
	}
	n.SetAttr("id", "s1")
	n.SetAttr("id", "s2")
	n.DeclareNamespace("pmf", "urn:pmf")

	if n.Attr("id") != "s2" {
		t.Errorf("Attr(id) = %q, want s2", n.Attr("id"))
	}
	if got := n.Attr("xmlns:pmf"); got != "urn:pmf" {
		t.Errorf("Attr(xmlns:pmf) = %q, want urn:pmf", got)
	}
}

func TestFormat(t *testing.T) {
	out, err := Format([]byte(`<sbml><model id="m"><note>a &amp; b</note></model></sbml>`), FormatOptions{})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	got := string(out)
	for _, want := range []string{"<sbml>\n", "  <model id=\"m\">\n", "    <note>a &amp; b</note>\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted output missing %q:\n%s", want, got)
		}
	}

	out, err = Format([]byte(`<a><b/></a>`), FormatOptions{Indent: "\t"})
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(string(out), "\t<b/>") {
		t.Errorf("tab indent not applied:\n%s", out)
	}

	if _, err := Format([]byte("<a>"), FormatOptions{}); err == nil {
		t.Error("Format should fail on malformed input")
	}
}

func TestChildren(t *testing.T) {
	doc := mustParse(t, `<root><a>1</a><!-- note --><b>2</b></root>`)
	root := doc.Root()
	children := root.Children()
	if len(children) != 2 || children[0].Name() != "a" || children[1].Name() != "b" {
		t.Fatalf("Children() = %v", children)
	}
	if got := root.Text(); got != "12" {
		t.Errorf("Text() = %q, want 12", got)
	}
}

func TestParseReportsLine(t *testing.T) {
	_, err := Parse([]byte("<sbml>\n  <model>\n</sbml>"))
	var pe *errors.ParseError
	if !stderrors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *errors.ParseError", err)
	}
	if !strings.HasPrefix(pe.Message, "line 3:") {
		t.Errorf("Message = %q, want it to start with the failing line", pe.Message)
	}
}
