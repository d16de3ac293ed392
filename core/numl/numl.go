// Package numl provides a handle on NuML (Numerical Markup Language)
// documents, which carry the observations that accompany a PMF model.
// Only the document envelope and the result component list are modelled;
// everything else is preserved untouched.
package numl

import (
	"fmt"

	"github.com/FocuswithJustin/pmfml/core/errors"
	"github.com/FocuswithJustin/pmfml/core/xml"
)

// Namespace is the NuML Level 1 Version 1 namespace.
const Namespace = "http://www.numl.org/numl/level1/version1"

const (
	tagNuML            = "numl"
	tagResultComponent = "resultComponent"
)

// ResultComponent identifies one block of results in a document.
type ResultComponent struct {
	ID   string
	Name string
}

// Document is a NuML document.
type Document struct {
	doc *xml.Document
}

// New creates an empty level 1 version 1 document.
func New() *Document {
	doc := xml.NewDocument()
	root := xml.NewElement("", tagNuML, Namespace)
	root.DeclareNamespace("", Namespace)
	root.SetAttr("level", "1")
	root.SetAttr("version", "1")
	doc.SetRoot(root)
	return &Document{doc: doc}
}

// Parse reads a NuML document.
func Parse(data []byte) (*Document, error) {
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing NuML")
	}
	root := doc.Root()
	if root == nil || root.Name() != tagNuML {
		name := ""
		if root != nil {
			name = root.Name()
		}
		return nil, errors.NewValidation("numl", fmt.Sprintf("root element is %q, want %q", name, tagNuML))
	}
	return &Document{doc: doc}, nil
}

// ResultComponents lists the result components in document order.
func (d *Document) ResultComponents() []ResultComponent {
	var out []ResultComponent
	for _, el := range d.doc.Root().FindChildren(tagResultComponent, "") {
		out = append(out, ResultComponent{ID: el.Attr("id"), Name: el.Attr("name")})
	}
	return out
}

// AddResultComponent appends an empty result component.
func (d *Document) AddResultComponent(rc ResultComponent) {
	el := xml.NewElement("", tagResultComponent, Namespace)
	el.SetAttr("id", rc.ID)
	if rc.Name != "" {
		el.SetAttr("name", rc.Name)
	}
	d.doc.Root().AppendChild(el)
}

// Serialize renders the document as XML.
func (d *Document) Serialize() []byte {
	return d.doc.Serialize()
}
