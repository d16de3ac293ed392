// Package sbml provides the subset of the SBML Level 3 Version 1 document
// model that PMF models use: the document root, its model and the species
// list. Elements are kept as live XML nodes, so edits made through this
// package are reflected in Serialize.
package sbml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/pmfml/core/errors"
	"github.com/FocuswithJustin/pmfml/core/xml"
)

// Level and Version are the only SBML level and version PMF files use.
const (
	Level   = 3
	Version = 1
)

// Namespace is the SBML Level 3 Version 1 core namespace.
const Namespace = "http://www.sbml.org/sbml/level3/version1/core"

const (
	tagSBML          = "sbml"
	tagModel         = "model"
	tagListOfSpecies = "listOfSpecies"
)

// Document is an SBML document.
type Document struct {
	doc *xml.Document
}

// New creates a document holding a single empty model with the given id.
func New(modelID string) *Document {
	doc := xml.NewDocument()
	root := xml.NewElement("", tagSBML, Namespace)
	root.DeclareNamespace("", Namespace)
	root.SetAttr("level", strconv.Itoa(Level))
	root.SetAttr("version", strconv.Itoa(Version))
	doc.SetRoot(root)

	model := xml.NewElement("", tagModel, Namespace)
	if modelID != "" {
		model.SetAttr("id", modelID)
	}
	root.AppendChild(model)

	return &Document{doc: doc}
}

// Parse reads an SBML document. The root must be an sbml element declaring
// level 3 version 1.
func Parse(data []byte) (*Document, error) {
	doc, err := xml.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing SBML")
	}

	root := doc.Root()
	if root == nil || root.Name() != tagSBML {
		name := ""
		if root != nil {
			name = root.Name()
		}
		return nil, errors.NewValidation("sbml", fmt.Sprintf("root element is %q, want %q", name, tagSBML))
	}

	level, err := strconv.Atoi(root.Attr("level"))
	if err != nil {
		return nil, &errors.ValidationError{Field: "level", Value: root.Attr("level"), Message: err.Error()}
	}
	version, err := strconv.Atoi(root.Attr("version"))
	if err != nil {
		return nil, &errors.ValidationError{Field: "version", Value: root.Attr("version"), Message: err.Error()}
	}
	if level != Level || version != Version {
		return nil, errors.NewUnsupported("SBML level/version", fmt.Sprintf("level %d version %d", level, version))
	}

	return &Document{doc: doc}, nil
}

// Level returns the level declared on the root element.
func (d *Document) Level() int {
	level, _ := strconv.Atoi(d.doc.Root().Attr("level"))
	return level
}

// Version returns the version declared on the root element.
func (d *Document) Version() int {
	version, _ := strconv.Atoi(d.doc.Root().Attr("version"))
	return version
}

// Model returns the document's model, or nil when it has none.
func (d *Document) Model() *Model {
	el := d.doc.Root().FindChild(tagModel, "")
	if el == nil {
		return nil
	}
	return &Model{doc: d.doc, el: el}
}

// Serialize renders the document as XML.
func (d *Document) Serialize() []byte {
	return d.doc.Serialize()
}

// Model is the model element of an SBML document.
type Model struct {
	doc *xml.Document
	el  *xml.Node
}

// speciesPath selects the species of the first model whatever prefix the
// document binds the SBML namespace to.
const speciesPath = "/*[local-name()='sbml']/*[local-name()='model'][1]" +
	"/*[local-name()='listOfSpecies']/*[local-name()='species']"

// ID returns the model id.
func (m *Model) ID() string { return m.el.Attr("id") }

// SetID sets the model id.
func (m *Model) SetID(id string) { m.el.SetAttr("id", id) }

// Species returns the model's species in document order.
func (m *Model) Species() []*Species {
	nodes, err := m.doc.XPath(speciesPath)
	if err != nil {
		return nil
	}
	var out []*Species
	for _, el := range nodes {
		out = append(out, &Species{el: el})
	}
	return out
}

// SpeciesByID returns the species with the given id, or nil.
func (m *Model) SpeciesByID(id string) *Species {
	el, err := m.doc.XPathFirst(speciesPath + "[@id=" + xpathLiteral(id) + "]")
	if err != nil || el == nil {
		return nil
	}
	return &Species{el: el}
}

// xpathLiteral quotes s as an XPath string literal. XPath 1.0 has no escape
// sequences, so a value holding both quote kinds is built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `, "'", `) + ")"
}

// AddSpecies appends s to the model's species list, creating the list when
// the model has none. A species id must be unique within the model.
func (m *Model) AddSpecies(s *Species) error {
	if s.ID() != "" && m.SpeciesByID(s.ID()) != nil {
		return errors.NewValidation("id", fmt.Sprintf("species %q already exists in model", s.ID()))
	}
	list := m.el.FindChild(tagListOfSpecies, "")
	if list == nil {
		list = xml.NewElement("", tagListOfSpecies, Namespace)
		m.el.AppendChild(list)
	}
	list.AppendChild(s.el)
	return nil
}

// RemoveSpecies detaches the species with the given id. It reports whether
// a species was removed.
func (m *Model) RemoveSpecies(id string) bool {
	s := m.SpeciesByID(id)
	if s == nil {
		return false
	}
	s.el.Parent().RemoveChild(s.el)
	return true
}
