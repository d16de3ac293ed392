package sbml

import (
	"strconv"

	"github.com/FocuswithJustin/pmfml/core/xml"
)

const (
	tagSpecies    = "species"
	tagAnnotation = "annotation"
	tagRDF        = "RDF"

	// RDFNamespace is the namespace of the standard RDF annotation block.
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// Species is an SBML species element.
type Species struct {
	el *xml.Node
}

// NewSpecies creates a detached species element.
func NewSpecies() *Species {
	return &Species{el: xml.NewElement("", tagSpecies, Namespace)}
}

// Element returns the underlying XML element.
func (s *Species) Element() *xml.Node { return s.el }

// Compartment returns the id of the compartment the species lives in.
func (s *Species) Compartment() string { return s.el.Attr("compartment") }

// SetCompartment sets the compartment id.
func (s *Species) SetCompartment(id string) { s.el.SetAttr("compartment", id) }

// ID returns the species id.
func (s *Species) ID() string { return s.el.Attr("id") }

// SetID sets the species id.
func (s *Species) SetID(id string) { s.el.SetAttr("id", id) }

// Name returns the display name.
func (s *Species) Name() string { return s.el.Attr("name") }

// SetName sets the display name.
func (s *Species) SetName(name string) { s.el.SetAttr("name", name) }

// SubstanceUnits returns the unit definition id of the species amount.
func (s *Species) SubstanceUnits() string { return s.el.Attr("substanceUnits") }

// SetSubstanceUnits sets the unit definition id.
func (s *Species) SetSubstanceUnits(units string) { s.el.SetAttr("substanceUnits", units) }

func (s *Species) BoundaryCondition() bool     { return s.flag("boundaryCondition") }
func (s *Species) SetBoundaryCondition(b bool) { s.setFlag("boundaryCondition", b) }

func (s *Species) Constant() bool     { return s.flag("constant") }
func (s *Species) SetConstant(b bool) { s.setFlag("constant", b) }

func (s *Species) HasOnlySubstanceUnits() bool     { return s.flag("hasOnlySubstanceUnits") }
func (s *Species) SetHasOnlySubstanceUnits(b bool) { s.setFlag("hasOnlySubstanceUnits", b) }

func (s *Species) flag(name string) bool {
	b, _ := strconv.ParseBool(s.el.Attr(name))
	return b
}

func (s *Species) setFlag(name string, b bool) {
	s.el.SetAttr(name, strconv.FormatBool(b))
}

// NonRDFAnnotation returns the annotation children other than the RDF
// block. It returns nil when the species has no annotation.
func (s *Species) NonRDFAnnotation() []*xml.Node {
	annotation := s.el.FindChild(tagAnnotation, "")
	if annotation == nil {
		return nil
	}
	var out []*xml.Node
	for _, c := range annotation.Children() {
		if !isRDF(c) {
			out = append(out, c)
		}
	}
	return out
}

// SetNonRDFAnnotation replaces the non-RDF annotation children with nodes.
// An RDF block is kept. The annotation element is removed when nothing is
// left in it.
func (s *Species) SetNonRDFAnnotation(nodes ...*xml.Node) {
	annotation := s.el.FindChild(tagAnnotation, "")
	if annotation == nil {
		if len(nodes) == 0 {
			return
		}
		annotation = xml.NewElement("", tagAnnotation, Namespace)
		s.el.AppendChild(annotation)
	}

	for _, c := range annotation.Children() {
		if !isRDF(c) {
			annotation.RemoveChild(c)
		}
	}
	for _, n := range nodes {
		annotation.AppendChild(n)
	}

	if len(annotation.Children()) == 0 {
		s.el.RemoveChild(annotation)
	}
}

func isRDF(n *xml.Node) bool {
	return n.Is(tagRDF, "rdf") || n.Is(tagRDF, RDFNamespace)
}
