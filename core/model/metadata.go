package model

import (
	"strings"

	"github.com/FocuswithJustin/pmfml/core/sbml"
	"github.com/FocuswithJustin/pmfml/core/xml"
)

// Prefixes and tags of the PMF species metadata block. Existing files depend
// on these exact spellings.
const (
	MetadataPrefix = "pmf"
	MetadataTag    = "metadata"

	SourcePrefix = "dc"
	SourceTag    = "source"

	DetailPrefix = "pmmlab"
	DetailTag    = "detail"

	DescriptionPrefix = "pmmlab"
	DescriptionTag    = "desc"
)

// Namespace URIs bound to the metadata prefixes.
const (
	PMFNamespace    = "http://sourceforge.net/projects/microbialmodelingexchange/files/PMF-ML"
	DCNamespace     = "http://purl.org/dc/elements/1.1/"
	PMMLabNamespace = "http://sourceforge.net/projects/microbialmodelingexchange/files/PMF-ML/pmmlab"
)

// CombaseURIPrefix is joined with "/" and a CoMBase code to form the
// persisted source URI.
const CombaseURIPrefix = "http://identifiers.org/ncim"

// Metadata holds the optional descriptive fields of a PMF species. An empty
// string means the field is absent.
type Metadata struct {
	CombaseCode string
	Detail      string
	Description string
}

// IsEmpty reports whether no field is set.
func (m Metadata) IsEmpty() bool {
	return m.CombaseCode == "" && m.Detail == "" && m.Description == ""
}

// CombaseSourceURI returns the persisted form of a CoMBase code.
func CombaseSourceURI(code string) string {
	return CombaseURIPrefix + "/" + code
}

// combaseCodeFromSource keeps whatever follows the last slash. A payload
// without a slash is taken whole.
func combaseCodeFromSource(uri string) string {
	return uri[strings.LastIndex(uri, "/")+1:]
}

// element names an element of the metadata block by tag, conventional
// prefix and namespace URI.
type element struct {
	prefix, tag, space string
}

var (
	metadataElement    = element{MetadataPrefix, MetadataTag, PMFNamespace}
	sourceElement      = element{SourcePrefix, SourceTag, DCNamespace}
	detailElement      = element{DetailPrefix, DetailTag, PMMLabNamespace}
	descriptionElement = element{DescriptionPrefix, DescriptionTag, PMMLabNamespace}
)

// matches reports whether n carries the tag under the conventional prefix or
// under any prefix, including the default one, bound to the namespace URI.
func (e element) matches(n *xml.Node) bool {
	return n.Is(e.tag, e.prefix) || n.Is(e.tag, e.space)
}

// in returns the first child of parent that matches e, or nil.
func (e element) in(parent *xml.Node) *xml.Node {
	for _, c := range parent.Children() {
		if e.matches(c) {
			return c
		}
	}
	return nil
}

// readMetadata extracts the metadata fields from the species' non-RDF
// annotation. Missing pieces leave the corresponding field empty.
func readMetadata(s *sbml.Species) Metadata {
	var m Metadata

	container := findMetadata(s.NonRDFAnnotation())
	if container == nil {
		return m
	}

	if source := sourceElement.in(container); source != nil {
		m.CombaseCode = combaseCodeFromSource(source.Text())
	}
	if detail := detailElement.in(container); detail != nil {
		m.Detail = detail.Text()
	}
	if desc := descriptionElement.in(container); desc != nil {
		m.Description = desc.Text()
	}
	return m
}

// writeMetadata stores m in the species' metadata block, or removes the
// block when m is empty. An existing block is updated in place: its
// position, namespace declarations and unrecognized children are kept.
// Other non-RDF annotations are left alone. Extra metadata blocks beyond the
// first are dropped.
func writeMetadata(s *sbml.Species, m Metadata) {
	var (
		nodes     []*xml.Node
		container *xml.Node
	)
	for _, n := range s.NonRDFAnnotation() {
		if !metadataElement.matches(n) {
			nodes = append(nodes, n)
			continue
		}
		if container != nil || m.IsEmpty() {
			continue
		}
		container = n
		nodes = append(nodes, n)
	}
	if m.IsEmpty() {
		s.SetNonRDFAnnotation(nodes...)
		return
	}
	if container == nil {
		container = newMetadataContainer()
		nodes = append(nodes, container)
	}
	fillMetadata(container, m)
	s.SetNonRDFAnnotation(nodes...)
}

// newMetadataContainer creates an empty metadata element declaring the
// three metadata prefixes.
func newMetadataContainer() *xml.Node {
	container := xml.NewElement(MetadataPrefix, MetadataTag, PMFNamespace)
	container.DeclareNamespace(MetadataPrefix, PMFNamespace)
	container.DeclareNamespace(SourcePrefix, DCNamespace)
	container.DeclareNamespace(DetailPrefix, PMMLabNamespace)
	return container
}

// fillMetadata rewrites the recognized children of container in the order
// source, detail, desc, skipping absent fields. Unrecognized children follow
// them in their original order.
func fillMetadata(container *xml.Node, m Metadata) {
	var unknown []*xml.Node
	for _, c := range container.Children() {
		container.RemoveChild(c)
		if !sourceElement.matches(c) && !detailElement.matches(c) && !descriptionElement.matches(c) {
			unknown = append(unknown, c)
		}
	}

	fields := []struct {
		el    element
		value string
	}{
		{sourceElement, m.CombaseCode},
		{detailElement, m.Detail},
		{descriptionElement, m.Description},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if f.el == sourceElement {
			f.value = CombaseSourceURI(f.value)
		}
		el := textElement(f.el, f.value)
		if container.Attr("xmlns:"+f.el.prefix) != f.el.space {
			el.DeclareNamespace(f.el.prefix, f.el.space)
		}
		container.AppendChild(el)
	}

	for _, n := range unknown {
		container.AppendChild(n)
	}
}

func findMetadata(nodes []*xml.Node) *xml.Node {
	for _, n := range nodes {
		if metadataElement.matches(n) {
			return n
		}
	}
	return nil
}

func textElement(e element, text string) *xml.Node {
	el := xml.NewElement(e.prefix, e.tag, e.space)
	el.SetText(text)
	return el
}
