package sbml

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/FocuswithJustin/pmfml/core/errors"
	"github.com/FocuswithJustin/pmfml/core/xml"
)

func TestNew(t *testing.T) {
	doc := New("growth")
	if doc.Level() != Level || doc.Version() != Version {
		t.Errorf("level/version = %d/%d", doc.Level(), doc.Version())
	}
	if doc.Model() == nil || doc.Model().ID() != "growth" {
		t.Fatalf("Model() = %v", doc.Model())
	}
	if len(doc.Model().Species()) != 0 {
		t.Error("new model should have no species")
	}

	out := string(doc.Serialize())
	for _, want := range []string{`level="3"`, `version="1"`, `xmlns="` + Namespace + `"`, `<model id="growth">`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		target error
	}{
		{"malformed", "<sbml", errors.ErrInvalidInput},
		{"wrong root", `<numl level="1" version="1"/>`, errors.ErrInvalidInput},
		{"missing level", `<sbml version="1"/>`, errors.ErrInvalidInput},
		{"level 2", `<sbml level="2" version="4"/>`, errors.ErrUnsupported},
		{"version 2", `<sbml level="3" version="2"/>`, errors.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse should fail")
			}
			if !stderrors.Is(err, tt.target) {
				t.Errorf("error %v does not match %v", err, tt.target)
			}
		})
	}
}

func TestSpeciesAccessors(t *testing.T) {
	s := NewSpecies()
	s.SetCompartment("broth")
	s.SetID("s1")
	s.SetName("Bacillus cereus")
	s.SetSubstanceUnits("log10_cfu_g")
	s.SetBoundaryCondition(true)
	s.SetConstant(false)
	s.SetHasOnlySubstanceUnits(true)

	if s.Compartment() != "broth" || s.ID() != "s1" || s.Name() != "Bacillus cereus" || s.SubstanceUnits() != "log10_cfu_g" {
		t.Errorf("attributes not stored: %s/%s/%s/%s", s.Compartment(), s.ID(), s.Name(), s.SubstanceUnits())
	}
	if !s.BoundaryCondition() || s.Constant() || !s.HasOnlySubstanceUnits() {
		t.Error("flags not stored")
	}
}

func TestModelSpecies(t *testing.T) {
	doc := New("m")
	m := doc.Model()

	a := NewSpecies()
	a.SetID("a")
	b := NewSpecies()
	b.SetID("b")
	if err := m.AddSpecies(a); err != nil {
		t.Fatalf("AddSpecies(a) failed: %v", err)
	}
	if err := m.AddSpecies(b); err != nil {
		t.Fatalf("AddSpecies(b) failed: %v", err)
	}

	dup := NewSpecies()
	dup.SetID("a")
	err := m.AddSpecies(dup)
	var ve *errors.ValidationError
	if !stderrors.As(err, &ve) {
		t.Errorf("duplicate id error = %v, want *errors.ValidationError", err)
	}

	species := m.Species()
	if len(species) != 2 || species[0].ID() != "a" || species[1].ID() != "b" {
		t.Fatalf("Species() = %v", species)
	}
	if m.SpeciesByID("b") == nil || m.SpeciesByID("zz") != nil {
		t.Error("SpeciesByID lookup wrong")
	}

	if !m.RemoveSpecies("a") || m.RemoveSpecies("a") {
		t.Error("RemoveSpecies should succeed once")
	}
	if len(m.Species()) != 1 {
		t.Errorf("got %d species after removal, want 1", len(m.Species()))
	}

	reparsed, err := Parse(doc.Serialize())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := reparsed.Model().Species(); len(got) != 1 || got[0].ID() != "b" {
		t.Errorf("reparsed species = %v", got)
	}
}

func TestSpeciesByIDPrefixedDocument(t *testing.T) {
	doc, err := Parse([]byte(`<s:sbml xmlns:s="http://www.sbml.org/sbml/level3/version1/core" level="3" version="1">
  <s:model id="m">
    <s:listOfSpecies>
      <s:species id="plain" compartment="c"/>
      <s:species id="it's" compartment="c"/>
      <s:species id='say "hi" it&apos;s' compartment="c"/>
    </s:listOfSpecies>
  </s:model>
</s:sbml>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	m := doc.Model()
	if got := len(m.Species()); got != 3 {
		t.Fatalf("Species() returned %d, want 3", got)
	}
	for _, id := range []string{"plain", "it's", `say "hi" it's`} {
		s := m.SpeciesByID(id)
		if s == nil || s.ID() != id {
			t.Errorf("SpeciesByID(%q) = %v", id, s)
		}
	}
	if m.SpeciesByID("missing") != nil {
		t.Error("SpeciesByID found a missing id")
	}
}

func TestXPathLiteral(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"s1", "'s1'"},
		{"it's", `"it's"`},
		{`a"b'c`, `concat('a"b', "'", 'c')`},
	}
	for _, tt := range tests {
		if got := xpathLiteral(tt.in); got != tt.want {
			t.Errorf("xpathLiteral(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNonRDFAnnotation(t *testing.T) {
	data := `<sbml xmlns="` + Namespace + `" level="3" version="1"><model><listOfSpecies>
<species id="s"><annotation><rdf:RDF xmlns:rdf="` + RDFNamespace + `"/><x:note xmlns:x="urn:x">keep</x:note></annotation></species>
</listOfSpecies></model></sbml>`
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	s := doc.Model().SpeciesByID("s")

	nodes := s.NonRDFAnnotation()
	if len(nodes) != 1 || nodes[0].Name() != "note" {
		t.Fatalf("NonRDFAnnotation() = %v", nodes)
	}

	s.SetNonRDFAnnotation(xml.NewElement("", "replacement", ""))
	nodes = s.NonRDFAnnotation()
	if len(nodes) != 1 || nodes[0].Name() != "replacement" {
		t.Fatalf("after replace = %v", nodes)
	}
	if s.Element().FindChild("annotation", "").FindChild("RDF", "rdf") == nil {
		t.Error("RDF block dropped on replace")
	}
}

func TestSetNonRDFAnnotationLifecycle(t *testing.T) {
	s := NewSpecies()
	s.SetNonRDFAnnotation()
	if s.Element().FindChild("annotation", "") != nil {
		t.Fatal("empty set should not create an annotation")
	}

	s.SetNonRDFAnnotation(xml.NewElement("", "a", ""), xml.NewElement("", "b", ""))
	if got := len(s.NonRDFAnnotation()); got != 2 {
		t.Fatalf("got %d nodes, want 2", got)
	}

	s.SetNonRDFAnnotation()
	if s.Element().FindChild("annotation", "") != nil {
		t.Error("annotation should be removed once empty")
	}
	if s.NonRDFAnnotation() != nil {
		t.Error("NonRDFAnnotation() should be nil without annotation")
	}
}
