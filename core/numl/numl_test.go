package numl

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/FocuswithJustin/pmfml/core/errors"
)

func TestNewAndRoundTrip(t *testing.T) {
	doc := New()
	doc.AddResultComponent(ResultComponent{ID: "exp1", Name: "Growth at 20 C"})
	doc.AddResultComponent(ResultComponent{ID: "exp2"})

	out := doc.Serialize()
	if !strings.Contains(string(out), `xmlns="`+Namespace+`"`) {
		t.Errorf("namespace missing:\n%s", out)
	}

	reparsed, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := reparsed.ResultComponents()
	want := []ResultComponent{{ID: "exp1", Name: "Growth at 20 C"}, {ID: "exp2"}}
	if len(got) != len(want) {
		t.Fatalf("ResultComponents() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParsePreservesUnknownContent(t *testing.T) {
	data := `<numl xmlns="` + Namespace + `" level="1" version="1"><ontologyTerms><ontologyTerm id="time"/></ontologyTerms><resultComponent id="r"/></numl>`
	doc, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !strings.Contains(string(doc.Serialize()), `<ontologyTerm id="time">`) {
		t.Errorf("ontology terms lost:\n%s", doc.Serialize())
	}
	if len(doc.ResultComponents()) != 1 {
		t.Error("expected one result component")
	}
}

func TestParseRejects(t *testing.T) {
	for _, data := range []string{"<numl", `<sbml level="3" version="1"/>`} {
		_, err := Parse([]byte(data))
		if !stderrors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidInput", data, err)
		}
	}
}
