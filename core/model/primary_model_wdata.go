package model

import (
	"github.com/FocuswithJustin/pmfml/core/numl"
	"github.com/FocuswithJustin/pmfml/core/sbml"
)

// PrimaryModelWData is a primary model document paired with the data
// document it was fitted to. Both are kept by reference and never modified.
type PrimaryModelWData struct {
	modelDocName string
	modelDoc     *sbml.Document
	dataDocName  string
	dataDoc      *numl.Document
}

// NewPrimaryModelWData pairs a model document with its data document. The
// names are the file names the documents are stored under.
func NewPrimaryModelWData(modelDocName string, modelDoc *sbml.Document, dataDocName string, dataDoc *numl.Document) *PrimaryModelWData {
	return &PrimaryModelWData{
		modelDocName: modelDocName,
		modelDoc:     modelDoc,
		dataDocName:  dataDocName,
		dataDoc:      dataDoc,
	}
}

// ModelDocName returns the file name of the model document.
func (p *PrimaryModelWData) ModelDocName() string { return p.modelDocName }

// ModelDoc returns the SBML model document.
func (p *PrimaryModelWData) ModelDoc() *sbml.Document { return p.modelDoc }

// DataDocName returns the file name of the data document.
func (p *PrimaryModelWData) DataDocName() string { return p.dataDocName }

// DataDoc returns the NuML data document.
func (p *PrimaryModelWData) DataDoc() *numl.Document { return p.dataDoc }

// Equal reports whether both pairs hold the same names and the same
// document instances.
func (p *PrimaryModelWData) Equal(other *PrimaryModelWData) bool {
	if p == nil || other == nil {
		return p == other
	}
	return *p == *other
}
