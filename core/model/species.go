package model

import (
	"fmt"

	"github.com/FocuswithJustin/pmfml/core/sbml"
)

// PMFSpecies is an SBML species carrying PMF metadata.
type PMFSpecies struct {
	species *sbml.Species
	meta    Metadata
}

// NewPMFSpecies reads the PMF metadata of an existing species element.
func NewPMFSpecies(s *sbml.Species) *PMFSpecies {
	return &PMFSpecies{species: s, meta: readMetadata(s)}
}

// BuildPMFSpecies creates a new species element. Boundary condition,
// constant and hasOnlySubstanceUnits are always false for PMF species.
func BuildPMFSpecies(compartment, id, name, substanceUnits string, meta Metadata) *PMFSpecies {
	s := sbml.NewSpecies()
	s.SetCompartment(compartment)
	s.SetID(id)
	s.SetName(name)
	s.SetSubstanceUnits(substanceUnits)
	s.SetBoundaryCondition(false)
	s.SetHasOnlySubstanceUnits(false)
	s.SetConstant(false)

	if !meta.IsEmpty() {
		writeMetadata(s, meta)
	}
	return &PMFSpecies{species: s, meta: meta}
}

// Species returns the wrapped SBML species.
func (p *PMFSpecies) Species() *sbml.Species { return p.species }

// Metadata returns a copy of the optional fields.
func (p *PMFSpecies) Metadata() Metadata { return p.meta }

// Compartment returns the species' compartment id.
func (p *PMFSpecies) Compartment() string { return p.species.Compartment() }

// ID returns the species id.
func (p *PMFSpecies) ID() string { return p.species.ID() }

// Name returns the species name.
func (p *PMFSpecies) Name() string { return p.species.Name() }

// Units returns the substance units id.
func (p *PMFSpecies) Units() string { return p.species.SubstanceUnits() }

// SetCompartment sets the compartment id on the underlying element.
func (p *PMFSpecies) SetCompartment(compartment string) { p.species.SetCompartment(compartment) }

// SetID sets the species id on the underlying element.
func (p *PMFSpecies) SetID(id string) { p.species.SetID(id) }

// SetName sets the species name on the underlying element.
func (p *PMFSpecies) SetName(name string) { p.species.SetName(name) }

// SetUnits sets the substance units id on the underlying element.
func (p *PMFSpecies) SetUnits(units string) { p.species.SetSubstanceUnits(units) }

// CombaseCode returns the CoMBase code, or "" when unset.
func (p *PMFSpecies) CombaseCode() string { return p.meta.CombaseCode }

// Detail returns the detail text, or "" when unset.
func (p *PMFSpecies) Detail() string { return p.meta.Detail }

// Description returns the description, or "" when unset.
func (p *PMFSpecies) Description() string { return p.meta.Description }

// IsSetCombaseCode reports whether a CoMBase code is set.
func (p *PMFSpecies) IsSetCombaseCode() bool { return p.meta.CombaseCode != "" }

// IsSetDetail reports whether a detail text is set.
func (p *PMFSpecies) IsSetDetail() bool { return p.meta.Detail != "" }

// IsSetDescription reports whether a description is set.
func (p *PMFSpecies) IsSetDescription() bool { return p.meta.Description != "" }

// SetCombaseCode sets the CoMBase code. Empty input is ignored.
func (p *PMFSpecies) SetCombaseCode(code string) {
	if setIfNonEmpty(&p.meta.CombaseCode, code) {
		writeMetadata(p.species, p.meta)
	}
}

// SetDetail sets the detail text. Empty input is ignored.
func (p *PMFSpecies) SetDetail(detail string) {
	if setIfNonEmpty(&p.meta.Detail, detail) {
		writeMetadata(p.species, p.meta)
	}
}

// SetDescription sets the description. Empty input is ignored.
func (p *PMFSpecies) SetDescription(description string) {
	if setIfNonEmpty(&p.meta.Description, description) {
		writeMetadata(p.species, p.meta)
	}
}

// setIfNonEmpty stores v in dst unless v is empty, so a blank value never
// erases metadata that is already set. It reports whether dst was written.
func setIfNonEmpty(dst *string, v string) bool {
	if v == "" {
		return false
	}
	*dst = v
	return true
}

// Equal compares compartment, id, name, substance units and the metadata
// fields. The wrapped elements themselves are not compared.
func (p *PMFSpecies) Equal(other *PMFSpecies) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.Compartment() == other.Compartment() &&
		p.ID() == other.ID() &&
		p.Name() == other.Name() &&
		p.Units() == other.Units() &&
		p.meta == other.meta
}

func (p *PMFSpecies) String() string {
	return fmt.Sprintf("PMFSpecies [compartment=%s, id=%s, name=%s, substanceUnits=%s]",
		p.Compartment(), p.ID(), p.Name(), p.Units())
}
