// Package model provides the PMF (Predictive Microbiology Format) object
// layer over SBML and NuML documents.
//
// # Species
//
// PMFSpecies wraps an SBML species element. Identity fields (compartment,
// id, name, substance units) read and write straight through to the
// element. Three optional descriptive fields live in a PMF metadata block
// inside the species' non-RDF annotation:
//
//	<pmf:metadata>
//	  <dc:source>http://identifiers.org/ncim/<code></dc:source>
//	  <pmmlab:detail>text</pmmlab:detail>
//	  <pmmlab:desc>text</pmmlab:desc>
//	</pmf:metadata>
//
// The block is present if and only if at least one of the three fields is
// set. An empty string means the field is absent.
//
// # Model/data pairs
//
// PrimaryModelWData associates a model document with the NuML document
// holding its observations, each under a display name. It does not check
// that the two documents agree.
package model
