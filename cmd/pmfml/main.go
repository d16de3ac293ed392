// Command pmfml is the CLI tool for PMF-ML documents.
// It edits annotated species in SBML models and packs model/data pairs into
// verifiable bundles.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/pmfml/core/bundle"
	"github.com/FocuswithJustin/pmfml/core/errors"
	"github.com/FocuswithJustin/pmfml/core/model"
	"github.com/FocuswithJustin/pmfml/core/numl"
	"github.com/FocuswithJustin/pmfml/core/sbml"
	"github.com/FocuswithJustin/pmfml/core/xml"
	"github.com/FocuswithJustin/pmfml/internal/logging"
)

const version = "0.1.0"

// stdout receives command results. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// CLI defines the command-line interface for pmfml.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level" enum:"debug,info,warn,error" default:"warn" env:"PMFML_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" enum:"text,json" default:"text" env:"PMFML_LOG_FORMAT"`

	// Command groups (noun-first organization)
	Species SpeciesGroup `cmd:"" help:"Annotated species in SBML models"`
	Pair    PairGroup    `cmd:"" help:"Model/data pair bundles"`
	Version VersionCmd   `cmd:"" help:"Print version information"`
}

// SpeciesGroup contains species operations.
type SpeciesGroup struct {
	List     SpeciesListCmd     `cmd:"" help:"List species and their PMF metadata"`
	Add      SpeciesAddCmd      `cmd:"" help:"Add an annotated species to a model"`
	Annotate SpeciesAnnotateCmd `cmd:"" help:"Set PMF metadata on an existing species"`
}

// PairGroup contains model/data pair operations.
type PairGroup struct {
	Pack    PairPackCmd    `cmd:"" help:"Pack an SBML model and a NuML data document into a bundle"`
	Inspect PairInspectCmd `cmd:"" help:"Verify a bundle and summarize its contents"`
	Extract PairExtractCmd `cmd:"" help:"Verify a bundle and write its documents to a directory"`
}

// SpeciesListCmd lists the species of a model.
type SpeciesListCmd struct {
	SBML string `arg:"" name:"sbml" help:"Path to SBML model" type:"existingfile"`
}

func (c *SpeciesListCmd) Run(ctx context.Context) error {
	_, m, err := loadModel(c.SBML)
	if err != nil {
		return err
	}

	species := m.Species()
	logging.DebugContext(ctx, "species loaded", "path", c.SBML, "count", len(species))
	if len(species) == 0 {
		fmt.Fprintf(stdout, "No species in %s\n", c.SBML)
		return nil
	}
	for _, s := range species {
		ps := model.NewPMFSpecies(s)
		fmt.Fprintln(stdout, ps)
		if ps.IsSetCombaseCode() {
			fmt.Fprintf(stdout, "  CombaseCode: %s\n", ps.CombaseCode())
		}
		if ps.IsSetDetail() {
			fmt.Fprintf(stdout, "  Detail: %s\n", ps.Detail())
		}
		if ps.IsSetDescription() {
			fmt.Fprintf(stdout, "  Description: %s\n", ps.Description())
		}
	}
	return nil
}

// SpeciesAddCmd adds a new annotated species to a model.
type SpeciesAddCmd struct {
	SBML        string `arg:"" name:"sbml" help:"Path to SBML model" type:"existingfile"`
	Compartment string `required:"" help:"Compartment id"`
	ID          string `name:"id" required:"" help:"Species id"`
	Name        string `help:"Species name"`
	Units       string `help:"Substance units id"`
	CombaseCode string `name:"combase-code" help:"ComBase code for dc:source"`
	Detail      string `help:"Free-text detail"`
	Description string `help:"Free-text description"`
	Out         string `short:"o" help:"Output path (default: overwrite input)" type:"path"`
	Pretty      bool   `help:"Indent the written model"`
}

func (c *SpeciesAddCmd) Run(ctx context.Context) error {
	doc, m, err := loadModel(c.SBML)
	if err != nil {
		return err
	}

	ps := model.BuildPMFSpecies(c.Compartment, c.ID, c.Name, c.Units, model.Metadata{
		CombaseCode: c.CombaseCode,
		Detail:      c.Detail,
		Description: c.Description,
	})
	if err := m.AddSpecies(ps.Species()); err != nil {
		return err
	}

	out := outputPath(c.SBML, c.Out)
	if err := writeModel(out, doc, c.Pretty); err != nil {
		return err
	}
	logging.InfoContext(ctx, "species added", "id", c.ID, "path", out)
	fmt.Fprintf(stdout, "Added: %s\n", ps)
	return nil
}

// SpeciesAnnotateCmd sets PMF metadata fields on an existing species.
// Empty flags leave the current value in place.
type SpeciesAnnotateCmd struct {
	SBML        string `arg:"" name:"sbml" help:"Path to SBML model" type:"existingfile"`
	ID          string `name:"id" required:"" help:"Species id"`
	CombaseCode string `name:"combase-code" help:"ComBase code for dc:source"`
	Detail      string `help:"Free-text detail"`
	Description string `help:"Free-text description"`
	Out         string `short:"o" help:"Output path (default: overwrite input)" type:"path"`
	Pretty      bool   `help:"Indent the written model"`
}

func (c *SpeciesAnnotateCmd) Run(ctx context.Context) error {
	if c.CombaseCode == "" && c.Detail == "" && c.Description == "" {
		return errors.NewValidation("annotation", "set at least one of --combase-code, --detail, --description")
	}

	doc, m, err := loadModel(c.SBML)
	if err != nil {
		return err
	}
	s := m.SpeciesByID(c.ID)
	if s == nil {
		return errors.NewNotFound("species", c.ID)
	}

	ps := model.NewPMFSpecies(s)
	ps.SetCombaseCode(c.CombaseCode)
	ps.SetDetail(c.Detail)
	ps.SetDescription(c.Description)

	out := outputPath(c.SBML, c.Out)
	if err := writeModel(out, doc, c.Pretty); err != nil {
		return err
	}
	logging.InfoContext(ctx, "species annotated", "id", c.ID, "path", out)
	fmt.Fprintf(stdout, "Annotated: %s\n", ps)
	return nil
}

// PairPackCmd packs a model and its data into a bundle.
type PairPackCmd struct {
	ModelDoc    string `name:"model-doc" required:"" help:"Path to SBML model document" type:"existingfile"`
	DataDoc     string `name:"data-doc" required:"" help:"Path to NuML data document" type:"existingfile"`
	Out         string `short:"o" required:"" help:"Output bundle path" type:"path"`
	Compression string `help:"Compression format" enum:"xz,gzip" default:"xz"`
}

func (c *PairPackCmd) Run(ctx context.Context) error {
	modelDoc, _, err := loadModel(c.ModelDoc)
	if err != nil {
		return err
	}
	raw, err := readFile(c.DataDoc)
	if err != nil {
		return err
	}
	dataDoc, err := numl.Parse(raw)
	if err != nil {
		return errors.Wrapf(err, "reading %s", c.DataDoc)
	}

	pair := model.NewPrimaryModelWData(filepath.Base(c.ModelDoc), modelDoc, filepath.Base(c.DataDoc), dataDoc)
	manifest, err := bundle.PackFile(c.Out, pair, &bundle.PackOptions{
		Compression: bundle.CompressionType(c.Compression),
	})
	if err != nil {
		return fmt.Errorf("failed to pack bundle: %w", err)
	}

	logging.InfoContext(ctx, "bundle written", "path", c.Out, "bundle_id", manifest.ID)
	fmt.Fprintf(stdout, "Created: %s\n", c.Out)
	printManifest(manifest)
	return nil
}

// PairInspectCmd verifies a bundle and prints its manifest and a summary of
// both documents.
type PairInspectCmd struct {
	Archive string `arg:"" help:"Path to bundle" type:"existingfile"`
}

func (c *PairInspectCmd) Run(ctx context.Context) error {
	pair, manifest, err := bundle.UnpackFile(c.Archive)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}
	logging.DebugContext(ctx, "bundle verified", "path", c.Archive, "bundle_id", manifest.ID)

	fmt.Fprintf(stdout, "Bundle: %s\n", c.Archive)
	printManifest(manifest)

	species := 0
	if m := pair.ModelDoc().Model(); m != nil {
		species = len(m.Species())
	}
	fmt.Fprintf(stdout, "Model %s: %d species\n", pair.ModelDocName(), species)
	fmt.Fprintf(stdout, "Data %s: %d result components\n", pair.DataDocName(), len(pair.DataDoc().ResultComponents()))
	return nil
}

// PairExtractCmd writes the documents of a bundle to a directory.
type PairExtractCmd struct {
	Archive string `arg:"" help:"Path to bundle" type:"existingfile"`
	Dir     string `short:"d" required:"" help:"Destination directory" type:"path"`
}

func (c *PairExtractCmd) Run(ctx context.Context) error {
	manifest, err := bundle.Extract(c.Archive, c.Dir)
	if err != nil {
		return fmt.Errorf("failed to extract bundle: %w", err)
	}
	logging.InfoContext(ctx, "bundle extracted", "path", c.Archive, "dir", c.Dir)

	fmt.Fprintf(stdout, "Extracted to: %s\n", c.Dir)
	for _, e := range manifest.Entries {
		fmt.Fprintf(stdout, "  %s\n", filepath.Join(c.Dir, e.Name))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "pmfml version %s\n", version)
	return nil
}

func printManifest(m *bundle.Manifest) {
	fmt.Fprintf(stdout, "  Bundle ID: %s\n", m.ID)
	fmt.Fprintf(stdout, "  Created: %s\n", m.CreatedAt)
	for _, e := range m.Entries {
		fmt.Fprintf(stdout, "  %s: %s (%d bytes)\n", e.Role, e.Name, e.SizeBytes)
		fmt.Fprintf(stdout, "    SHA-256: %s\n", e.SHA256)
		fmt.Fprintf(stdout, "    BLAKE3: %s\n", e.BLAKE3)
	}
}

func loadModel(path string) (*sbml.Document, *sbml.Model, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := sbml.Parse(raw)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", path)
	}
	m := doc.Model()
	if m == nil {
		return nil, nil, errors.NewNotFound("model", path)
	}
	return doc, m, nil
}

// writeModel writes doc to path, indented when pretty is set.
func writeModel(path string, doc *sbml.Document, pretty bool) error {
	data := doc.Serialize()
	if pretty {
		formatted, err := xml.Format(data, xml.FormatOptions{})
		if err != nil {
			return errors.Wrapf(err, "formatting %s", path)
		}
		data = formatted
	}
	return writeFile(path, data)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

func outputPath(in, out string) string {
	if out != "" {
		return out
	}
	return in
}

func configureLogging(level, format string) error {
	l, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := logging.ParseFormat(format)
	if err != nil {
		return err
	}
	logging.InitLogger(l, f)
	return nil
}

func run(kctx *kong.Context) error {
	if err := configureLogging(CLI.LogLevel, CLI.LogFormat); err != nil {
		return err
	}
	ctx := logging.WithCommand(context.Background(), kctx.Command())
	kctx.BindTo(ctx, (*context.Context)(nil))
	return kctx.Run()
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pmfml"),
		kong.Description("PMF-ML - predictive microbiology model documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := run(ctx)
	ctx.FatalIfErrorf(err)
}
