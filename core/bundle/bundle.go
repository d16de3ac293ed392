package bundle

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/FocuswithJustin/pmfml/core/errors"
	"github.com/FocuswithJustin/pmfml/core/model"
	"github.com/FocuswithJustin/pmfml/core/numl"
	"github.com/FocuswithJustin/pmfml/core/sbml"
	"github.com/FocuswithJustin/pmfml/internal/logging"
	"github.com/FocuswithJustin/pmfml/internal/validation"
	"github.com/google/uuid"
	"github.com/ulikunitz/xz"
)

// Injectable functions for testing
var (
	newBundleID = uuid.NewString
	timeNow     = time.Now
)

// CompressionType specifies the compression algorithm for bundle archives.
type CompressionType string

const (
	// CompressionXZ uses XZ/LZMA2 compression (default, best ratio).
	CompressionXZ CompressionType = "xz"
	// CompressionGzip uses gzip compression (stdlib, faster).
	CompressionGzip CompressionType = "gzip"
)

// PackOptions configures bundle packing behavior.
type PackOptions struct {
	// Compression specifies the compression algorithm. Defaults to XZ.
	Compression CompressionType
}

// DefaultPackOptions returns the default packing options (XZ compression).
func DefaultPackOptions() *PackOptions {
	return &PackOptions{
		Compression: CompressionXZ,
	}
}

// Pack writes pair to w as a compressed bundle and returns its manifest.
// The document names become the archive entry names, so they must be plain
// file names and must differ from each other and from the manifest.
func Pack(w io.Writer, pair *model.PrimaryModelWData, opts *PackOptions) (*Manifest, error) {
	if opts == nil {
		opts = DefaultPackOptions()
	}
	if pair == nil || pair.ModelDoc() == nil || pair.DataDoc() == nil {
		return nil, errors.NewValidation("pair", "model and data documents are required")
	}
	if err := checkNames(pair.ModelDocName(), pair.DataDocName()); err != nil {
		return nil, err
	}

	modelData := pair.ModelDoc().Serialize()
	dataData := pair.DataDoc().Serialize()

	manifest := &Manifest{
		BundleVersion: Version,
		ID:            newBundleID(),
		CreatedAt:     timeNow().UTC().Format(time.RFC3339),
		Entries: []*Entry{
			newEntry(RoleModel, pair.ModelDocName(), modelData),
			newEntry(RoleData, pair.DataDocName(), dataData),
		},
	}
	manifestData, err := manifest.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}

	var compressWriter io.WriteCloser
	switch opts.Compression {
	case CompressionGzip:
		compressWriter, err = gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
	case CompressionXZ, "":
		compressWriter, err = xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
	default:
		return nil, errors.NewUnsupported("compression format", string(opts.Compression))
	}

	tarWriter := tar.NewWriter(compressWriter)
	for _, f := range []struct {
		name string
		data []byte
	}{
		{ManifestName, manifestData},
		{pair.ModelDocName(), modelData},
		{pair.DataDocName(), dataData},
	} {
		if err := writeToTar(tarWriter, f.name, f.data); err != nil {
			compressWriter.Close()
			return nil, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	if err := tarWriter.Close(); err != nil {
		compressWriter.Close()
		return nil, fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := compressWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish compression: %w", err)
	}

	logging.Debug("bundle packed",
		"bundle_id", manifest.ID,
		"compression", string(opts.Compression),
		"model", pair.ModelDocName(),
		"data", pair.DataDocName())
	return manifest, nil
}

// PackFile packs pair into a new archive at archivePath.
func PackFile(archivePath string, pair *model.PrimaryModelWData, opts *PackOptions) (*Manifest, error) {
	file, err := os.Create(archivePath)
	if err != nil {
		return nil, errors.NewIO("create", archivePath, err)
	}
	manifest, err := Pack(file, pair, opts)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = errors.NewIO("close", archivePath, closeErr)
	}
	if err != nil {
		os.Remove(archivePath)
		return nil, err
	}
	return manifest, nil
}

func checkNames(modelName, dataName string) error {
	for _, name := range []string{modelName, dataName} {
		if err := validation.ValidateFilename(name); err != nil {
			return &errors.ValidationError{Field: "name", Value: name, Message: err.Error()}
		}
		if name == ManifestName {
			return errors.NewValidation("name", fmt.Sprintf("%q is reserved for the manifest", ManifestName))
		}
	}
	if modelName == dataName {
		return errors.NewValidation("name", fmt.Sprintf("model and data documents share the name %q", modelName))
	}
	return nil
}

// DetectCompression detects the compression of a bundle from its first bytes.
func DetectCompression(magic []byte) (CompressionType, error) {
	if len(magic) < 2 {
		return "", errors.NewValidation("archive", "file too small to detect compression")
	}

	// gzip: 1f 8b
	if magic[0] == 0x1f && magic[1] == 0x8b {
		return CompressionGzip, nil
	}

	// xz: fd 37 7a 58 5a 00
	if len(magic) >= 6 && magic[0] == 0xfd && magic[1] == 0x37 && magic[2] == 0x7a &&
		magic[3] == 0x58 && magic[4] == 0x5a && magic[5] == 0x00 {
		return CompressionXZ, nil
	}

	return "", errors.NewUnsupported("compression format", "unknown magic bytes")
}

// contents is a verified bundle: the manifest as parsed and as archived,
// and the raw bytes of each document entry keyed by role.
type contents struct {
	manifest    *Manifest
	manifestRaw []byte
	files       map[Role][]byte
}

// read decompresses and untars r, then checks every manifest entry against
// the archived bytes.
func read(r io.Reader) (*contents, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(6)
	compression, err := DetectCompression(magic)
	if err != nil {
		return nil, err
	}

	var decompressReader io.Reader
	switch compression {
	case CompressionGzip:
		gzReader, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		decompressReader = gzReader
	case CompressionXZ:
		xzReader, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		decompressReader = xzReader
	}

	tarReader := tar.NewReader(decompressReader)
	files := make(map[string][]byte)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar header: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := validation.ValidateFilename(header.Name); err != nil {
			logging.SecurityEvent("unsafe bundle entry skipped", "bundle", "name", header.Name, "error", err)
			continue
		}
		if header.Size > validation.MaxFileSize {
			return nil, errors.NewValidation(header.Name, "entry exceeds maximum size")
		}
		data, err := io.ReadAll(io.LimitReader(tarReader, validation.MaxFileSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}
		files[header.Name] = data
	}

	manifestData, ok := files[ManifestName]
	if !ok {
		return nil, errors.NewNotFound("bundle entry", ManifestName)
	}
	manifest, err := ParseManifest(manifestData)
	if err != nil {
		return nil, err
	}

	c := &contents{manifest: manifest, manifestRaw: manifestData, files: make(map[Role][]byte)}
	for _, role := range []Role{RoleModel, RoleData} {
		entry := manifest.Entry(role)
		if entry == nil {
			return nil, errors.NewNotFound("manifest entry", string(role))
		}
		data, ok := files[entry.Name]
		if !ok {
			return nil, errors.NewNotFound("bundle entry", entry.Name)
		}
		if err := entry.verify(data); err != nil {
			return nil, err
		}
		c.files[role] = data
	}
	return c, nil
}

// Unpack reads a bundle produced by Pack, verifies its digests and parses
// both documents.
func Unpack(r io.Reader) (*model.PrimaryModelWData, *Manifest, error) {
	c, err := read(r)
	if err != nil {
		return nil, nil, err
	}

	modelEntry := c.manifest.Entry(RoleModel)
	modelDoc, err := sbml.Parse(c.files[RoleModel])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "bundle entry %s", modelEntry.Name)
	}
	dataEntry := c.manifest.Entry(RoleData)
	dataDoc, err := numl.Parse(c.files[RoleData])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "bundle entry %s", dataEntry.Name)
	}

	logging.Debug("bundle unpacked", "bundle_id", c.manifest.ID)
	pair := model.NewPrimaryModelWData(modelEntry.Name, modelDoc, dataEntry.Name, dataDoc)
	return pair, c.manifest, nil
}

// UnpackFile unpacks the bundle at archivePath.
func UnpackFile(archivePath string) (*model.PrimaryModelWData, *Manifest, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, errors.NewIO("open", archivePath, err)
	}
	defer file.Close()
	return Unpack(file)
}

// Extract verifies the bundle at archivePath and writes the archived bytes
// of the manifest, the model and the data document, in that order, into
// destDir.
func Extract(archivePath, destDir string) (*Manifest, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.NewIO("open", archivePath, err)
	}
	defer file.Close()

	c, err := read(file)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, errors.NewIO("create directory", destDir, err)
	}

	for _, f := range []struct {
		name string
		data []byte
	}{
		{ManifestName, c.manifestRaw},
		{c.manifest.Entry(RoleModel).Name, c.files[RoleModel]},
		{c.manifest.Entry(RoleData).Name, c.files[RoleData]},
	} {
		rel, err := validation.SanitizePath(destDir, f.name)
		if err != nil {
			return nil, &errors.ValidationError{Field: "name", Value: f.name, Message: err.Error()}
		}
		path := filepath.Join(destDir, rel)
		if err := os.WriteFile(path, f.data, 0644); err != nil {
			return nil, errors.NewIO("write", path, err)
		}
	}
	return c.manifest, nil
}

// writeToTar writes a file to the tar archive.
func writeToTar(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: timeNow(),
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	_, err := tw.Write(data)
	return err
}
