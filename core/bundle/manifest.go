// Package bundle packs a PMF model/data pair into a single compressed
// archive and reads it back. An archive is a tar stream holding
// manifest.json, the SBML model document and the NuML data document, each
// document recorded in the manifest with its SHA-256 and BLAKE3 digests.
package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/FocuswithJustin/pmfml/core/errors"
	"github.com/zeebo/blake3"
)

// Version is the current bundle format version.
const Version = "1.0.0"

// ManifestName is the archive path of the manifest.
const ManifestName = "manifest.json"

// Role says which side of the pair an entry holds.
type Role string

const (
	RoleModel Role = "model"
	RoleData  Role = "data"
)

// Manifest describes a bundle (manifest.json).
type Manifest struct {
	BundleVersion string   `json:"bundle_version"`
	ID            string   `json:"id"`
	CreatedAt     string   `json:"created_at"`
	Entries       []*Entry `json:"entries"`
}

// Entry describes one document stored in a bundle.
type Entry struct {
	Role      Role   `json:"role"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
	BLAKE3    string `json:"blake3"`
}

// Entry returns the entry for role, or nil.
func (m *Manifest) Entry(role Role) *Entry {
	for _, e := range m.Entries {
		if e.Role == role {
			return e
		}
	}
	return nil
}

// ToJSON serializes the manifest to JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest parses a manifest from JSON.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &errors.ParseError{Format: "manifest", Path: ManifestName, Message: err.Error()}
	}
	return &m, nil
}

func newEntry(role Role, name string, data []byte) *Entry {
	sha, b3 := digests(data)
	return &Entry{
		Role:      role,
		Name:      name,
		SizeBytes: int64(len(data)),
		SHA256:    sha,
		BLAKE3:    b3,
	}
}

// verify checks data against the recorded size and digests.
func (e *Entry) verify(data []byte) error {
	if int64(len(data)) != e.SizeBytes {
		return &errors.ValidationError{
			Field:   e.Name,
			Message: "size does not match manifest",
		}
	}
	sha, b3 := digests(data)
	if sha != e.SHA256 {
		return &errors.ValidationError{Field: e.Name, Value: sha, Message: "sha256 does not match manifest"}
	}
	if b3 != e.BLAKE3 {
		return &errors.ValidationError{Field: e.Name, Value: b3, Message: "blake3 does not match manifest"}
	}
	return nil
}

func digests(data []byte) (sha string, b3 string) {
	s := sha256.Sum256(data)
	b := blake3.Sum256(data)
	return hex.EncodeToString(s[:]), hex.EncodeToString(b[:])
}
