package site

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/docsmith/docsmith/internal/nav"
)

const fingerprintManifest = "fingerprints.json"

// Fingerprints is the manifest persisted between builds so unchanged pages
// can skip the render stage. Nav is a signature over the navigation index:
// every page embeds the menu, so a nav change invalidates all skips.
type Fingerprints struct {
	Nav   string            `json:"nav"`
	Pages map[string]string `json:"pages"`
}

// NewFingerprints returns an empty manifest.
func NewFingerprints() Fingerprints {
	return Fingerprints{Pages: map[string]string{}}
}

// LoadFingerprints reads the manifest from a previous build under outputDir.
// A missing or unreadable manifest is not an error; it just disables skips.
func LoadFingerprints(outputDir string) Fingerprints {
	data, err := os.ReadFile(filepath.Join(outputDir, ".docsmith", fingerprintManifest))
	if err != nil {
		return NewFingerprints()
	}
	var fp Fingerprints
	if err := json.Unmarshal(data, &fp); err != nil || fp.Pages == nil {
		return NewFingerprints()
	}
	return fp
}

// Persist writes the manifest under outputDir for the next build.
func (fp Fingerprints) Persist(outputDir string) error {
	dir := filepath.Join(outputDir, ".docsmith")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fp, "", "  ")
	if err != nil {
		return err
	}
	// #nosec G306 -- manifest is derived public content.
	return os.WriteFile(filepath.Join(dir, fingerprintManifest), data, 0o644)
}

// NavSignature hashes the ordered navigation entries.
func NavSignature(idx nav.Index) string {
	h := sha256.New()
	for _, e := range idx.Entries {
		h.Write([]byte(e.Title))
		h.Write([]byte{0})
		h.Write([]byte(e.Path))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
