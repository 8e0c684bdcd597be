package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openkeys/assetmanifest/pkg/safeio"
)

// ErrSchemaVersion reports a manifest whose schemaVersion is not the one this
// build supports. Callers decide whether to stop or migrate; it is never
// silently coerced.
var ErrSchemaVersion = errors.New("unsupported manifest schema version")

// Decode parses the documented JSON shape. Item order is the document order.
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, m.SchemaVersion, SchemaVersion)
	}
	if m.Items == nil {
		m.Items = []Item{}
	}
	return &m, nil
}

// Encode renders the manifest as two-space-indented JSON with a trailing
// newline, items in slice order.
func Encode(m *Manifest) ([]byte, error) {
	out := *m
	if out.Items == nil {
		out.Items = []Item{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// Load reads a manifest file. A missing or blank file yields a fresh empty
// manifest so first runs need no bootstrap step.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return New(), nil
	}
	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Save writes the manifest atomically.
func Save(path string, m *Manifest) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := safeio.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
