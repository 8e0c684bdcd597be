// Package schema validates manifest documents against the embedded JSON
// Schema and the structural invariants the schema cannot express.
package schema

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/openkeys/assetmanifest/internal/assets"
	"github.com/openkeys/assetmanifest/pkg/manifest"
)

// ValidationError is a single validation finding.
type ValidationError struct {
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Result holds the outcome of validating one document.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

var (
	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
)

func manifestSchema() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		loader := gojsonschema.NewBytesLoader(assets.ManifestSchema())
		compiled, compileErr = gojsonschema.NewSchema(loader)
	})
	return compiled, compileErr
}

// ValidateBytes checks raw manifest JSON against the embedded schema.
func ValidateBytes(data []byte) (*Result, error) {
	s, err := manifestSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling manifest schema: %w", err)
	}

	out, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validating manifest: %w", err)
	}

	res := &Result{Valid: out.Valid()}
	for _, verr := range out.Errors() {
		field := verr.Field()
		if field == "" {
			field = "root"
		}
		res.Errors = append(res.Errors, ValidationError{Path: field, Message: verr.Description()})
	}
	return res, nil
}

// ValidateManifest checks a decoded manifest: schema conformance first, then
// the invariants (unique ids) on top.
func ValidateManifest(m *manifest.Manifest) (*Result, error) {
	data, err := manifest.Encode(m)
	if err != nil {
		return nil, err
	}
	res, err := ValidateBytes(data)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(m.Items))
	for _, it := range m.Items {
		if seen[it.ID] {
			res.Valid = false
			res.Errors = append(res.Errors, ValidationError{
				Path:    "items",
				Message: fmt.Sprintf("duplicate id %q", it.ID),
			})
		}
		seen[it.ID] = true
	}
	return res, nil
}
