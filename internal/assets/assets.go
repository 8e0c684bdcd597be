// Package assets carries the files embedded into the binary: the JSON Schema
// for the published manifest documents and the templates used by the render
// command.
package assets

import (
	"embed"
	"fmt"
)

//go:embed embedded_schemas
var schemas embed.FS

//go:embed embedded_templates
var templates embed.FS

// ManifestSchema returns the JSON Schema for the current manifest document.
func ManifestSchema() []byte {
	data, err := schemas.ReadFile("embedded_schemas/manifest-v1.json")
	if err != nil {
		panic(fmt.Sprintf("embedded manifest schema missing: %v", err))
	}
	return data
}

// Template returns an embedded template by name, e.g. "manifest-index.md.hbs".
func Template(name string) ([]byte, error) {
	return templates.ReadFile("embedded_templates/" + name)
}
