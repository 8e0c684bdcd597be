// Package render turns a manifest into the human-readable index page
// published next to it.
package render

import (
	"fmt"

	"github.com/aymerick/raymond"

	"github.com/openkeys/assetmanifest/internal/assets"
	"github.com/openkeys/assetmanifest/pkg/manifest"
)

// IndexTemplate is the embedded template used when the caller supplies none.
const IndexTemplate = "manifest-index.md.hbs"

// Index renders the markdown index for a manifest.
func Index(m *manifest.Manifest, title string) (string, error) {
	tpl, err := assets.Template(IndexTemplate)
	if err != nil {
		return "", fmt.Errorf("loading index template: %w", err)
	}
	return Render(string(tpl), m, title)
}

// Render applies a handlebars template to a manifest.
func Render(tpl string, m *manifest.Manifest, title string) (string, error) {
	items := make([]map[string]interface{}, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, map[string]interface{}{
			"id":               it.ID,
			"filename":         it.Filename,
			"url":              it.URL,
			"bytes":            it.Bytes,
			"sha256":           it.SHA256,
			"updatedAt":        it.UpdatedAt,
			"name":             it.Name,
			"shortDescription": it.ShortDescription,
			"languageTag":      it.LanguageTag,
		})
	}
	ctx := map[string]interface{}{
		"title":       title,
		"releaseTag":  m.ReleaseTag,
		"generatedAt": m.GeneratedAt,
		"items":       items,
	}

	out, err := raymond.Render(tpl, ctx)
	if err != nil {
		return "", fmt.Errorf("rendering manifest index: %w", err)
	}
	return out, nil
}
