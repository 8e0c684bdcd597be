// Package metadata resolves the UI-facing fields (display name, short
// description, language tag) for release assets. Dictionaries use a curated
// lookup table; keyboard layouts carry their metadata in their own JSON body.
//
// Resolvers are total: malformed content or a missing table entry produces
// deterministic fallback values and a warning, never an error, so a single
// bad asset cannot stall a manifest update.
package metadata

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openkeys/assetmanifest/pkg/manifest"
)

// Resolver produces UI metadata for an asset identified by its stable id.
// content is the asset's raw bytes; resolvers that do not inspect content
// ignore it.
type Resolver interface {
	Resolve(id string, content []byte) manifest.Meta
}

// ForClass returns the resolver for an asset class.
func ForClass(class Class, table Table) Resolver {
	if class == ClassLayout {
		return LayoutResolver{}
	}
	return LookupResolver{Table: table}
}

// Class tags the two asset kinds the manifests describe.
type Class string

const (
	ClassDictionary Class = "dictionary"
	ClassLayout     Class = "layout"
)

// Classify maps an asset filename to its class by extension. The second
// return is false for files that belong in neither manifest.
func Classify(filename string) (Class, bool) {
	switch {
	case strings.HasSuffix(filename, ".dict"):
		return ClassDictionary, true
	case strings.HasSuffix(filename, ".json"):
		return ClassLayout, true
	default:
		return "", false
	}
}

// ReadableName derives a fallback display name from an id:
// "de_base" -> "De Base".
func ReadableName(id string) string {
	title := cases.Title(language.Und)
	words := strings.Split(id, "_")
	for i, w := range words {
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}
