// Package manifest implements the manifest synchronization core: deriving
// stable identifiers from asset filenames, describing release assets, merging
// a release batch into a previously published manifest, and (de)serializing
// the documented JSON shape.
//
// The merge is a pure transformation from (prior manifest, asset batch) to
// the next manifest. All I/O lives with the callers in internal/updater and
// internal/release.
package manifest

import "time"

// SchemaVersion is the schema stamp written into every manifest. Bump only on
// a breaking change to the document shape.
const SchemaVersion = 1

// TimeFormat is the timestamp layout for generatedAt and updatedAt
// (ISO-8601, UTC, second precision).
const TimeFormat = "2006-01-02T15:04:05Z"

// Item is one published asset's record.
//
// Technical fields (filename, url, bytes, sha256, updatedAt) are overwritten
// every time a release touches the item. UI fields (name, shortDescription,
// languageTag) are curated and preserved across updates.
type Item struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	URL              string `json:"url"`
	Bytes            int64  `json:"bytes"`
	SHA256           string `json:"sha256"`
	UpdatedAt        string `json:"updatedAt"`
	Name             string `json:"name"`
	ShortDescription string `json:"shortDescription"`
	LanguageTag      string `json:"languageTag"`
}

// Manifest is the top-level published document.
type Manifest struct {
	SchemaVersion int    `json:"schemaVersion"`
	GeneratedAt   string `json:"generatedAt"`
	ReleaseTag    string `json:"releaseTag"`
	Items         []Item `json:"items"`
}

// New returns an empty manifest stamped with the current schema version.
func New() *Manifest {
	return &Manifest{SchemaVersion: SchemaVersion, Items: []Item{}}
}

// Item returns the item with the given id, or nil.
func (m *Manifest) Item(id string) *Item {
	for i := range m.Items {
		if m.Items[i].ID == id {
			return &m.Items[i]
		}
	}
	return nil
}

// Meta holds the UI-facing fields resolved for an asset.
type Meta struct {
	Name             string
	ShortDescription string
	LanguageTag      string
}

// FormatTime renders t in the manifest timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
