package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/openkeys/assetmanifest/pkg/logger"
	"github.com/openkeys/assetmanifest/pkg/manifest"
)

// Entry is one curated metadata record in the lookup table.
type Entry struct {
	Name             string `json:"name" yaml:"name"`
	ShortDescription string `json:"shortDescription" yaml:"shortDescription"`
	LanguageTag      string `json:"languageTag" yaml:"languageTag"`
}

// Table maps stable ids to curated metadata.
type Table map[string]Entry

// LoadTable reads a lookup table from a JSON or YAML file, selected by
// extension. A missing file yields an empty table: the resolver then falls
// back to derived names for everything.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("metadata table not found, using fallbacks", logger.String("path", path))
			return Table{}, nil
		}
		return nil, fmt.Errorf("reading metadata table %s: %w", path, err)
	}

	var t Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &t)
	default:
		err = json.Unmarshal(data, &t)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing metadata table %s: %w", path, err)
	}
	if t == nil {
		t = Table{}
	}

	for id, e := range t {
		if e.LanguageTag == "" {
			continue
		}
		if _, err := language.Parse(e.LanguageTag); err != nil {
			logger.Warn("malformed language tag in metadata table",
				logger.String("id", id), logger.String("languageTag", e.LanguageTag))
		}
	}
	return t, nil
}

// LookupResolver resolves dictionary metadata from a curated table keyed by
// stable id. Misses fall back to a readable transform of the id.
type LookupResolver struct {
	Table Table
}

func (r LookupResolver) Resolve(id string, _ []byte) manifest.Meta {
	if e, ok := r.Table[id]; ok {
		return manifest.Meta{
			Name:             e.Name,
			ShortDescription: e.ShortDescription,
			LanguageTag:      e.LanguageTag,
		}
	}
	logger.Warn("missing dictionary metadata, add it to the metadata table", logger.String("id", id))
	return manifest.Meta{Name: ReadableName(id)}
}
