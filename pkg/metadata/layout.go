package metadata

import (
	"encoding/json"
	"strings"

	"github.com/openkeys/assetmanifest/pkg/logger"
	"github.com/openkeys/assetmanifest/pkg/manifest"
)

// LayoutResolver extracts metadata from a keyboard layout's own JSON body:
// the "name" field and the first line of "description".
type LayoutResolver struct{}

type layoutDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (LayoutResolver) Resolve(id string, content []byte) manifest.Meta {
	var doc layoutDoc
	if err := json.Unmarshal(content, &doc); err != nil {
		logger.Warn("could not parse layout metadata", logger.String("id", id), logger.Err(err))
		return manifest.Meta{}
	}

	short := doc.Description
	if i := strings.IndexByte(short, '\n'); i >= 0 {
		short = short[:i]
	}
	short = strings.TrimSpace(short)

	if doc.Name == "" && short == "" {
		logger.Warn("layout carries no name or description", logger.String("id", id))
	}
	return manifest.Meta{Name: doc.Name, ShortDescription: short}
}
