package manifest

import (
	"path"
	"regexp"
	"strings"
)

var (
	versionSuffixRe = regexp.MustCompile(`[-_]v?\d+(\.\d+)*$`)
	numericTailRe   = regexp.MustCompile(`(\.\d+)+$`)
)

// Derive computes the candidate identifier for a filename: extension and
// trailing version suffixes removed, lowercased, spaces and hyphens folded to
// underscores. Deterministic and total; malformed input normalizes to itself.
//
//	de_base.dict            -> de_base
//	en_base_v2.dict         -> en_base
//	Cyrillic_Translite.json -> cyrillic_translite
func Derive(filename string) string {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	base = versionSuffixRe.ReplaceAllString(base, "")
	base = numericTailRe.ReplaceAllString(base, "")
	base = strings.ToLower(base)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.ReplaceAll(base, "-", "_")
	return base
}
