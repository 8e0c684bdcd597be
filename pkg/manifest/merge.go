package manifest

import (
	"errors"
	"fmt"
	"time"

	"github.com/openkeys/assetmanifest/pkg/logger"
)

// ErrAmbiguousID reports that a candidate id matched two distinct existing
// items. Resolving which of them the new asset belongs to needs a human, so
// the merge refuses to guess.
var ErrAmbiguousID = errors.New("candidate id matches multiple existing items")

// ErrDuplicateID reports a duplicate id in a merge result. This is an
// invariant violation, never an expected condition.
var ErrDuplicateID = errors.New("duplicate id in merged manifest")

// Merge combines the prior manifest with a release batch and returns the next
// manifest state. The prior manifest is not modified.
//
// Items already published stay in their prior order; items new in this batch
// are appended in batch order. The merge never deletes: prior items absent
// from the batch are copied through unchanged. Re-merging the same batch is
// idempotent up to generatedAt.
func Merge(prior *Manifest, releaseTag string, assets []Asset, now time.Time) (*Manifest, error) {
	if prior == nil {
		prior = New()
	}

	items := make([]Item, len(prior.Items))
	copy(items, prior.Items)

	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.ID] = i
	}

	filenames := make([]string, len(assets))
	for i, a := range assets {
		filenames[i] = a.Filename
	}
	ids, err := AssignIDs(prior, filenames)
	if err != nil {
		return nil, err
	}

	stamp := FormatTime(now)

	for i, asset := range assets {
		id := ids[i]

		if pos, ok := index[id]; ok {
			it := &items[pos]
			logger.Debug("updating item", logger.String("id", id), logger.String("releaseTag", releaseTag))
			it.Filename = asset.Filename
			it.URL = asset.URL
			it.Bytes = asset.Bytes
			it.SHA256 = asset.SHA256
			it.UpdatedAt = stamp
			// Resolver output never clobbers curated UI fields. Fill only
			// the ones that are currently empty.
			if it.Name == "" {
				it.Name = asset.Meta.Name
			}
			if it.ShortDescription == "" {
				it.ShortDescription = asset.Meta.ShortDescription
			}
			if it.LanguageTag == "" {
				it.LanguageTag = asset.Meta.LanguageTag
			}
			continue
		}

		logger.Debug("adding item", logger.String("id", id), logger.String("releaseTag", releaseTag))
		items = append(items, Item{
			ID:               id,
			Filename:         asset.Filename,
			URL:              asset.URL,
			Bytes:            asset.Bytes,
			SHA256:           asset.SHA256,
			UpdatedAt:        stamp,
			Name:             asset.Meta.Name,
			ShortDescription: asset.Meta.ShortDescription,
			LanguageTag:      asset.Meta.LanguageTag,
		})
		index[id] = len(items) - 1
	}

	next := &Manifest{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   stamp,
		ReleaseTag:    releaseTag,
		Items:         items,
	}
	if err := checkUnique(next); err != nil {
		return nil, err
	}
	return next, nil
}

// AssignIDs computes the final ids a batch of filenames would receive against
// the prior manifest: preservation first, then deterministic numeric
// suffixing for same-batch collisions. The result is what Merge will store,
// so callers can use it as the metadata lookup key.
func AssignIDs(prior *Manifest, filenames []string) ([]string, error) {
	if prior == nil {
		prior = New()
	}

	priorIDs := make(map[string]bool, len(prior.Items))
	for _, it := range prior.Items {
		priorIDs[it.ID] = true
	}

	assigned := make(map[string]bool, len(filenames))
	out := make([]string, 0, len(filenames))
	for _, filename := range filenames {
		id, err := resolveID(prior, filename)
		if err != nil {
			return nil, err
		}

		// Same-batch collision: suffix until the id is free both in this
		// batch and in the prior manifest.
		if assigned[id] {
			base := id
			for n := 1; ; n++ {
				candidate := fmt.Sprintf("%s_%d", base, n)
				if !assigned[candidate] && !priorIDs[candidate] {
					id = candidate
					break
				}
			}
		}
		assigned[id] = true
		out = append(out, id)
	}
	return out, nil
}

// resolveID computes the stable id for an asset filename against the prior
// manifest. An exact filename match wins outright: it is the most specific
// signal and keeps suffixed ids stable when the same batch is merged again.
// Otherwise the derived candidate yields an existing item's id when the
// candidate equals that item's stored id or re-derives from its stored
// filename. Matching two distinct items that way is fatal.
func resolveID(prior *Manifest, filename string) (string, error) {
	for i := range prior.Items {
		if prior.Items[i].Filename == filename {
			return prior.Items[i].ID, nil
		}
	}

	candidate := Derive(filename)
	matched := ""
	for i := range prior.Items {
		it := &prior.Items[i]
		if it.ID != candidate && Derive(it.Filename) != candidate {
			continue
		}
		if matched != "" && matched != it.ID {
			return "", fmt.Errorf("%w: %q matches %q and %q", ErrAmbiguousID, candidate, matched, it.ID)
		}
		matched = it.ID
	}
	if matched != "" {
		return matched, nil
	}
	return candidate, nil
}

func checkUnique(m *Manifest) error {
	seen := make(map[string]bool, len(m.Items))
	for _, it := range m.Items {
		if seen[it.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}
