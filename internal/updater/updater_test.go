package updater

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkeys/assetmanifest/internal/release"
	"github.com/openkeys/assetmanifest/pkg/manifest"
)

// fakeSource serves asset bytes from memory and fails for names listed in
// broken.
type fakeSource struct {
	content map[string]string
	broken  map[string]bool
}

func (f *fakeSource) Download(asset release.Asset) (io.ReadCloser, error) {
	if f.broken[asset.Name] {
		return nil, errors.New("connection reset")
	}
	body, ok := f.content[asset.Name]
	if !ok {
		return nil, errors.New("no such asset")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func hexSHA(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func testOptions(t *testing.T) (Options, string) {
	t.Helper()
	dir := t.TempDir()
	return Options{
		DictsManifestPath:   filepath.Join(dir, "docs", "dicts-manifest.json"),
		LayoutsManifestPath: filepath.Join(dir, "docs", "layouts-manifest.json"),
		MetadataPath:        filepath.Join(dir, "docs", "dicts-metadata.json"),
		Workers:             2,
	}, dir
}

func TestRunFirstRelease(t *testing.T) {
	opts, dir := testOptions(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(opts.MetadataPath,
		[]byte(`{"de_base":{"name":"German","shortDescription":"German dictionary","languageTag":"de"}}`), 0o644))

	src := &fakeSource{content: map[string]string{
		"de_base.dict": "german-words",
		"qwerty.json":  `{"name":"QWERTY","description":"Standard QWERTY keyboard layout\nExtra line","mappings":{}}`,
	}}
	u := New(src, opts)
	u.Now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	rel := &release.Release{TagName: "v1.0.0", Assets: []release.Asset{
		{Name: "de_base.dict", URL: "https://example.com/de_base.dict", Size: int64(len("german-words"))},
		{Name: "qwerty.json", URL: "https://example.com/qwerty.json"},
		{Name: "README.md", URL: "https://example.com/README.md"},
	}}
	require.NoError(t, u.Run(context.Background(), rel))

	dicts, err := manifest.Load(opts.DictsManifestPath)
	require.NoError(t, err)
	require.Len(t, dicts.Items, 1)
	assert.Equal(t, "de_base", dicts.Items[0].ID)
	assert.Equal(t, "German", dicts.Items[0].Name)
	assert.Equal(t, "de", dicts.Items[0].LanguageTag)
	assert.Equal(t, hexSHA("german-words"), dicts.Items[0].SHA256)
	assert.Equal(t, "v1.0.0", dicts.ReleaseTag)

	layouts, err := manifest.Load(opts.LayoutsManifestPath)
	require.NoError(t, err)
	require.Len(t, layouts.Items, 1)
	assert.Equal(t, "qwerty", layouts.Items[0].ID)
	assert.Equal(t, "QWERTY", layouts.Items[0].Name)
	assert.Equal(t, "Standard QWERTY keyboard layout", layouts.Items[0].ShortDescription)
}

func TestRunSecondReleasePreservesCuratedFields(t *testing.T) {
	opts, _ := testOptions(t)

	prior := &manifest.Manifest{
		SchemaVersion: manifest.SchemaVersion,
		GeneratedAt:   "2026-01-01T00:00:00Z",
		ReleaseTag:    "v1.0.0",
		Items: []manifest.Item{{
			ID: "it_base", Filename: "it_base.dict",
			URL: "https://example.com/old/it_base.dict", Bytes: 3,
			SHA256: hexSHA("old"), UpdatedAt: "2026-01-01T00:00:00Z",
			Name: "Italiano", ShortDescription: "Curated", LanguageTag: "it",
		}},
	}
	require.NoError(t, manifest.Save(opts.DictsManifestPath, prior))

	src := &fakeSource{content: map[string]string{
		"it_base.dict": "new-italian-words",
		"en_base.dict": "english-words",
	}}
	u := New(src, opts)
	rel := &release.Release{TagName: "v2.0.0", Assets: []release.Asset{
		{Name: "it_base.dict", URL: "https://example.com/v2/it_base.dict"},
		{Name: "en_base.dict", URL: "https://example.com/v2/en_base.dict"},
	}}
	require.NoError(t, u.Run(context.Background(), rel))

	got, err := manifest.Load(opts.DictsManifestPath)
	require.NoError(t, err)
	require.Len(t, got.Items, 2)

	it := got.Items[0]
	assert.Equal(t, "it_base", it.ID)
	assert.Equal(t, hexSHA("new-italian-words"), it.SHA256)
	assert.Equal(t, "https://example.com/v2/it_base.dict", it.URL)
	assert.Equal(t, "Italiano", it.Name, "curated name must survive the update")
	assert.Equal(t, "Curated", it.ShortDescription)
	assert.Equal(t, "it", it.LanguageTag)

	en := got.Items[1]
	assert.Equal(t, "en_base", en.ID)
	assert.Equal(t, "En Base", en.Name, "metadata miss falls back to readable name")
}

func TestRunSkipsBrokenAssets(t *testing.T) {
	opts, _ := testOptions(t)

	src := &fakeSource{
		content: map[string]string{"de_base.dict": "german", "fr_base.dict": "french"},
		broken:  map[string]bool{"fr_base.dict": true},
	}
	u := New(src, opts)
	rel := &release.Release{TagName: "v1", Assets: []release.Asset{
		{Name: "de_base.dict"}, {Name: "fr_base.dict"},
	}}
	require.NoError(t, u.Run(context.Background(), rel))

	got, err := manifest.Load(opts.DictsManifestPath)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "de_base", got.Items[0].ID)
}

func TestRunBrokenAssetDoesNotShiftMetadataIDs(t *testing.T) {
	opts, dir := testOptions(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(opts.MetadataPath,
		[]byte(`{"foo":{"name":"Curated Foo","languageTag":"fo"}}`), 0o644))

	// foo.dict and Foo.dict collide on the derived id. The first one failing
	// to download must not leave the survivor's metadata resolved under a
	// suffixed id.
	src := &fakeSource{
		content: map[string]string{"Foo.dict": "survivor"},
		broken:  map[string]bool{"foo.dict": true},
	}
	u := New(src, opts)
	rel := &release.Release{TagName: "v1", Assets: []release.Asset{
		{Name: "foo.dict"}, {Name: "Foo.dict"},
	}}
	require.NoError(t, u.Run(context.Background(), rel))

	got, err := manifest.Load(opts.DictsManifestPath)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "foo", got.Items[0].ID)
	assert.Equal(t, "Foo.dict", got.Items[0].Filename)
	assert.Equal(t, "Curated Foo", got.Items[0].Name, "table entry for the stored id must be used")
	assert.Equal(t, "fo", got.Items[0].LanguageTag)
}

func TestRunAllAssetsBrokenFails(t *testing.T) {
	opts, _ := testOptions(t)

	src := &fakeSource{broken: map[string]bool{"de_base.dict": true}}
	u := New(src, opts)
	rel := &release.Release{TagName: "v1", Assets: []release.Asset{{Name: "de_base.dict"}}}
	assert.Error(t, u.Run(context.Background(), rel))
}

func TestRunDryRunWritesNothing(t *testing.T) {
	opts, _ := testOptions(t)
	opts.DryRun = true

	src := &fakeSource{content: map[string]string{"de_base.dict": "german"}}
	u := New(src, opts)
	rel := &release.Release{TagName: "v1", Assets: []release.Asset{{Name: "de_base.dict"}}}
	require.NoError(t, u.Run(context.Background(), rel))

	_, err := os.Stat(opts.DictsManifestPath)
	assert.True(t, os.IsNotExist(err), "dry run must not write the manifest")
}

func TestRunIsIdempotent(t *testing.T) {
	opts, _ := testOptions(t)

	src := &fakeSource{content: map[string]string{
		"de_base.dict": "german",
		"foo.dict":     "one",
		"Foo.dict":     "two",
	}}
	u := New(src, opts)
	rel := &release.Release{TagName: "v1", Assets: []release.Asset{
		{Name: "de_base.dict"}, {Name: "foo.dict"}, {Name: "Foo.dict"},
	}}

	require.NoError(t, u.Run(context.Background(), rel))
	first, err := manifest.Load(opts.DictsManifestPath)
	require.NoError(t, err)

	require.NoError(t, u.Run(context.Background(), rel))
	second, err := manifest.Load(opts.DictsManifestPath)
	require.NoError(t, err)

	require.Equal(t, len(first.Items), len(second.Items))
	for i := range first.Items {
		a, b := first.Items[i], second.Items[i]
		b.UpdatedAt = a.UpdatedAt
		assert.Equal(t, a, b)
	}
}

func TestRunNoMatchingAssets(t *testing.T) {
	opts, _ := testOptions(t)

	u := New(&fakeSource{}, opts)
	rel := &release.Release{TagName: "v1", Assets: []release.Asset{{Name: "README.md"}}}
	require.NoError(t, u.Run(context.Background(), rel))

	_, err := os.Stat(opts.DictsManifestPath)
	assert.True(t, os.IsNotExist(err))
}
